package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/chewxy/math32"
)

// basePass carries the state every pass shares.
type basePass struct {
	mu      *sync.Mutex
	name    string
	enabled bool
	width   int
	height  int
}

func newBasePass(name string) basePass {
	return basePass{mu: &sync.Mutex{}, name: name, enabled: true}
}

func (p *basePass) Name() string {
	return p.name
}

func (p *basePass) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

func (p *basePass) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

func (p *basePass) SetSize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width, p.height = width, height
}

// Size returns the size the pass was last given.
func (p *basePass) Size() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

type renderPass struct {
	basePass
	scene  scene.Scene
	camera camera.Camera
}

// RenderPass draws a scene through a camera. The camera is swappable so the pass can follow
// the active camera of a CameraFrame.
type RenderPass interface {
	Pass

	// Scene returns the scene the pass draws.
	Scene() scene.Scene

	// Camera returns the camera the pass draws through.
	Camera() camera.Camera

	// SetCamera re-points the pass at another camera.
	//
	// Parameters:
	//   - cam: the camera to draw through
	SetCamera(cam camera.Camera)

	// Size returns the size the pass was last given.
	Size() (width, height int)
}

var _ RenderPass = &renderPass{}

// NewRenderPass creates a RenderPass drawing s through cam.
//
// Parameters:
//   - s: the scene to draw
//   - cam: the camera to draw through
//
// Returns:
//   - RenderPass: the newly created pass
func NewRenderPass(s scene.Scene, cam camera.Camera) RenderPass {
	return &renderPass{basePass: newBasePass("render"), scene: s, camera: cam}
}

func (p *renderPass) Scene() scene.Scene {
	return p.scene
}

func (p *renderPass) Camera() camera.Camera {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.camera
}

func (p *renderPass) SetCamera(cam camera.Camera) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.camera = cam
}

func (p *renderPass) Render(_ Renderer, f *Frame) error {
	f.Scene = p.scene
	f.Camera = p.Camera()
	return nil
}

type outputPass struct {
	basePass
}

// OutputPass is the final stage of a chain: it tone maps the frame with the renderer's exposure
// and encodes it to sRGB for display.
type OutputPass interface {
	Pass
}

var _ OutputPass = &outputPass{}

// NewOutputPass creates an OutputPass.
//
// Returns:
//   - OutputPass: the newly created pass
func NewOutputPass() OutputPass {
	return &outputPass{basePass: newBasePass("output")}
}

func (p *outputPass) Render(r Renderer, f *Frame) error {
	f.Exposure = r.ToneMappingExposure()
	f.Clear = ToneMap(f.Clear, f.Exposure)
	return nil
}

// ToneMap applies ACES filmic tone mapping at the given exposure and encodes the result to sRGB.
// Alpha is passed through.
//
// Parameters:
//   - c: a linear color
//   - exposure: the exposure multiplier
//
// Returns:
//   - common.Color: the display-encoded color
func ToneMap(c common.Color, exposure float32) common.Color {
	return common.Color{
		R: linearToSRGB(acesFilmic(c.R * exposure)),
		G: linearToSRGB(acesFilmic(c.G * exposure)),
		B: linearToSRGB(acesFilmic(c.B * exposure)),
		A: c.A,
	}
}

// acesFilmic is the Narkowicz fit of the ACES filmic curve.
func acesFilmic(x float32) float32 {
	const a, b, c, d, e = 2.51, 0.03, 2.43, 0.59, 0.14
	return common.Clamp((x*(a*x+b))/(x*(c*x+d)+e), 0, 1)
}

func linearToSRGB(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math32.Pow(v, 1/2.4) - 0.055
}
