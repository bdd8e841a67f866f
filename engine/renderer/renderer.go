package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrRendererDisposed is returned when a frame is submitted after Dispose.
	ErrRendererDisposed = errors.New("renderer: disposed")

	// ErrNoSurface is returned when a frame is submitted before the renderer has a non-zero size.
	ErrNoSurface = errors.New("renderer: surface has no size")
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *slog.Logger

	backendType RendererBackendType
	backend     RendererBackend

	width, height int
	clearColor    common.Color
	exposure      float32
	disposed      bool
	info          RenderInfo

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer is the render capability of the viewer: it owns the drawing surface, its size and the
// parameters every frame is produced with. Frames are submitted whole, either directly through
// RenderFrame or assembled by a Composer.
// Thread-safe for concurrent access.
type Renderer interface {
	// RenderFrame draws the scene through the camera and presents it.
	//
	// Parameters:
	//   - s: the scene to draw
	//   - cam: the camera to draw through
	//
	// Returns:
	//   - error: ErrNoSurface, ErrRendererDisposed or a backend error
	RenderFrame(s scene.Scene, cam camera.Camera) error

	// Submit draws and presents a fully described frame.
	//
	// Parameters:
	//   - f: the frame to submit
	//
	// Returns:
	//   - error: ErrNoSurface, ErrRendererDisposed or a backend error
	Submit(f *Frame) error

	// SetSize resizes the drawing surface. Zero sizes are recorded but do not reconfigure the backend.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	SetSize(width, height int)

	// Size returns the current drawing surface size in pixels.
	//
	// Returns:
	//   - int: width in pixels
	//   - int: height in pixels
	Size() (width, height int)

	// ClearColor returns the color frames are cleared to.
	ClearColor() common.Color

	// SetClearColor sets the color frames are cleared to.
	//
	// Parameters:
	//   - c: the clear color
	SetClearColor(c common.Color)

	// ToneMappingExposure returns the exposure used by the output stage.
	ToneMappingExposure() float32

	// SetToneMappingExposure sets the exposure used by the output stage.
	//
	// Parameters:
	//   - exposure: the exposure multiplier
	SetToneMappingExposure(exposure float32)

	// SetPresentMode sets the surface present mode and reconfigures the surface when it has a size.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// Info returns statistics about the frames submitted so far.
	Info() RenderInfo

	// Dispose releases the backend. Further frames fail with ErrRendererDisposed. Repeated calls are no-ops.
	Dispose()
}

var _ Renderer = &renderer{}
var _ camera.Surface = &renderer{}

// NewRenderer creates a Renderer driving the given backend.
//
// Parameters:
//   - backend: the backend frames are submitted to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new Renderer using the backend
func NewRenderer(backend RendererBackend, options ...RendererBuilderOption) Renderer {
	if backend == nil {
		panic("renderer: NewRenderer requires a backend")
	}
	r := newRenderer(options...)
	r.backend = backend
	r.applyPending()
	return r
}

// NewWGPURenderer creates a Renderer backed by WebGPU, drawing into the surface described by surfaceDescriptor.
// The surface descriptor is platform-specific and is typically obtained from Window.SurfaceDescriptor().
// The surface is configured on the first SetSize with a non-zero size.
//
// Parameters:
//   - surfaceDescriptor: the platform-specific surface descriptor for WebGPU surface creation
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new WebGPU-backed Renderer
func NewWGPURenderer(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...RendererBuilderOption) Renderer {
	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	r := newRenderer(options...)

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch r.backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(surfaceDescriptor, r.forceFallbackAdapter, msaa)
	}
	r.applyPending()
	return r
}

func newRenderer(options ...RendererBuilderOption) *renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		logger:      common.Logger(),
		backendType: BackendTypeWGPU,
		clearColor:  common.NewColorHex(0xf2f2f2),
		exposure:    1,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) applyPending() {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.width > 0 && r.height > 0 {
		r.backend.ConfigureSurface(r.width, r.height)
	}
}

func (r *renderer) RenderFrame(s scene.Scene, cam camera.Camera) error {
	return r.Submit(&Frame{
		Scene:  s,
		Camera: cam,
		Clear:  r.ClearColor(),
	})
}

func (r *renderer) Submit(f *Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return ErrRendererDisposed
	}
	if r.width <= 0 || r.height <= 0 {
		return ErrNoSurface
	}

	if err := r.backend.BeginFrame(f.Clear); err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}

	meshes, nodes := 0, 0
	if f.Scene != nil {
		f.Scene.Root().Traverse(func(n scene.Node) {
			nodes++
			meshes += len(n.Meshes())
		})
	}

	r.backend.EndFrame()
	r.backend.Present()

	r.info.Frames++
	r.info.Meshes = meshes
	r.info.Nodes = nodes
	return nil
}

func (r *renderer) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.width, r.height = width, height
	if r.disposed || width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
	r.logger.Debug("renderer resized", slog.Int("width", width), slog.Int("height", height))
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) ClearColor() common.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearColor
}

func (r *renderer) SetClearColor(c common.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = c
}

func (r *renderer) ToneMappingExposure() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exposure
}

func (r *renderer) SetToneMappingExposure(exposure float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exposure = exposure
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return
	}
	r.backend.SetPresentMode(mode)
	if r.width > 0 && r.height > 0 {
		r.backend.ConfigureSurface(r.width, r.height)
	}
}

func (r *renderer) Info() RenderInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.info
}

func (r *renderer) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return
	}
	r.disposed = true
	r.backend.Release()
	r.logger.Debug("renderer disposed", slog.Uint64("frames", r.info.Frames))
}
