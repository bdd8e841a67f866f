package viewer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/surface"
)

// viewer implements the Viewer interface.
type viewer struct {
	mu     *sync.Mutex
	logger *slog.Logger

	options    Options
	scene      scene.Scene
	frame      camera.CameraFrame
	renderer   renderer.Renderer
	composer   renderer.Composer
	renderPass renderer.RenderPass
	outputPass renderer.OutputPass
	container  surface.Container

	needRender  bool
	initialized bool
	disposed    bool

	running     bool
	quitChannel chan struct{}
	wg          sync.WaitGroup
	tickRate    time.Duration

	profiler         *profiler.Profiler
	profilingEnabled bool
}

// Viewer ties a renderer, a camera frame and a scene together and drives them from a frame clock.
// Each tick syncs the surface size with the container, advances the orbit controls and renders one frame.
// Thread-safe for concurrent access.
type Viewer interface {
	// Initialize runs the scene setup strategy. Calling it twice logs a warning and does nothing.
	Initialize()

	// Dispose stops the loop, detaches the container and releases the renderer and post chain.
	// Calling it twice logs a warning and does nothing.
	Dispose()

	// Start begins ticking on the frame clock. Starting a running viewer logs a warning and does nothing.
	Start()

	// Stop stops ticking and waits for the current tick to finish. Stopping a stopped viewer logs a
	// warning and does nothing.
	Stop()

	// Running reports whether the frame clock is ticking.
	Running() bool

	// Tick advances the viewer by dt seconds: size sync, controls update and one render.
	//
	// Parameters:
	//   - dt: seconds since the previous tick
	//
	// Returns:
	//   - error: the render error, nil when nothing was rendered
	Tick(dt float32) error

	// SetContainer attaches the viewer to a display container, syncing the surface size and projection
	// at once. Passing nil detaches without disposing anything.
	//
	// Parameters:
	//   - c: the container, or nil
	SetContainer(c surface.Container)

	// Container returns the attached container, or nil.
	Container() surface.Container

	// NeedRender reports whether ticks render frames.
	NeedRender() bool

	// SetNeedRender pauses (false) or resumes (true) rendering without tearing anything down.
	//
	// Parameters:
	//   - need: whether ticks should render
	SetNeedRender(need bool)

	// UseEffects reports whether frames go through the post-processing chain.
	UseEffects() bool

	// SetUseEffects selects rendering through the post-processing chain.
	SetUseEffects(use bool)

	// SetUseOrthographic switches the active camera and re-points the controls and render pass at it.
	//
	// Parameters:
	//   - use: true for the orthographic camera
	//
	// Returns:
	//   - error: camera.ErrDegenerateViewport when the projection cannot be recomputed yet
	SetUseOrthographic(use bool) error

	// SetDefaultPosition fits the current fit volume along the fit axis.
	//
	// Parameters:
	//   - ctx: context bounding the wait of the returned future
	//   - transition: animate (true) or snap (false)
	//
	// Returns:
	//   - *common.Future[struct{}]: resolved when the camera is in place
	SetDefaultPosition(ctx context.Context, transition bool) *common.Future[struct{}]

	// Scene returns the viewer's scene.
	Scene() scene.Scene

	// Frame returns the camera frame.
	Frame() camera.CameraFrame

	// Camera returns the active camera.
	Camera() camera.Camera

	// Renderer returns the renderer.
	Renderer() renderer.Renderer

	// Composer returns the post-processing chain.
	Composer() renderer.Composer

	// RenderPass returns the scene pass of the post-processing chain.
	RenderPass() renderer.RenderPass

	// Options returns the options the viewer was built with.
	Options() Options
}

var _ Viewer = &viewer{}

// NewViewer creates a Viewer rendering with r. The orbit-controls capability is installed here,
// before the camera frame is built. The renderer receives the clear color and exposure from the
// options, and the post chain is a render pass followed by an output pass.
//
// Parameters:
//   - r: the renderer
//   - options: functional options to configure the viewer
//
// Returns:
//   - Viewer: the newly created viewer
func NewViewer(r renderer.Renderer, options ...ViewerBuilderOption) Viewer {
	if r == nil {
		panic("viewer: NewViewer requires a renderer")
	}
	v := &viewer{
		mu:         &sync.Mutex{},
		logger:     common.Logger(),
		options:    DefaultOptions(),
		renderer:   r,
		needRender: true,
		tickRate:   time.Second / 60,
		profiler:   profiler.NewProfiler(),
	}
	for _, opt := range options {
		opt(v)
	}
	if v.scene == nil {
		v.scene = scene.NewScene()
	}

	camera.Install()

	o := v.options
	r.SetClearColor(o.ClearColor)
	r.SetToneMappingExposure(o.ToneMappingExposure)

	variant := camera.VariantPerspective
	if o.UseOrthographic {
		variant = camera.VariantOrthographic
	}
	v.frame = camera.NewCameraFrame(
		camera.WithSurface(r),
		camera.WithVariant(variant),
		camera.WithOrthographicSize(o.OrthographicSize),
		camera.WithViewportOffset(o.ViewportOffset),
		camera.WithPadding(o.Padding),
		camera.WithAngularOffset(o.AngularOffset),
		camera.WithFitAxis(o.FitAxis, o.fitRadius()),
		camera.WithFrameLogger(v.logger),
		camera.WithControlsOptions(
			camera.WithDraggingSmoothTime(0.05),
			camera.WithSmoothTime(0.5),
			camera.WithRotateSpeed(0.4, 0.4),
		),
	)

	v.renderPass = renderer.NewRenderPass(v.scene, v.frame.Camera())
	v.outputPass = renderer.NewOutputPass()
	v.composer = renderer.NewComposer(r,
		renderer.WithSampleCount(o.Samples),
		renderer.WithPasses(v.renderPass, v.outputPass),
		renderer.WithComposerLogger(v.logger),
	)
	v.frame.OnCameraChange(v.renderPass.SetCamera)

	if v.container != nil {
		c := v.container
		v.container = nil
		v.SetContainer(c)
	}
	return v
}

func (v *viewer) Initialize() {
	v.mu.Lock()
	if v.initialized {
		v.mu.Unlock()
		v.logger.Warn("viewer is already initialized")
		return
	}
	if v.disposed {
		v.mu.Unlock()
		v.logger.Warn("viewer is disposed and cannot be initialized")
		return
	}
	v.initialized = true
	setup := v.options.SceneSetup
	v.mu.Unlock()

	if setup != nil {
		setup(v)
	}
	v.logger.Debug("viewer initialized")
}

func (v *viewer) Dispose() {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		v.logger.Warn("viewer is already disposed")
		return
	}
	v.disposed = true
	running := v.running
	v.mu.Unlock()

	if running {
		v.Stop()
	}
	v.SetContainer(nil)
	v.composer.Dispose()
	v.renderer.Dispose()
	v.logger.Debug("viewer disposed")
}

func (v *viewer) Start() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.running {
		v.logger.Warn("viewer is already running")
		return
	}
	if v.disposed {
		v.logger.Warn("viewer is disposed and cannot be started")
		return
	}
	v.running = true
	v.quitChannel = make(chan struct{})
	v.wg.Add(1)
	go v.handleTicks(v.quitChannel, v.tickRate)
}

func (v *viewer) Stop() {
	v.mu.Lock()
	if !v.running {
		v.mu.Unlock()
		v.logger.Warn("viewer is not running")
		return
	}
	v.running = false
	close(v.quitChannel)
	v.mu.Unlock()

	v.wg.Wait()
}

func (v *viewer) Running() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.running
}

// handleTicks runs the frame clock in its own goroutine until quit is closed.
// Recovers from panics so a failing frame cannot crash the process.
func (v *viewer) handleTicks(quit <-chan struct{}, rate time.Duration) {
	defer v.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("tick goroutine recovered from panic", slog.Any("panic", r))
			v.mu.Lock()
			v.running = false
			v.mu.Unlock()
		}
	}()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()
	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if err := v.Tick(dt); err != nil {
				v.logger.Debug("frame not rendered", slog.Any("error", err))
			}
		}
	}
}

func (v *viewer) Tick(dt float32) error {
	v.mu.Lock()
	v.syncRendererSize()
	needRender := v.needRender
	useEffects := v.options.UseEffects
	profiling := v.profilingEnabled
	v.mu.Unlock()

	controls := v.frame.Controls()
	if controls.Enabled() {
		controls.Update(dt)
	}

	if !needRender {
		return nil
	}

	var err error
	if useEffects {
		err = v.composer.Render()
	} else {
		err = v.renderer.RenderFrame(v.scene, v.frame.Camera())
	}
	if err == nil && profiling {
		v.profiler.Tick()
	}
	return err
}

// syncRendererSize resizes the surface to the container when they differ, then recomputes the
// projection and snaps the camera to the default position. Caller must hold the mutex.
func (v *viewer) syncRendererSize() bool {
	if v.container == nil {
		return false
	}
	cw, ch := v.container.Size()
	rw, rh := v.renderer.Size()
	if cw == rw && ch == rh {
		return false
	}

	v.renderer.SetSize(cw, ch)
	v.composer.SetSize(cw, ch)
	if err := v.frame.UpdateProjection(); err != nil {
		v.logger.Debug("projection not updated", slog.Any("error", err))
	}
	v.frame.SetDefaultPosition(context.Background(), false)
	v.logger.Debug("surface resized", slog.Int("width", cw), slog.Int("height", ch))
	return true
}

func (v *viewer) SetContainer(c surface.Container) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.container = c
	if c == nil {
		v.logger.Debug("container detached")
		return
	}
	if !v.syncRendererSize() {
		if err := v.frame.UpdateProjection(); err != nil && !errors.Is(err, camera.ErrDegenerateViewport) {
			v.logger.Warn("projection not updated", slog.Any("error", err))
		}
	}
}

func (v *viewer) Container() surface.Container {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.container
}

func (v *viewer) NeedRender() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.needRender
}

func (v *viewer) SetNeedRender(need bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.needRender = need
}

func (v *viewer) UseEffects() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.options.UseEffects
}

func (v *viewer) SetUseEffects(use bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.options.UseEffects = use
}

func (v *viewer) SetUseOrthographic(use bool) error {
	v.mu.Lock()
	v.options.UseOrthographic = use
	v.mu.Unlock()

	variant := camera.VariantPerspective
	if use {
		variant = camera.VariantOrthographic
	}
	return v.frame.SetActiveVariant(variant)
}

func (v *viewer) SetDefaultPosition(ctx context.Context, transition bool) *common.Future[struct{}] {
	return v.frame.SetDefaultPosition(ctx, transition)
}

func (v *viewer) Scene() scene.Scene {
	return v.scene
}

func (v *viewer) Frame() camera.CameraFrame {
	return v.frame
}

func (v *viewer) Camera() camera.Camera {
	return v.frame.Camera()
}

func (v *viewer) Renderer() renderer.Renderer {
	return v.renderer
}

func (v *viewer) Composer() renderer.Composer {
	return v.composer
}

func (v *viewer) RenderPass() renderer.RenderPass {
	return v.renderPass
}

func (v *viewer) Options() Options {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.options
}
