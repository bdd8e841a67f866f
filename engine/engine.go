package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/controller"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resource"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// ErrAlreadyRunning is returned by Run on an engine that is running or has already run.
var ErrAlreadyRunning = errors.New("engine: already running")

// engine implements the Engine interface.
// Coordinates the window message loop, the controller and the viewer's frame clock.
type engine struct {
	mu     *sync.Mutex
	logger *slog.Logger

	window     window.Window
	controller controller.Controller

	object      *resource.Resource
	environment *resource.Resource
	configPath  string

	build *common.Future[struct{}]

	started  bool
	quitOnce sync.Once
}

// Engine is the main entry point of the desktop viewer.
// It binds window input to the orbit controls, runs the controller, and blocks in the window message loop.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Controller returns the controller driving the viewer.
	//
	// Returns:
	//   - controller.Controller: the controller
	Controller() controller.Controller

	// Build returns the future of the scene build started by Run, or nil when no build was configured or Run
	// has not been called.
	Build() *common.Future[struct{}]

	// Run binds input, initializes the controller, starts the scene build and config watch when configured,
	// then runs the window message loop. It blocks until the window closes, Quit is called or ctx is done, and
	// disposes the controller before returning.
	//
	// Parameters:
	//   - ctx: bounds the run
	//
	// Returns:
	//   - error: ErrAlreadyRunning on a second call, or the error of setting up the config watch
	Run(ctx context.Context) error

	// Quit closes the window, which ends Run.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine for a window and the controller of the viewer rendering into it.
//
// Parameters:
//   - w: the window; it is also the viewer's container
//   - c: the controller
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(w window.Window, c controller.Controller, options ...EngineBuilderOption) Engine {
	if w == nil || c == nil {
		panic("engine: NewEngine requires a window and a controller")
	}
	e := &engine{
		mu:         &sync.Mutex{},
		logger:     common.Logger(),
		window:     w,
		controller: c,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Controller() controller.Controller {
	return e.controller
}

func (e *engine) Build() *common.Future[struct{}] {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.build
}

func (e *engine) Run(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	e.started = true
	e.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if e.configPath != "" {
		if err := config.Watch(ctx, e.configPath, e.applyConfig); err != nil {
			return err
		}
	}

	e.bindInput()
	e.controller.Viewer().SetContainer(e.window)
	e.controller.Initialize()

	if e.object != nil && e.environment != nil {
		build := e.controller.Build(ctx, *e.object, *e.environment)
		e.mu.Lock()
		e.build = build
		e.mu.Unlock()
		build.Then(func(_ struct{}, err error) {
			if err != nil {
				e.logger.Warn("scene build abandoned", slog.Any("error", err))
				return
			}
			e.logger.Info("scene built", slog.String("object", e.object.ID), slog.String("environment", e.environment.ID))
		})
	}

	go func() {
		<-ctx.Done()
		e.Quit()
	}()

	e.window.ProcessMessages()
	cancel()

	e.controller.Dispose()
	return nil
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		if err := e.window.Close(); err != nil {
			e.logger.Debug("window close", slog.Any("error", err))
		}
	})
}

// bindInput routes pointer input from the window to the orbit controls.
func (e *engine) bindInput() {
	controls := e.controller.Viewer().Frame().Controls()
	e.window.SetDragStartCallback(controls.BeginDrag)
	e.window.SetDragCallback(controls.Drag)
	e.window.SetDragEndCallback(controls.EndDrag)
	e.window.SetScrollCallback(controls.Wheel)
}

// applyConfig applies the framing and renderer settings of a reloaded configuration and animates the camera
// to the new default position.
func (e *engine) applyConfig(c *config.Config, err error) {
	if err != nil {
		e.logger.Warn("config reload failed", slog.Any("error", err))
		return
	}
	o, err := c.ViewerOptions()
	if err != nil {
		e.logger.Warn("config reload failed", slog.Any("error", err))
		return
	}

	v := e.controller.Viewer()
	r := v.Renderer()
	r.SetClearColor(o.ClearColor)
	r.SetToneMappingExposure(o.ToneMappingExposure)
	v.SetUseEffects(o.UseEffects)

	f := v.Frame()
	f.SetPadding(o.Padding)
	f.SetAngularOffset(o.AngularOffset)
	if err := f.SetViewportOffset(o.ViewportOffset); err != nil {
		e.logger.Debug("viewport offset not applied", slog.Any("error", err))
	}
	v.SetDefaultPosition(context.Background(), true)
	e.logger.Info("config reloaded")
}
