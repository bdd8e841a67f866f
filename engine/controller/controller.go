package controller

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/decoder"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resource"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewer"
)

type controller struct {
	mu     *sync.Mutex
	logger *slog.Logger

	viewer       viewer.Viewer
	pipeline     resource.Pipeline
	ownsPipeline bool

	initialized bool
	building    int
}

// Controller drives a viewer from the outside: it owns the resource registry, starts and stops the viewer's
// frame loop, and applies loaded content to the scene.
// Thread-safe for concurrent access.
type Controller interface {
	// Initialize initializes the viewer and starts its frame loop.
	// Calling it on an initialized controller logs a warning and does nothing.
	Initialize()

	// Dispose stops the frame loop, clears the resource registry and disposes the viewer.
	// Calling it on a controller that is not initialized logs a warning and does nothing.
	Dispose()

	// AddResource registers r, replacing any resource with the same id.
	//
	// Parameters:
	//   - r: the resource
	//
	// Returns:
	//   - resource.Resource: the stored resource
	AddResource(r resource.Resource) resource.Resource

	// LoadResource decodes the resource registered under id.
	//
	// Parameters:
	//   - id: the resource id
	//
	// Returns:
	//   - *common.Future[any]: resolved with a scene.Node or a scene.Texture depending on the resource type
	LoadResource(id string) *common.Future[any]

	// GetResource returns the resource registered under id.
	GetResource(id string) (resource.Resource, bool)

	// Resources returns every registered resource sorted by id.
	Resources() []resource.Resource

	// AddModelToScene inserts a decoded mesh root into the scene content.
	// It does not re-fit the camera; call UpdateCameraView afterwards.
	AddModelToScene(n scene.Node)

	// UpdateCameraView sets the fit volume to the scene's bounding box and snaps the camera to the default position.
	UpdateCameraView()

	// SetEnvironmentMap assigns t as the scene's environment.
	SetEnvironmentMap(t scene.Texture)

	// Build registers the object and environment resources and loads both concurrently. A loaded mesh is inserted
	// into the scene followed by a camera re-fit; a loaded environment map becomes the scene environment.
	// Failures of either load are logged and do not fail the build.
	//
	// Parameters:
	//   - ctx: bounds the caller's wait; when it is done first the returned future rejects with ctx.Err() while
	//     the loads carry on
	//   - object: the mesh bundle resource
	//   - environment: the environment map resource
	//
	// Returns:
	//   - *common.Future[struct{}]: resolved once both loads have settled
	Build(ctx context.Context, object, environment resource.Resource) *common.Future[struct{}]

	// Loading reports whether a Build is still waiting for its loads to settle.
	Loading() bool

	// Viewer returns the driven viewer.
	Viewer() viewer.Viewer

	// Pipeline returns the resource pipeline.
	Pipeline() resource.Pipeline

	// IsActive reports whether the controller is initialized.
	IsActive() bool
}

var _ Controller = &controller{}

// NewController creates a Controller for v. Unless WithPipeline is given the controller creates its own
// resource pipeline, decoding glTF/GLB meshes and HDR or LDR environment maps from disk or HTTP, and closes it
// on Dispose.
//
// Parameters:
//   - v: the viewer to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewController(v viewer.Viewer, options ...ControllerBuilderOption) Controller {
	if v == nil {
		panic("controller: NewController requires a viewer")
	}
	c := &controller{
		mu:     &sync.Mutex{},
		logger: common.Logger(),
		viewer: v,
	}
	for _, option := range options {
		option(c)
	}
	if c.pipeline == nil {
		fetcher := decoder.NewFetcher(decoder.WithFetcherLogger(c.logger))
		c.pipeline = resource.NewPipeline(
			resource.WithMeshDecoder(decoder.NewGLTFDecoder(decoder.WithGLTFFetcher(fetcher), decoder.WithGLTFLogger(c.logger))),
			resource.WithImageDecoder(decoder.NewImageDecoder(decoder.WithImageFetcher(fetcher), decoder.WithImageLogger(c.logger))),
			resource.WithPipelineLogger(c.logger),
		)
		c.ownsPipeline = true
	}
	return c
}

func (c *controller) Initialize() {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		c.logger.Warn("controller is already initialized")
		return
	}
	c.initialized = true
	c.mu.Unlock()

	c.viewer.Initialize()
	c.viewer.Start()
	c.logger.Info("controller initialized")
}

func (c *controller) Dispose() {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		c.logger.Warn("controller is not initialized")
		return
	}
	c.initialized = false
	c.mu.Unlock()

	if c.viewer.Running() {
		c.viewer.Stop()
	}
	c.pipeline.Clear()
	if c.ownsPipeline {
		c.pipeline.Close()
	}
	c.viewer.Dispose()
	c.logger.Info("controller disposed")
}

func (c *controller) AddResource(r resource.Resource) resource.Resource {
	return c.pipeline.Register(r)
}

func (c *controller) LoadResource(id string) *common.Future[any] {
	return c.pipeline.Load(id)
}

func (c *controller) GetResource(id string) (resource.Resource, bool) {
	return c.pipeline.Get(id)
}

func (c *controller) Resources() []resource.Resource {
	return c.pipeline.List()
}

func (c *controller) AddModelToScene(n scene.Node) {
	if n == nil {
		return
	}
	c.viewer.Scene().Add(n)
}

func (c *controller) UpdateCameraView() {
	c.viewer.Frame().SetFitVolume(c.viewer.Scene().BoundingBox())
	c.viewer.SetDefaultPosition(context.Background(), false)
}

func (c *controller) SetEnvironmentMap(t scene.Texture) {
	c.viewer.Scene().SetEnvironment(t)
}

func (c *controller) Build(ctx context.Context, object, environment resource.Resource) *common.Future[struct{}] {
	c.AddResource(object)
	c.AddResource(environment)

	c.mu.Lock()
	c.building++
	c.mu.Unlock()

	objectDone := common.NewFuture[struct{}]()
	c.pipeline.LoadMesh(object.ID).Then(func(n scene.Node, err error) {
		defer objectDone.Resolve(struct{}{})
		if err != nil {
			c.logger.Error("failed to load model", slog.String("id", object.ID), slog.Any("error", err))
			return
		}
		c.AddModelToScene(n)
		c.UpdateCameraView()
	})

	environmentDone := common.NewFuture[struct{}]()
	c.pipeline.LoadEnvironment(environment.ID).Then(func(t scene.Texture, err error) {
		defer environmentDone.Resolve(struct{}{})
		if err != nil {
			c.logger.Error("failed to load environment map", slog.String("id", environment.ID), slog.Any("error", err))
			return
		}
		c.SetEnvironmentMap(t)
	})

	built := common.NewFuture[struct{}]()
	common.SettleAll(objectDone, environmentDone).Then(func(struct{}, error) {
		c.mu.Lock()
		c.building--
		c.mu.Unlock()
		c.logger.Debug("scene built", slog.String("object", object.ID), slog.String("environment", environment.ID))
		built.Resolve(struct{}{})
	})

	if built.Settled() {
		return built
	}
	out := common.NewFuture[struct{}]()
	go func() {
		select {
		case <-built.Done():
			out.Resolve(struct{}{})
		case <-ctx.Done():
			out.Reject(ctx.Err())
		}
	}()
	return out
}

func (c *controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.building > 0
}

func (c *controller) Viewer() viewer.Viewer {
	return c.viewer
}

func (c *controller) Pipeline() resource.Pipeline {
	return c.pipeline
}

func (c *controller) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}
