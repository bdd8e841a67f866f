package resource

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

type pipeline struct {
	mu     *sync.Mutex
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	resources map[string]Resource
	closed    bool
	pending   int
	drained   chan struct{}

	meshDecoder  MeshDecoder
	imageDecoder ImageDecoder

	pool      worker.DynamicWorkerPool
	workers   int
	queueSize int
	taskID    atomic.Int64
}

// Pipeline is a registry of resources and the asynchronous loader that decodes them. Every load runs a fresh
// decode on a worker goroutine and delivers its result only through the returned future; nothing is cached.
// Loads started before Clear or Close still settle.
// Thread-safe for concurrent access.
type Pipeline interface {
	// Register stores r under r.ID, replacing (and warning about) any resource already registered under that id.
	//
	// Parameters:
	//   - r: the resource to register
	//
	// Returns:
	//   - Resource: the stored resource
	Register(r Resource) Resource

	// Load decodes the resource registered under id. A mesh bundle resolves with its root scene.Node; an
	// environment map resolves with a scene.Texture tagged for equirectangular reflection.
	//
	// Parameters:
	//   - id: the resource id
	//
	// Returns:
	//   - *common.Future[any]: rejected with *NotFoundError for an unknown id (no decoder runs), with *DecodeError
	//     when decoding fails, or with ErrPipelineClosed after Close
	Load(id string) *common.Future[any]

	// LoadMesh is Load for mesh bundles.
	//
	// Parameters:
	//   - id: the resource id
	//
	// Returns:
	//   - *common.Future[scene.Node]: as Load, also rejected with *TypeMismatchError (before decoding) when id is
	//     not a mesh bundle
	LoadMesh(id string) *common.Future[scene.Node]

	// LoadEnvironment is Load for environment maps.
	//
	// Parameters:
	//   - id: the resource id
	//
	// Returns:
	//   - *common.Future[scene.Texture]: as Load, also rejected with *TypeMismatchError (before decoding) when id
	//     is not an environment map
	LoadEnvironment(id string) *common.Future[scene.Texture]

	// Get returns the resource registered under id.
	Get(id string) (Resource, bool)

	// List returns every registered resource sorted by id.
	List() []Resource

	// Clear removes every registered resource. Loads in flight are not affected.
	Clear()

	// Close stops accepting loads and cancels the context handed to running decoders, then returns without
	// waiting for them. A decoder that honors its context rejects with the cancellation; one that does not still
	// settles its future when it finishes. The worker pool is released once the last decode returns. Further
	// loads reject with ErrPipelineClosed. Calling Close twice is a no-op.
	Close()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline with one decode worker per CPU.
//
// Parameters:
//   - options: functional options to configure the pipeline
//
// Returns:
//   - Pipeline: the newly created pipeline
func NewPipeline(options ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		mu:        &sync.Mutex{},
		logger:    common.Logger(),
		ctx:       context.Background(),
		resources: make(map[string]Resource),
		drained:   make(chan struct{}),
		workers:   runtime.NumCPU(),
		queueSize: 256,
	}
	for _, option := range options {
		option(p)
	}
	p.ctx, p.cancel = context.WithCancel(p.ctx)
	p.pool = worker.NewDynamicWorkerPool(p.workers, p.queueSize, 1*time.Second)
	return p
}

func (p *pipeline) Register(r Resource) Resource {
	p.mu.Lock()
	prev, replaced := p.resources[r.ID]
	p.resources[r.ID] = r
	p.mu.Unlock()

	if replaced {
		p.logger.Warn("replacing registered resource",
			slog.String("id", r.ID),
			slog.String("old_url", prev.URL),
			slog.String("new_url", r.URL),
		)
	}
	return r
}

func (p *pipeline) Load(id string) *common.Future[any] {
	r, err := p.lookup(id)
	if err != nil {
		return common.Rejected[any](err)
	}

	switch r.Type {
	case TypeMeshBundle:
		return common.Transform(p.decodeMesh(r), func(n scene.Node) (any, error) { return n, nil })
	case TypeEnvironmentMap:
		return common.Transform(p.decodeEnvironment(r), func(t scene.Texture) (any, error) { return t, nil })
	default:
		return common.Rejected[any](p.decodeFailed(r, fmt.Errorf("%w: %s", ErrNoDecoder, r.Type)))
	}
}

func (p *pipeline) LoadMesh(id string) *common.Future[scene.Node] {
	r, err := p.lookup(id)
	if err != nil {
		return common.Rejected[scene.Node](err)
	}
	if r.Type != TypeMeshBundle {
		return common.Rejected[scene.Node](&TypeMismatchError{ID: id, Want: TypeMeshBundle, Got: r.Type})
	}
	return p.decodeMesh(r)
}

func (p *pipeline) LoadEnvironment(id string) *common.Future[scene.Texture] {
	r, err := p.lookup(id)
	if err != nil {
		return common.Rejected[scene.Texture](err)
	}
	if r.Type != TypeEnvironmentMap {
		return common.Rejected[scene.Texture](&TypeMismatchError{ID: id, Want: TypeEnvironmentMap, Got: r.Type})
	}
	return p.decodeEnvironment(r)
}

func (p *pipeline) Get(id string) (Resource, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.resources[id]
	return r, ok
}

func (p *pipeline) List() []Resource {
	p.mu.Lock()
	list := make([]Resource, 0, len(p.resources))
	for _, r := range p.resources {
		list = append(list, r)
	}
	p.mu.Unlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (p *pipeline) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resources = make(map[string]Resource)
}

func (p *pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.pending == 0 {
		close(p.drained)
	}
	p.mu.Unlock()

	p.cancel()
	go func() {
		<-p.drained
		p.pool.Stop()
		p.logger.Debug("resource pipeline drained")
	}()
	p.logger.Debug("resource pipeline closed")
}

// lookup returns the resource registered under id, or the error a load of id rejects with.
func (p *pipeline) lookup(id string) (Resource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return Resource{}, ErrPipelineClosed
	}
	r, ok := p.resources[id]
	if !ok {
		return Resource{}, &NotFoundError{ID: id}
	}
	return r, nil
}

func (p *pipeline) decodeMesh(r Resource) *common.Future[scene.Node] {
	dec := p.meshDecoder
	if dec == nil {
		return common.Rejected[scene.Node](p.decodeFailed(r, ErrNoDecoder))
	}
	return submit(p, r, func(ctx context.Context) (scene.Node, error) {
		return dec.DecodeMesh(ctx, r.URL)
	})
}

func (p *pipeline) decodeEnvironment(r Resource) *common.Future[scene.Texture] {
	dec := p.imageDecoder
	if dec == nil {
		return common.Rejected[scene.Texture](p.decodeFailed(r, ErrNoDecoder))
	}
	return submit(p, r, func(ctx context.Context) (scene.Texture, error) {
		tex, err := dec.DecodeImage(ctx, r.URL)
		if err != nil {
			return nil, err
		}
		tex.SetMapping(scene.MappingEquirectangularReflection)
		return tex, nil
	})
}

// submit runs decode for r on the worker pool. The returned future settles exactly once with the decode's
// result, or with a *DecodeError if it fails or panics.
func submit[T any](p *pipeline, r Resource, decode func(ctx context.Context) (T, error)) *common.Future[T] {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return common.Rejected[T](ErrPipelineClosed)
	}
	p.pending++
	p.mu.Unlock()

	f := common.NewFuture[T]()
	id := int(p.taskID.Add(1))

	p.logger.Debug("loading resource",
		slog.String("id", r.ID),
		slog.String("type", r.Type.String()),
		slog.String("url", r.URL),
	)

	p.pool.SubmitTask(worker.Task{
		ID:      id,
		Payload: r,
		Do: func() (result any, err error) {
			defer p.taskDone()
			defer func() {
				if rec := recover(); rec != nil {
					err = p.decodeFailed(r, fmt.Errorf("decoder panicked: %v", rec))
					f.Reject(err)
				}
			}()

			v, err := decode(p.ctx)
			if err != nil {
				err = p.decodeFailed(r, err)
				f.Reject(err)
				return nil, err
			}
			f.Resolve(v)
			return v, nil
		},
	})
	return f
}

// taskDone marks one submitted decode as settled and releases a pending Close after the last one.
func (p *pipeline) taskDone() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending--
	if p.pending == 0 && p.closed {
		close(p.drained)
	}
}

// decodeFailed logs a failed decode and returns the error its load rejects with.
func (p *pipeline) decodeFailed(r Resource, err error) error {
	p.logger.Error("failed to load resource",
		slog.String("id", r.ID),
		slog.String("type", r.Type.String()),
		slog.String("url", r.URL),
		slog.Any("error", err),
	)
	return &DecodeError{ID: r.ID, Type: r.Type, URL: r.URL, Err: err}
}
