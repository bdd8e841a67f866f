package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// ErrNoScenePass is returned when a Composer renders without any enabled pass supplying a scene.
var ErrNoScenePass = errors.New("renderer: no enabled pass supplied a scene")

// Pass is one stage of a Composer chain. Passes run in insertion order and each one contributes
// to the Frame that is finally submitted to the Renderer.
type Pass interface {
	// Name identifies the pass in logs and frame descriptions.
	Name() string

	// Enabled reports whether the pass takes part in rendering.
	Enabled() bool

	// SetEnabled enables or disables the pass.
	SetEnabled(enabled bool)

	// SetSize is called when the composer is resized.
	SetSize(width, height int)

	// Render contributes to the frame.
	//
	// Parameters:
	//   - r: the renderer the frame will be submitted to
	//   - f: the frame being assembled
	//
	// Returns:
	//   - error: an error aborts the frame
	Render(r Renderer, f *Frame) error
}

type composer struct {
	mu     *sync.Mutex
	logger *slog.Logger

	renderer    Renderer
	passes      []Pass
	sampleCount int
	width       int
	height      int
	disposed    bool
}

// Composer chains post-processing passes over a Renderer. A typical chain is a RenderPass
// followed by an OutputPass.
// Thread-safe for concurrent access.
type Composer interface {
	// AddPass appends a pass to the chain and sizes it to the composer.
	//
	// Parameters:
	//   - p: the pass to append
	AddPass(p Pass)

	// RemovePass removes a pass from the chain.
	//
	// Parameters:
	//   - p: the pass to remove
	RemovePass(p Pass)

	// Passes returns the chain in order.
	Passes() []Pass

	// SampleCount returns the sample count of the composer's intermediate target.
	SampleCount() int

	// SetSize resizes the composer and every pass.
	//
	// Parameters:
	//   - width: width in pixels
	//   - height: height in pixels
	SetSize(width, height int)

	// Size returns the composer size in pixels.
	Size() (width, height int)

	// Render runs every enabled pass and submits the assembled frame.
	//
	// Returns:
	//   - error: ErrNoScenePass, a pass error or a renderer error
	Render() error

	// Dispose drops the passes. Rendering after Dispose fails with ErrRendererDisposed.
	Dispose()
}

var _ Composer = &composer{}

// NewComposer creates a Composer submitting to r. The composer starts sized to the renderer.
//
// Parameters:
//   - r: the renderer frames are submitted to
//   - options: functional options to configure the composer
//
// Returns:
//   - Composer: the newly created composer
func NewComposer(r Renderer, options ...ComposerBuilderOption) Composer {
	if r == nil {
		panic("renderer: NewComposer requires a renderer")
	}
	c := &composer{
		mu:          &sync.Mutex{},
		logger:      common.Logger(),
		renderer:    r,
		sampleCount: 4,
	}
	c.width, c.height = r.Size()
	for _, option := range options {
		option(c)
	}
	for _, p := range c.passes {
		p.SetSize(c.width, c.height)
	}
	return c
}

func (c *composer) AddPass(p Pass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.SetSize(c.width, c.height)
	c.passes = append(c.passes, p)
}

func (c *composer) RemovePass(p Pass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.passes {
		if existing == p {
			c.passes = append(c.passes[:i], c.passes[i+1:]...)
			return
		}
	}
}

func (c *composer) Passes() []Pass {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Pass, len(c.passes))
	copy(out, c.passes)
	return out
}

func (c *composer) SampleCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sampleCount
}

func (c *composer) SetSize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
	for _, p := range c.passes {
		p.SetSize(width, height)
	}
}

func (c *composer) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *composer) Render() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrRendererDisposed
	}
	passes := make([]Pass, len(c.passes))
	copy(passes, c.passes)
	f := &Frame{
		Clear:   c.renderer.ClearColor(),
		Samples: c.sampleCount,
	}
	c.mu.Unlock()

	for _, p := range passes {
		if !p.Enabled() {
			continue
		}
		if err := p.Render(c.renderer, f); err != nil {
			return fmt.Errorf("pass %q failed: %w", p.Name(), err)
		}
		f.Passes = append(f.Passes, p.Name())
	}
	if f.Scene == nil {
		return ErrNoScenePass
	}
	return c.renderer.Submit(f)
}

func (c *composer) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	c.passes = nil
	c.logger.Debug("composer disposed")
}
