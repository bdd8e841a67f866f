package renderer

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPass struct {
	basePass
	err error
}

func (p *failingPass) Render(Renderer, *Frame) error {
	return p.err
}

// capturingRenderer wraps a renderer and keeps the last submitted frame.
type capturingRenderer struct {
	Renderer
	last *Frame
}

func (r *capturingRenderer) Submit(f *Frame) error {
	r.last = f
	return r.Renderer.Submit(f)
}

func newCapturingRenderer(options ...RendererBuilderOption) (*capturingRenderer, *recordingBackend) {
	backend := &recordingBackend{}
	return &capturingRenderer{Renderer: NewRenderer(backend, options...)}, backend
}

func TestComposerRendersChainInOrder(t *testing.T) {
	r, backend := newCapturingRenderer(WithSize(800, 600), WithToneMappingExposure(1.8))
	s := newTestScene()
	cam := camera.NewPerspectiveCamera()

	c := NewComposer(r, WithSampleCount(8))
	c.AddPass(NewRenderPass(s, cam))
	c.AddPass(NewOutputPass())

	require.NoError(t, c.Render())
	require.NotNil(t, r.last)
	assert.Equal(t, []string{"render", "output"}, r.last.Passes)
	assert.Same(t, s, r.last.Scene)
	assert.Same(t, cam, r.last.Camera)
	assert.Equal(t, float32(1.8), r.last.Exposure)
	assert.Equal(t, 8, r.last.Samples)
	assert.Equal(t, ToneMap(common.NewColorHex(0xf2f2f2), 1.8), r.last.Clear)
	assert.Equal(t, []string{"configure", "begin", "end", "present"}, backend.Calls())
}

func TestComposerSkipsDisabledPasses(t *testing.T) {
	r, _ := newCapturingRenderer(WithSize(10, 10))
	output := NewOutputPass()
	output.SetEnabled(false)

	c := NewComposer(r, WithPasses(NewRenderPass(newTestScene(), camera.NewPerspectiveCamera()), output))
	require.NoError(t, c.Render())

	assert.Equal(t, []string{"render"}, r.last.Passes)
	assert.Zero(t, r.last.Exposure)
	assert.Equal(t, common.NewColorHex(0xf2f2f2), r.last.Clear)
}

func TestComposerWithoutScenePass(t *testing.T) {
	r, backend := newCapturingRenderer(WithSize(10, 10))
	c := NewComposer(r, WithPasses(NewOutputPass()))

	assert.ErrorIs(t, c.Render(), ErrNoScenePass)
	assert.Equal(t, []string{"configure"}, backend.Calls())
}

func TestComposerPassErrorAbortsFrame(t *testing.T) {
	sentinel := errors.New("boom")
	r, backend := newCapturingRenderer(WithSize(10, 10))
	c := NewComposer(r, WithPasses(
		NewRenderPass(newTestScene(), camera.NewPerspectiveCamera()),
		&failingPass{basePass: newBasePass("broken"), err: sentinel},
	))

	err := c.Render()
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), `"broken"`)
	assert.Nil(t, r.last)
	assert.Equal(t, []string{"configure"}, backend.Calls())
}

func TestComposerSizing(t *testing.T) {
	r, _ := newCapturingRenderer(WithSize(800, 600))
	rp := NewRenderPass(newTestScene(), camera.NewPerspectiveCamera())
	c := NewComposer(r, WithPasses(rp))

	w, h := rp.Size()
	assert.Equal(t, 800, w, "passes given at construction are sized to the renderer")
	assert.Equal(t, 600, h)

	c.SetSize(400, 300)
	w, h = c.Size()
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)
	w, h = rp.Size()
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)

	late := NewRenderPass(newTestScene(), camera.NewPerspectiveCamera())
	c.AddPass(late)
	w, _ = late.Size()
	assert.Equal(t, 400, w)
}

func TestComposerRemovePass(t *testing.T) {
	r, _ := newCapturingRenderer(WithSize(10, 10))
	rp := NewRenderPass(newTestScene(), camera.NewPerspectiveCamera())
	op := NewOutputPass()
	c := NewComposer(r, WithPasses(rp, op))

	c.RemovePass(op)
	assert.Equal(t, []Pass{rp}, c.Passes())
}

func TestComposerSampleCountClamp(t *testing.T) {
	r, _ := newCapturingRenderer()
	assert.Equal(t, 4, NewComposer(r).SampleCount())
	assert.Equal(t, 1, NewComposer(r, WithSampleCount(0)).SampleCount())
}

func TestComposerDispose(t *testing.T) {
	r, _ := newCapturingRenderer(WithSize(10, 10))
	c := NewComposer(r, WithPasses(NewRenderPass(newTestScene(), camera.NewPerspectiveCamera())))

	c.Dispose()
	c.Dispose()
	assert.Empty(t, c.Passes())
	assert.ErrorIs(t, c.Render(), ErrRendererDisposed)
}

func TestRenderPassSetCamera(t *testing.T) {
	persp := camera.NewPerspectiveCamera()
	ortho := camera.NewOrthographicCamera(1000)
	rp := NewRenderPass(newTestScene(), persp)

	rp.SetCamera(ortho)
	assert.Same(t, ortho, rp.Camera())

	f := &Frame{}
	require.NoError(t, rp.Render(nil, f))
	assert.Same(t, ortho, f.Camera)
}

func TestToneMap(t *testing.T) {
	black := ToneMap(common.Color{A: 0.5}, 1)
	assert.Equal(t, common.Color{A: 0.5}, black)

	bright := ToneMap(common.Color{R: 100, G: 100, B: 100, A: 1}, 1)
	assert.InDelta(t, 1, bright.R, 1e-5, "large values saturate")

	dim := ToneMap(common.Color{R: 0.2, G: 0.2, B: 0.2, A: 1}, 1)
	brighter := ToneMap(common.Color{R: 0.2, G: 0.2, B: 0.2, A: 1}, 1.8)
	assert.Greater(t, brighter.R, dim.R, "exposure brightens")
	assert.Greater(t, dim.R, float32(0))
	assert.Less(t, dim.R, float32(1))
}
