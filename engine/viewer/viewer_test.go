package viewer

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/surface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopBackend struct{}

func (nopBackend) ConfigureSurface(int, int)           {}
func (nopBackend) SetPresentMode(renderer.PresentMode) {}
func (nopBackend) BeginFrame(common.Color) error       { return nil }
func (nopBackend) EndFrame()                           {}
func (nopBackend) Present()                            {}
func (nopBackend) Release()                            {}

// recordingRenderer counts resizes and separates direct renders from composed ones.
type recordingRenderer struct {
	renderer.Renderer

	mu        sync.Mutex
	sizes     [][2]int
	direct    int
	submitted []*renderer.Frame
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{Renderer: renderer.NewRenderer(nopBackend{})}
}

func (r *recordingRenderer) SetSize(width, height int) {
	r.mu.Lock()
	r.sizes = append(r.sizes, [2]int{width, height})
	r.mu.Unlock()
	r.Renderer.SetSize(width, height)
}

func (r *recordingRenderer) RenderFrame(s scene.Scene, cam camera.Camera) error {
	r.mu.Lock()
	r.direct++
	r.mu.Unlock()
	return r.Renderer.RenderFrame(s, cam)
}

func (r *recordingRenderer) Submit(f *renderer.Frame) error {
	r.mu.Lock()
	r.submitted = append(r.submitted, f)
	r.mu.Unlock()
	return r.Renderer.Submit(f)
}

func (r *recordingRenderer) Sizes() [][2]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][2]int, len(r.sizes))
	copy(out, r.sizes)
	return out
}

func (r *recordingRenderer) Direct() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.direct
}

func (r *recordingRenderer) Submitted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.submitted)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, nil)), buf
}

func modelNode(center common.Vec3) scene.Node {
	mesh := &scene.Mesh{
		Name:   "box",
		Bounds: common.NewBox3(common.Vec3{X: -1, Y: -1, Z: -1}, common.Vec3{X: 1, Y: 1, Z: 1}),
	}
	return scene.NewNode(
		scene.WithNodeName("model"),
		scene.WithTransform(center, common.QuatIdentity, common.Vec3{X: 1, Y: 1, Z: 1}),
		scene.WithMeshes(mesh),
	)
}

func TestResizeSetsSizeOnceAndSnapsToFit(t *testing.T) {
	r := newRecordingRenderer()
	container := surface.NewFixedContainer(800, 600)
	v := NewViewer(r, WithContainer(container))

	center := common.Vec3{X: 2, Y: 1, Z: 0}
	v.Scene().Add(modelNode(center))
	v.Frame().SetFitVolume(v.Scene().BoundingBox())

	require.Equal(t, [][2]int{{800, 600}}, r.Sizes())
	controls := v.Frame().Controls()
	require.Equal(t, common.Vec3Zero, controls.Target(), "no fit before the resize")

	container.SetSize(400, 300)
	require.NoError(t, v.Tick(1.0/60))

	assert.Equal(t, [][2]int{{800, 600}, {400, 300}}, r.Sizes(), "exactly one SetSize per change")
	assert.True(t, controls.Target().ApproxEqual(center, 1e-4), "the camera jumped to the fit in a single tick")
	assert.Equal(t, controls.TargetEnd(), controls.Target())
	radius, azimuth, polar := controls.Spherical()
	endRadius, endAzimuth, endPolar := controls.SphericalEnd()
	assert.Equal(t, endRadius, radius)
	assert.Equal(t, endAzimuth, azimuth)
	assert.Equal(t, endPolar, polar)
	assert.True(t, controls.Resting())
	assert.InDelta(t, 400.0/300.0, v.Frame().Perspective().Aspect(), 1e-6)

	w, h := v.Composer().Size()
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, h)

	require.NoError(t, v.Tick(1.0/60))
	assert.Len(t, r.Sizes(), 2, "an unchanged container does not resize")
}

func TestTickRendersDirectOrThroughEffects(t *testing.T) {
	r := newRecordingRenderer()
	v := NewViewer(r, WithContainer(surface.NewFixedContainer(64, 64)))

	require.NoError(t, v.Tick(0.016))
	assert.Equal(t, 1, r.Direct())
	assert.Equal(t, 0, r.Submitted())

	v.SetUseEffects(true)
	require.NoError(t, v.Tick(0.016))
	assert.Equal(t, 1, r.Direct())
	assert.Equal(t, 1, r.Submitted())
	assert.Equal(t, []string{"render", "output"}, r.submitted[0].Passes)
	assert.Equal(t, 8, r.submitted[0].Samples)
}

func TestTickNeedRenderGate(t *testing.T) {
	r := newRecordingRenderer()
	v := NewViewer(r, WithContainer(surface.NewFixedContainer(64, 64)))

	v.SetNeedRender(false)
	assert.False(t, v.NeedRender())
	require.NoError(t, v.Tick(0.016))
	assert.Zero(t, r.Direct())

	v.SetNeedRender(true)
	require.NoError(t, v.Tick(0.016))
	assert.Equal(t, 1, r.Direct())
}

func TestTickAdvancesControls(t *testing.T) {
	r := newRecordingRenderer()
	v := NewViewer(r, WithContainer(surface.NewFixedContainer(64, 64)))
	controls := v.Frame().Controls()

	fut := controls.MoveTo(common.Vec3{X: 1}, true)
	controls.SetEnabled(false)
	require.NoError(t, v.Tick(0.1))
	assert.Equal(t, common.Vec3Zero, controls.Target(), "disabled controls are not advanced")

	controls.SetEnabled(true)
	for i := 0; i < 600 && !fut.Settled(); i++ {
		require.NoError(t, v.Tick(1.0/60))
	}
	assert.True(t, fut.Settled())
	assert.Equal(t, common.Vec3{X: 1}, controls.Target())
}

func TestStartStopStateMachine(t *testing.T) {
	logger, logs := newLogger()
	r := newRecordingRenderer()
	v := NewViewer(r, WithContainer(surface.NewFixedContainer(32, 32)), WithTickRate(500), WithViewerLogger(logger))

	v.Stop()
	assert.Contains(t, logs.String(), "viewer is not running")

	v.Start()
	v.Start()
	assert.True(t, v.Running())
	assert.Contains(t, logs.String(), "viewer is already running")

	assert.Eventually(t, func() bool { return r.Direct() > 2 }, 5*time.Second, 5*time.Millisecond)

	v.Stop()
	assert.False(t, v.Running())
	frames := r.Direct()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frames, r.Direct(), "no ticks after Stop")

	v.Start()
	assert.True(t, v.Running(), "a stopped viewer can be restarted")
	v.Stop()
}

func TestInitializeRunsSceneSetupOnce(t *testing.T) {
	logger, logs := newLogger()
	calls := 0
	o := DefaultOptions()
	o.SceneSetup = func(v Viewer) {
		calls++
		v.Scene().Add(modelNode(common.Vec3{}))
	}
	v := NewViewer(newRecordingRenderer(), WithOptions(o), WithViewerLogger(logger))

	v.Initialize()
	v.Initialize()
	assert.Equal(t, 1, calls)
	assert.Len(t, v.Scene().Content().Children(), 1)
	assert.Contains(t, logs.String(), "viewer is already initialized")
}

func TestDispose(t *testing.T) {
	logger, logs := newLogger()
	r := newRecordingRenderer()
	v := NewViewer(r, WithContainer(surface.NewFixedContainer(32, 32)), WithViewerLogger(logger), WithTickRate(500))
	v.Start()

	v.Dispose()
	assert.False(t, v.Running())
	assert.Nil(t, v.Container())
	assert.ErrorIs(t, v.Tick(0.016), renderer.ErrRendererDisposed)

	v.Dispose()
	assert.Contains(t, logs.String(), "viewer is already disposed")

	v.Start()
	assert.False(t, v.Running())
	assert.Contains(t, logs.String(), "viewer is disposed and cannot be started")

	v.Initialize()
	assert.Contains(t, logs.String(), "viewer is disposed and cannot be initialized")
}

func TestSetContainerAttachDetach(t *testing.T) {
	r := newRecordingRenderer()
	v := NewViewer(r)
	assert.ErrorIs(t, v.Tick(0.016), renderer.ErrNoSurface)

	c := surface.NewFixedContainer(320, 240)
	v.SetContainer(c)
	assert.Equal(t, [][2]int{{320, 240}}, r.Sizes(), "attaching syncs the size at once")
	assert.InDelta(t, 320.0/240.0, v.Frame().Perspective().Aspect(), 1e-6)

	v.SetContainer(nil)
	assert.Nil(t, v.Container())
	c.SetSize(100, 100)
	require.NoError(t, v.Tick(0.016), "a detached viewer keeps rendering at its last size")
	assert.Len(t, r.Sizes(), 1)

	// reattaching at the same size still recomputes the projection
	require.NoError(t, v.Frame().SetViewportOffset(common.Insets{Left: 20}))
	v.SetContainer(surface.NewFixedContainer(320, 240))
	assert.InDelta(t, 300.0/240.0, v.Frame().Perspective().Aspect(), 1e-6)
}

func TestSetUseOrthographicRepointsPass(t *testing.T) {
	v := NewViewer(newRecordingRenderer(), WithContainer(surface.NewFixedContainer(100, 100)))
	assert.Same(t, v.Frame().Perspective(), v.RenderPass().Camera())

	require.NoError(t, v.SetUseOrthographic(true))
	assert.Same(t, v.Frame().Orthographic(), v.Camera())
	assert.Same(t, v.Frame().Orthographic(), v.RenderPass().Camera())
	assert.Same(t, v.Frame().Orthographic(), v.Frame().Controls().Camera())
	assert.True(t, v.Options().UseOrthographic)

	require.NoError(t, v.SetUseOrthographic(false))
	assert.Same(t, v.Frame().Perspective(), v.RenderPass().Camera())
}

func TestNewViewerAppliesOptions(t *testing.T) {
	r := newRecordingRenderer()
	o := ShowcaseOptions()
	o.UseOrthographic = true
	o.OrthographicSize = 200
	v := NewViewer(r, WithOptions(o))

	assert.Equal(t, float32(1.8), r.ToneMappingExposure())
	assert.Equal(t, common.NewColorHex(0xf2f2f2), r.ClearColor())
	assert.Equal(t, camera.VariantOrthographic, v.Frame().ActiveVariant())
	assert.Equal(t, float32(200), v.Frame().OrthographicSize())
	assert.Equal(t, o.Padding, v.Frame().Padding())
	assert.Equal(t, o.AngularOffset, v.Frame().AngularOffset())
	assert.Equal(t, float32(100), v.Frame().FitRadius())
	assert.Equal(t, 8, v.Composer().SampleCount())
}

func TestOptionPresets(t *testing.T) {
	d := DefaultOptions()
	assert.Equal(t, float32(1), d.ToneMappingExposure)
	assert.Equal(t, common.Insets{}, d.Padding)
	assert.Equal(t, common.Vec3Z, d.FitAxis)
	assert.Equal(t, float32(5), d.fitRadius())
	assert.False(t, d.UseEffects)

	s := ShowcaseOptions()
	assert.Equal(t, float32(1.8), s.ToneMappingExposure)
	assert.Equal(t, common.Insets{Top: 0.1, Bottom: 0.2, Left: 0.1, Right: 0.1}, s.Padding)
	assert.InDelta(t, math.Pi/6, s.AngularOffset.X, 1e-6)
	assert.InDelta(t, -math.Pi/5, s.AngularOffset.Y, 1e-6)

	s.FitRadius = 12
	assert.Equal(t, float32(12), s.fitRadius())
}

func TestSetDefaultPositionSnaps(t *testing.T) {
	v := NewViewer(newRecordingRenderer(), WithContainer(surface.NewFixedContainer(100, 100)))
	v.Frame().SetFitVolume(common.NewBox3(common.Vec3{}, common.Vec3{X: 2, Y: 2, Z: 2}))

	fut := v.SetDefaultPosition(context.Background(), false)
	require.True(t, fut.Settled(), "a snap resolves at once")
	_, err := fut.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, v.Camera().Target().ApproxEqual(common.Vec3{X: 1, Y: 1, Z: 1}, 1e-4))
}
