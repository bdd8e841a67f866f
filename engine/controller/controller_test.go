package controller

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/resource"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/surface"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBroken = errors.New("broken asset")

type nopBackend struct{}

func (nopBackend) ConfigureSurface(int, int)           {}
func (nopBackend) SetPresentMode(renderer.PresentMode) {}
func (nopBackend) BeginFrame(common.Color) error       { return nil }
func (nopBackend) EndFrame()                           {}
func (nopBackend) Present()                            {}
func (nopBackend) Release()                            {}

// boxDecoder decodes every mesh into a unit-sized box centered at center. When gate is set each decode reports
// on started and waits for gate to close.
type boxDecoder struct {
	center  common.Vec3
	calls   atomic.Int32
	err     error
	started chan string
	gate    chan struct{}
}

func (d *boxDecoder) DecodeMesh(ctx context.Context, url string) (scene.Node, error) {
	d.calls.Add(1)
	if d.gate != nil {
		d.started <- url
		<-d.gate
	}
	if d.err != nil {
		return nil, d.err
	}
	mesh := &scene.Mesh{
		Name:   url,
		Bounds: common.NewBox3(common.Vec3{X: -1, Y: -1, Z: -1}, common.Vec3{X: 1, Y: 1, Z: 1}),
	}
	return scene.NewNode(
		scene.WithNodeName(url),
		scene.WithTransform(d.center, common.QuatIdentity, common.Vec3{X: 1, Y: 1, Z: 1}),
		scene.WithMeshes(mesh),
	), nil
}

type hdrDecoder struct {
	calls   atomic.Int32
	err     error
	started chan string
	gate    chan struct{}
}

func (d *hdrDecoder) DecodeImage(ctx context.Context, url string) (scene.Texture, error) {
	d.calls.Add(1)
	if d.gate != nil {
		d.started <- url
		<-d.gate
	}
	if d.err != nil {
		return nil, d.err
	}
	return scene.NewTexture(scene.WithTextureName(url), scene.WithRGBA32F(1, 1, []float32{1, 1, 1, 1})), nil
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

func wait[T any](t *testing.T, f *common.Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := f.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "future never settled")
	return v, err
}

type fixture struct {
	controller Controller
	mesh       *boxDecoder
	image      *hdrDecoder
	logs       *syncBuffer
}

func newFixture(t *testing.T, mesh *boxDecoder, image *hdrDecoder) *fixture {
	t.Helper()
	logs := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))

	p := resource.NewPipeline(
		resource.WithWorkers(2),
		resource.WithMeshDecoder(mesh),
		resource.WithImageDecoder(image),
		resource.WithPipelineLogger(logger),
	)
	t.Cleanup(p.Close)

	v := viewer.NewViewer(
		renderer.NewRenderer(nopBackend{}),
		viewer.WithContainer(surface.NewFixedContainer(800, 600)),
		viewer.WithTickRate(500),
		viewer.WithViewerLogger(logger),
	)
	c := NewController(v, WithPipeline(p), WithControllerLogger(logger))
	return &fixture{controller: c, mesh: mesh, image: image, logs: logs}
}

var (
	mesh1 = resource.Resource{ID: "mesh1", Type: resource.TypeMeshBundle, URL: "a.glb"}
	env1  = resource.Resource{ID: "env1", Type: resource.TypeEnvironmentMap, URL: "b.hdr"}
)

func TestBuildLoadsConcurrentlyAndFitsContent(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan string, 2)
	center := common.Vec3{X: 3, Y: 2, Z: -1}
	f := newFixture(t,
		&boxDecoder{center: center, started: started, gate: gate},
		&hdrDecoder{started: started, gate: gate},
	)
	c := f.controller

	build := c.Build(context.Background(), mesh1, env1)
	assert.True(t, c.Loading())

	// both decodes are in flight before either is released
	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case url := <-started:
			got[url] = true
		case <-time.After(5 * time.Second):
			t.Fatal("loads did not start concurrently")
		}
	}
	assert.Equal(t, map[string]bool{"a.glb": true, "b.hdr": true}, got)
	close(gate)

	_, err := wait(t, build)
	require.NoError(t, err)
	assert.False(t, c.Loading())

	s := c.Viewer().Scene()
	require.Len(t, s.Content().Children(), 1)
	require.NotNil(t, s.Environment())
	assert.Equal(t, "b.hdr", s.Environment().Name())
	assert.Equal(t, scene.MappingEquirectangularReflection, s.Environment().Mapping())

	volume := c.Viewer().Frame().FitVolume()
	assert.Equal(t, s.BoundingBox(), volume)
	assert.True(t, volume.Center().ApproxEqual(center, 1e-5))
	assert.True(t, c.Viewer().Camera().Target().ApproxEqual(volume.Center(), 1e-4),
		"the volume center lies on the look-at target")
}

func TestLoadMissingRejectsWithoutDecoding(t *testing.T) {
	f := newFixture(t, &boxDecoder{}, &hdrDecoder{})

	_, err := wait(t, f.controller.LoadResource("missing"))
	var notFound *resource.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.ID)
	assert.Zero(t, f.mesh.calls.Load())
	assert.Zero(t, f.image.calls.Load())
}

func TestBuildSwallowsPerResourceFailures(t *testing.T) {
	f := newFixture(t, &boxDecoder{err: errBroken}, &hdrDecoder{})
	c := f.controller

	_, err := wait(t, c.Build(context.Background(), mesh1, env1))
	require.NoError(t, err, "a failed load does not fail the build")
	assert.False(t, c.Loading())

	s := c.Viewer().Scene()
	assert.Empty(t, s.Content().Children())
	assert.NotNil(t, s.Environment(), "the environment still applies")
	assert.True(t, c.Viewer().Frame().FitVolume().IsEmpty(), "no re-fit without content")
	assert.Contains(t, f.logs.String(), "failed to load model")
	assert.Contains(t, f.logs.String(), "broken asset")
}

func TestBuildBothFailing(t *testing.T) {
	f := newFixture(t, &boxDecoder{err: errBroken}, &hdrDecoder{err: errBroken})
	c := f.controller

	_, err := wait(t, c.Build(context.Background(), mesh1, env1))
	require.NoError(t, err)
	assert.Nil(t, c.Viewer().Scene().Environment())
	assert.Contains(t, f.logs.String(), "failed to load environment map")
}

func TestBuildWaitBoundedByContext(t *testing.T) {
	gate := make(chan struct{})
	started := make(chan string, 2)
	f := newFixture(t, &boxDecoder{started: started, gate: gate}, &hdrDecoder{started: started, gate: gate})
	c := f.controller

	ctx, cancel := context.WithCancel(context.Background())
	build := c.Build(ctx, mesh1, env1)
	<-started
	<-started
	cancel()

	_, err := wait(t, build)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, c.Loading(), "the loads carry on after the caller stops waiting")

	close(gate)
	assert.Eventually(t, func() bool { return !c.Loading() }, 5*time.Second, 5*time.Millisecond)
	assert.Len(t, c.Viewer().Scene().Content().Children(), 1)
}

func TestResourceRegistry(t *testing.T) {
	f := newFixture(t, &boxDecoder{}, &hdrDecoder{})
	c := f.controller

	c.AddResource(env1)
	c.AddResource(mesh1)
	c.AddResource(resource.Resource{ID: "mesh1", Type: resource.TypeMeshBundle, URL: "c.glb"})

	r, ok := c.GetResource("mesh1")
	require.True(t, ok)
	assert.Equal(t, "c.glb", r.URL)
	assert.Equal(t, []resource.Resource{env1, {ID: "mesh1", Type: resource.TypeMeshBundle, URL: "c.glb"}}, c.Resources())

	v, err := wait(t, c.LoadResource("mesh1"))
	require.NoError(t, err)
	node, ok := v.(scene.Node)
	require.True(t, ok)
	assert.Equal(t, "c.glb", node.Name())
}

func TestSceneHelpers(t *testing.T) {
	f := newFixture(t, &boxDecoder{}, &hdrDecoder{})
	c := f.controller

	c.AddModelToScene(nil)
	assert.Empty(t, c.Viewer().Scene().Content().Children())

	n, err := f.mesh.DecodeMesh(context.Background(), "x.glb")
	require.NoError(t, err)
	c.AddModelToScene(n)
	c.UpdateCameraView()
	assert.True(t, c.Viewer().Camera().Target().ApproxEqual(common.Vec3Zero, 1e-4))

	tex := scene.NewTexture(scene.WithTextureName("sky"))
	c.SetEnvironmentMap(tex)
	assert.Same(t, tex, c.Viewer().Scene().Environment())
}

func TestInitializeDispose(t *testing.T) {
	f := newFixture(t, &boxDecoder{}, &hdrDecoder{})
	c := f.controller

	c.Dispose()
	assert.Contains(t, f.logs.String(), "controller is not initialized")

	c.Initialize()
	assert.True(t, c.IsActive())
	assert.True(t, c.Viewer().Running())

	c.Initialize()
	assert.Contains(t, f.logs.String(), "controller is already initialized")

	c.AddResource(mesh1)
	c.Dispose()
	assert.False(t, c.IsActive())
	assert.False(t, c.Viewer().Running())
	assert.Empty(t, c.Resources(), "the registry is cleared")
	assert.ErrorIs(t, c.Viewer().Tick(0.016), renderer.ErrRendererDisposed)

	_, err := wait(t, c.LoadResource("mesh1"))
	var notFound *resource.NotFoundError
	assert.ErrorAs(t, err, &notFound, "a caller-owned pipeline stays open")
}

func TestDisposeClosesOwnedPipeline(t *testing.T) {
	v := viewer.NewViewer(renderer.NewRenderer(nopBackend{}))
	c := NewController(v)

	c.Initialize()
	c.Dispose()

	_, err := wait(t, c.LoadResource("anything"))
	assert.ErrorIs(t, err, resource.ErrPipelineClosed)
}

// writeAssets writes a glTF triangle with an embedded buffer spanning (0,0,0)-(1,2,0) and a 2x1 Radiance HDR
// image to dir.
func writeAssets(t *testing.T, dir string) (gltfPath, hdrPath string) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []float32{0, 0, 0, 1, 0, 0, 0, 2, 0}))
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scenes": [{"nodes": [0]}],
  "nodes": [{"name": "tri", "mesh": 0}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
  "accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
  "bufferViews": [{"buffer": 0, "byteLength": 36}],
  "buffers": [{"uri": %q, "byteLength": 36}]
}`, uri)
	gltfPath = filepath.Join(dir, "triangle.gltf")
	require.NoError(t, os.WriteFile(gltfPath, []byte(doc), 0o644))

	hdr := append([]byte("#?RADIANCE\nFORMAT=32-bit_rle_rgbe\n\n-Y 1 +X 2\n"), 128, 128, 128, 129, 0, 0, 0, 0)
	hdrPath = filepath.Join(dir, "studio.hdr")
	require.NoError(t, os.WriteFile(hdrPath, hdr, 0o644))
	return gltfPath, hdrPath
}

func TestDefaultPipelineDecodesAssetFiles(t *testing.T) {
	gltfPath, hdrPath := writeAssets(t, t.TempDir())
	v := viewer.NewViewer(renderer.NewRenderer(nopBackend{}), viewer.WithContainer(surface.NewFixedContainer(800, 600)))
	c := NewController(v)
	t.Cleanup(c.Pipeline().Close)

	object := resource.Resource{ID: "triangle", Type: resource.TypeMeshBundle, URL: gltfPath}
	environment := resource.Resource{ID: "studio", Type: resource.TypeEnvironmentMap, URL: hdrPath}

	c.AddResource(object)
	n, err := wait(t, c.LoadResource("triangle"))
	require.NoError(t, err)
	require.Implements(t, (*scene.Node)(nil), n)

	_, err = wait(t, c.Build(context.Background(), object, environment))
	require.NoError(t, err)

	s := c.Viewer().Scene()
	require.Len(t, s.Content().Children(), 1)
	box := s.BoundingBox()
	assert.True(t, box.Min.ApproxEqual(common.Vec3Zero, 1e-5))
	assert.True(t, box.Max.ApproxEqual(common.Vec3{X: 1, Y: 2}, 1e-5))

	env := s.Environment()
	require.NotNil(t, env)
	w, h := env.Size()
	assert.Equal(t, 2, w)
	assert.Equal(t, 1, h)
	assert.Equal(t, scene.MappingEquirectangularReflection, env.Mapping())
}

func TestNewControllerRequiresViewer(t *testing.T) {
	assert.Panics(t, func() { NewController(nil) })
}
