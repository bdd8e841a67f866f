package decoder

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// triangleBuffer returns three positions (0,0,0) (1,0,0) (0,2,0) followed by uint16 indices 0 1 2, padded to 44
// bytes.
func triangleBuffer() []byte {
	var buf bytes.Buffer
	positions := []float32{0, 0, 0, 1, 0, 0, 0, 2, 0}
	_ = binary.Write(&buf, binary.LittleEndian, positions)
	_ = binary.Write(&buf, binary.LittleEndian, []uint16{0, 1, 2, 0})
	return buf.Bytes()
}

// triangleDocument returns a glTF document whose only buffer is described by bufferJSON. A translated parent
// holds a scaled child carrying the triangle.
func triangleDocument(bufferJSON string) string {
	return fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [
    {"name": "parent", "translation": [1, 0, 0], "children": [1]},
    {"name": "tri", "mesh": 0, "scale": [2, 2, 2]}
  ],
  "meshes": [{"name": "triangle", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "buffers": [%s]
}`, bufferJSON)
}

func embeddedTriangle() []byte {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBuffer())
	return []byte(triangleDocument(fmt.Sprintf(`{"uri": %q, "byteLength": 44}`, uri)))
}

func glbTriangle() []byte {
	jsonChunk := []byte(triangleDocument(`{"byteLength": 44}`))
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	binChunk := triangleBuffer()

	var buf bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)})
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: gltfGLBChunkJSON})
	buf.Write(jsonChunk)
	_ = binary.Write(&buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(binChunk)), ChunkType: gltfGLBChunkBIN})
	buf.Write(binChunk)
	return buf.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func assertTriangleScene(t *testing.T, root scene.Node, name string) {
	t.Helper()
	assert.Equal(t, name, root.Name())
	require.Len(t, root.Children(), 1)

	parent := root.Children()[0]
	assert.Equal(t, "parent", parent.Name())
	assert.Equal(t, common.Vec3{X: 1}, parent.Position())
	require.Len(t, parent.Children(), 1)

	tri := parent.Children()[0]
	require.Len(t, tri.Meshes(), 1)
	m := tri.Meshes()[0]
	assert.Equal(t, "triangle", m.Name)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 2, 0}, m.Positions)
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
	assert.Equal(t, common.NewBox3(common.Vec3Zero, common.Vec3{X: 1, Y: 2}), m.Bounds)

	box := root.BoundingBox()
	assert.True(t, box.Min.ApproxEqual(common.Vec3{X: 1}, 1e-5))
	assert.True(t, box.Max.ApproxEqual(common.Vec3{X: 3, Y: 4}, 1e-5))
}

func TestDecodeMeshEmbeddedBuffer(t *testing.T) {
	p := writeFile(t, t.TempDir(), "tri.gltf", embeddedTriangle())

	root, err := NewGLTFDecoder().DecodeMesh(context.Background(), p)
	require.NoError(t, err)
	assertTriangleScene(t, root, "tri")
}

func TestDecodeMeshGLB(t *testing.T) {
	p := writeFile(t, t.TempDir(), "model.glb", glbTriangle())

	root, err := NewGLTFDecoder().DecodeMesh(context.Background(), p)
	require.NoError(t, err)
	assertTriangleScene(t, root, "model")
}

func TestDecodeMeshExternalBufferRelativeToDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "assets"), 0o755))
	writeFile(t, dir, "assets/tri.bin", triangleBuffer())
	writeFile(t, dir, "assets/tri.gltf", []byte(triangleDocument(`{"uri": "tri.bin", "byteLength": 44}`)))

	d := NewGLTFDecoder(WithGLTFFetcher(NewFetcher(WithRootDir(dir))))
	root, err := d.DecodeMesh(context.Background(), "assets/tri.gltf")
	require.NoError(t, err)
	assertTriangleScene(t, root, "tri")
}

func TestDecodeMeshOverHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/models/tri.gltf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(triangleDocument(`{"uri": "bin/tri.bin", "byteLength": 44}`)))
	})
	mux.HandleFunc("/models/bin/tri.bin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(triangleBuffer())
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d := NewGLTFDecoder(WithGLTFFetcher(NewFetcher(WithHTTPClient(srv.Client()))))
	root, err := d.DecodeMesh(context.Background(), srv.URL+"/models/tri.gltf?v=2")
	require.NoError(t, err)
	assertTriangleScene(t, root, "tri")
}

func TestDecodeMeshErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewGLTFDecoder().DecodeMesh(context.Background(), filepath.Join(dir, "nope.glb"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("wrong version", func(t *testing.T) {
		p := writeFile(t, dir, "v1.gltf", []byte(`{"asset": {"version": "1.0"}}`))
		_, err := NewGLTFDecoder().DecodeMesh(context.Background(), p)
		assert.ErrorIs(t, err, errInvalidGLTFVersion)
	})

	t.Run("required extension", func(t *testing.T) {
		p := writeFile(t, dir, "draco.gltf", []byte(`{"asset": {"version": "2.0"}, "extensionsRequired": ["KHR_draco_mesh_compression"]}`))
		_, err := NewGLTFDecoder().DecodeMesh(context.Background(), p)
		assert.ErrorIs(t, err, ErrUnsupportedExtension)
	})

	t.Run("short buffer", func(t *testing.T) {
		uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBuffer()[:20])
		p := writeFile(t, dir, "short.gltf", []byte(triangleDocument(fmt.Sprintf(`{"uri": %q, "byteLength": 44}`, uri))))
		_, err := NewGLTFDecoder().DecodeMesh(context.Background(), p)
		assert.ErrorIs(t, err, errBufferSizeMismatch)
	})

	t.Run("oversized GLB chunk", func(t *testing.T) {
		var buf bytes.Buffer
		_ = binary.Write(&buf, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: 28})
		_ = binary.Write(&buf, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: 0xffffffff, ChunkType: gltfGLBChunkJSON})
		buf.WriteString("{}  ")
		p := writeFile(t, dir, "huge.glb", buf.Bytes())
		_, err := NewGLTFDecoder().DecodeMesh(context.Background(), p)
		assert.ErrorIs(t, err, errGLBChunkTooLarge)
	})

	t.Run("node cycle", func(t *testing.T) {
		p := writeFile(t, dir, "cycle.gltf", []byte(`{
  "asset": {"version": "2.0"},
  "scenes": [{"nodes": [0]}],
  "nodes": [{"children": [1]}, {"children": [0]}]
}`))
		_, err := NewGLTFDecoder().DecodeMesh(context.Background(), p)
		assert.ErrorContains(t, err, "own ancestor")
	})
}

func TestDecodeMeshWithoutScenesUsesUnparentedNodes(t *testing.T) {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBuffer())
	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "nodes": [{"name": "a", "children": [1]}, {"name": "b", "mesh": 0}, {"name": "c"}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
  "accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
  "bufferViews": [{"buffer": 0, "byteLength": 36}],
  "buffers": [{"uri": %q, "byteLength": 44}]
}`, uri)
	p := writeFile(t, t.TempDir(), "loose.gltf", []byte(doc))

	root, err := NewGLTFDecoder().DecodeMesh(context.Background(), p)
	require.NoError(t, err)

	var names []string
	for _, c := range root.Children() {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"a", "c"}, names)
	assert.Nil(t, root.Children()[0].Children()[0].Meshes()[0].Indices)
}

func TestNodeTransformFromMatrix(t *testing.T) {
	m := [16]float32{
		2, 0, 0, 0,
		0, 2, 0, 0,
		0, 0, 2, 0,
		5, 6, 7, 1,
	}
	pos, rot, scale := nodeTransform(&gltfNode{Matrix: &m})
	assert.True(t, pos.ApproxEqual(common.Vec3{X: 5, Y: 6, Z: 7}, 1e-5))
	assert.True(t, scale.ApproxEqual(common.Vec3{X: 2, Y: 2, Z: 2}, 1e-5))
	assert.InDelta(t, 1, rot.W, 1e-5)
}
