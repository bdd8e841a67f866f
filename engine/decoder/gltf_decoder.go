package decoder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
)

// ErrUnsupportedExtension is returned for documents that require a glTF extension the decoder cannot read.
var ErrUnsupportedExtension = errors.New("decoder: unsupported required glTF extension")

type gltfDecoder struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// GLTFDecoder decodes glTF 2.0 (.gltf with external or embedded buffers) and GLB documents into a scene graph.
// The node hierarchy and transforms of the default scene are preserved; every triangle primitive becomes a
// scene.Mesh carrying positions, optional normals and UVs, optional indices and its local bounds.
type GLTFDecoder interface {
	// DecodeMesh fetches and decodes the document at location.
	//
	// Parameters:
	//   - ctx: cancels fetching the document and its buffers
	//   - location: URL or path of the .gltf/.glb document
	//
	// Returns:
	//   - scene.Node: a root node named after the document, holding the default scene's root nodes
	//   - error: error if fetching or decoding fails
	DecodeMesh(ctx context.Context, location string) (scene.Node, error)
}

var _ GLTFDecoder = &gltfDecoder{}

// NewGLTFDecoder creates a GLTFDecoder. Without WithGLTFFetcher it reads through NewFetcher().
//
// Parameters:
//   - options: functional options to configure the decoder
//
// Returns:
//   - GLTFDecoder: the newly created decoder
func NewGLTFDecoder(options ...GLTFDecoderBuilderOption) GLTFDecoder {
	d := &gltfDecoder{
		logger: common.Logger(),
	}
	for _, option := range options {
		option(d)
	}
	if d.fetcher == nil {
		d.fetcher = NewFetcher(WithFetcherLogger(d.logger))
	}
	return d
}

func (d *gltfDecoder) DecodeMesh(ctx context.Context, location string) (scene.Node, error) {
	data, err := d.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}

	p := newGLTFParser(d.fetcher, location)
	if err := p.Parse(ctx, data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", location, err)
	}
	if len(p.document.ExtensionsRequired) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedExtension, p.document.ExtensionsRequired)
	}

	b := &gltfSceneBuilder{
		parser:   p,
		meshes:   make(map[int][]*scene.Mesh),
		visiting: make(map[int]bool),
	}
	root, err := b.build(baseName(location))
	if err != nil {
		return nil, fmt.Errorf("failed to build scene from %s: %w", location, err)
	}

	d.logger.Debug("decoded glTF",
		slog.String("location", location),
		slog.Int("nodes", len(p.document.Nodes)),
		slog.Int("meshes", len(b.meshes)),
	)
	return root, nil
}

// gltfSceneBuilder turns a parsed document into scene nodes. Meshes referenced by several nodes are extracted
// once and shared.
type gltfSceneBuilder struct {
	parser   *gltfParser
	meshes   map[int][]*scene.Mesh
	visiting map[int]bool
}

func (b *gltfSceneBuilder) build(name string) (scene.Node, error) {
	doc := b.parser.document
	root := scene.NewNode(scene.WithNodeName(name))

	for _, idx := range b.rootNodes() {
		n, err := b.buildNode(idx)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	if len(doc.Nodes) == 0 {
		// documents without nodes still render their meshes
		for i := range doc.Meshes {
			meshes, err := b.mesh(i)
			if err != nil {
				return nil, err
			}
			for _, m := range meshes {
				root.AddMesh(m)
			}
		}
	}
	return root, nil
}

// rootNodes returns the default scene's nodes, falling back to every node no other node lists as a child.
func (b *gltfSceneBuilder) rootNodes() []int {
	doc := b.parser.document
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

func (b *gltfSceneBuilder) buildNode(index int) (scene.Node, error) {
	doc := b.parser.document
	if index < 0 || index >= len(doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", index)
	}
	if b.visiting[index] {
		return nil, fmt.Errorf("node %d is its own ancestor", index)
	}
	b.visiting[index] = true
	defer delete(b.visiting, index)

	src := &doc.Nodes[index]
	position, rotation, scale := nodeTransform(src)

	opts := []scene.NodeBuilderOption{
		scene.WithNodeName(src.Name),
		scene.WithTransform(position, rotation, scale),
	}
	if src.Mesh != nil {
		meshes, err := b.mesh(*src.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", index, err)
		}
		opts = append(opts, scene.WithMeshes(meshes...))
	}
	n := scene.NewNode(opts...)

	for _, c := range src.Children {
		child, err := b.buildNode(c)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

// nodeTransform returns the node's local transform from its matrix or its TRS properties.
func nodeTransform(n *gltfNode) (common.Vec3, common.Quat, common.Vec3) {
	if n.Matrix != nil {
		return common.Decompose(*n.Matrix)
	}

	position := common.Vec3Zero
	rotation := common.QuatIdentity
	scale := common.Vec3{X: 1, Y: 1, Z: 1}
	if t := n.Translation; t != nil {
		position = common.Vec3{X: t[0], Y: t[1], Z: t[2]}
	}
	if r := n.Rotation; r != nil {
		rotation = common.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]}
	}
	if s := n.Scale; s != nil {
		scale = common.Vec3{X: s[0], Y: s[1], Z: s[2]}
	}
	return position, rotation, scale
}

// mesh extracts glTF mesh index, one scene.Mesh per primitive.
func (b *gltfSceneBuilder) mesh(index int) ([]*scene.Mesh, error) {
	if cached, ok := b.meshes[index]; ok {
		return cached, nil
	}

	doc := b.parser.document
	if index < 0 || index >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", index)
	}

	src := &doc.Meshes[index]
	result := make([]*scene.Mesh, 0, len(src.Primitives))
	for primIdx := range src.Primitives {
		m, err := b.extractPrimitive(&src.Primitives[primIdx])
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", index, primIdx, err)
		}
		m.Name = src.Name
		if len(src.Primitives) > 1 {
			m.Name = fmt.Sprintf("%s.%d", src.Name, primIdx)
		}
		result = append(result, m)
	}

	b.meshes[index] = result
	return result, nil
}

func (b *gltfSceneBuilder) extractPrimitive(prim *gltfPrimitive) (*scene.Mesh, error) {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return nil, fmt.Errorf("unsupported primitive mode: %d (only triangles supported)", *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := b.parser.ReadFloatAccessor(posAccessor, gltfAccessorTypeVec3)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}
	vertexCount := len(positions) / 3

	m := &scene.Mesh{
		Positions: positions,
		Bounds:    positionBounds(positions),
	}

	if normalAccessor, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := b.parser.ReadFloatAccessor(normalAccessor, gltfAccessorTypeVec3)
		if err != nil {
			return nil, fmt.Errorf("failed to read normals: %w", err)
		}
		if len(normals)/3 != vertexCount {
			return nil, fmt.Errorf("NORMAL has %d elements for %d vertices", len(normals)/3, vertexCount)
		}
		m.Normals = normals
	}

	if texCoordAccessor, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := b.parser.ReadFloatAccessor(texCoordAccessor, gltfAccessorTypeVec2)
		if err != nil {
			return nil, fmt.Errorf("failed to read texcoords: %w", err)
		}
		if len(uvs)/2 != vertexCount {
			return nil, fmt.Errorf("TEXCOORD_0 has %d elements for %d vertices", len(uvs)/2, vertexCount)
		}
		m.UVs = uvs
	}

	if prim.Indices != nil {
		indices, err := b.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= vertexCount {
				return nil, fmt.Errorf("index %d out of range for %d vertices", idx, vertexCount)
			}
		}
		m.Indices = indices
	}

	return m, nil
}

// positionBounds returns the box enclosing a packed xyz position slice.
func positionBounds(positions []float32) common.Box3 {
	box := common.EmptyBox3()
	for i := 0; i+2 < len(positions); i += 3 {
		box = box.ExpandByPoint(common.Vec3{X: positions[i], Y: positions[i+1], Z: positions[i+2]})
	}
	return box
}
