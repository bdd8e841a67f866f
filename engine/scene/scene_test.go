package scene

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func unitCube() *Mesh {
	return &Mesh{
		Name:   "cube",
		Bounds: common.NewBox3(common.Vec3{X: -1, Y: -1, Z: -1}, common.Vec3{X: 1, Y: 1, Z: 1}),
	}
}

func TestEmptySceneHasEmptyBounds(t *testing.T) {
	s := NewScene()
	assert.True(t, s.BoundingBox().IsEmpty())

	// groups without geometry contribute nothing
	s.Add(NewNode(WithNodeName("empty")))
	s.System().Add(NewNode(WithNodeName("camera")))
	assert.True(t, s.BoundingBox().IsEmpty())
}

func TestSceneBoundsFollowTransforms(t *testing.T) {
	child := NewNode(
		WithMeshes(unitCube()),
		WithTransform(common.Vec3{X: 10}, common.QuatIdentity, common.Vec3{X: 2, Y: 2, Z: 2}),
	)
	parent := NewNode(
		WithChildren(child),
		WithTransform(common.Vec3{Y: 5}, common.QuatIdentity, common.Vec3{X: 1, Y: 1, Z: 1}),
	)

	s := NewScene(WithContent(parent))
	box := s.BoundingBox()

	require.False(t, box.IsEmpty())
	assert.True(t, box.Min.ApproxEqual(common.Vec3{X: 8, Y: 3, Z: -2}, eps))
	assert.True(t, box.Max.ApproxEqual(common.Vec3{X: 12, Y: 7, Z: 2}, eps))
	assert.True(t, box.Center().ApproxEqual(common.Vec3{X: 10, Y: 5}, eps))
}

func TestSceneBoundsRotated(t *testing.T) {
	mesh := &Mesh{Bounds: common.NewBox3(common.Vec3{X: -2, Y: -1, Z: -1}, common.Vec3{X: 2, Y: 1, Z: 1})}
	n := NewNode(WithMeshes(mesh))
	n.SetRotation(common.NewQuatAxisAngle(common.Vec3Y, math.Pi/2))

	s := NewScene()
	s.Add(n)
	assert.True(t, s.BoundingBox().Size().ApproxEqual(common.Vec3{X: 2, Y: 2, Z: 4}, eps))
}

func TestNodeReparenting(t *testing.T) {
	a := NewNode(WithNodeName("a"))
	b := NewNode(WithNodeName("b"))
	c := NewNode(WithNodeName("c"))

	a.Add(c)
	require.Len(t, a.Children(), 1)
	b.Add(c)
	assert.Empty(t, a.Children())
	assert.Equal(t, b, c.Parent())

	b.Remove(c)
	assert.Nil(t, c.Parent())

	a.Add(a)
	assert.Empty(t, a.Children())
}

func TestTraverseVisitsParentsFirst(t *testing.T) {
	s := NewScene()
	m := NewNode(WithNodeName("model"), WithChildren(NewNode(WithNodeName("part"))))
	s.Add(m)

	var names []string
	s.Root().Traverse(func(n Node) { names = append(names, n.Name()) })
	assert.Equal(t, []string{"root", "system", "content", "model", "part"}, names)
}

func TestSceneClearKeepsSystemGroup(t *testing.T) {
	s := NewScene()
	s.System().Add(NewNode(WithNodeName("camera")))
	s.Add(NewNode(WithMeshes(unitCube())))
	require.False(t, s.BoundingBox().IsEmpty())

	s.Clear()
	assert.True(t, s.BoundingBox().IsEmpty())
	assert.Len(t, s.System().Children(), 1)
}

func TestEnvironment(t *testing.T) {
	s := NewScene()
	assert.Nil(t, s.Environment())

	tex := NewTexture(WithRGBA32F(1, 1, []float32{1, 1, 1, 1}), WithMapping(MappingEquirectangularReflection))
	s.SetEnvironment(tex)
	assert.Equal(t, tex, s.Environment())
	assert.Equal(t, FormatRGBA32F, tex.Format())
	assert.Equal(t, "equirectangular-reflection", tex.Mapping().String())
}
