package camera

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-3

func TestPerspectiveDefaults(t *testing.T) {
	c := NewPerspectiveCamera()

	assert.Equal(t, VariantPerspective, c.Variant())
	assert.Equal(t, float32(50), c.Fov())
	assert.Equal(t, float32(0.1), c.Near())
	assert.Equal(t, float32(2000), c.Far())
	assert.Equal(t, common.Vec3{X: 1, Y: 1, Z: 1}, c.Position())
	assert.InDelta(t, 50, c.EffectiveFov(), eps)
}

func TestOrthographicDefaults(t *testing.T) {
	c := NewOrthographicCamera(1000)

	assert.Equal(t, VariantOrthographic, c.Variant())
	l, r, top, b := c.Frustum()
	assert.Equal(t, []float32{-500, 500, 500, -500}, []float32{l, r, top, b})
	assert.Equal(t, float32(2000), c.Far())
	assert.Equal(t, common.Vec3{Z: 100}, c.Position())
}

func TestFullViewOffsetMatchesNoOffset(t *testing.T) {
	for _, c := range []Camera{NewPerspectiveCamera(WithAspect(1.5)), NewOrthographicCamera(10)} {
		before := c.ProjectionMatrix()
		c.SetViewOffset(300, 200, 0, 0, 300, 200)
		after := c.ProjectionMatrix()
		assert.InDeltaSlice(t, before[:], after[:], 1e-5, c.Variant().String())

		_, ok := c.ViewOffset()
		assert.True(t, ok)
		c.ClearViewOffset()
		_, ok = c.ViewOffset()
		assert.False(t, ok)
	}
}

func TestOrthographicZoomShrinksVolume(t *testing.T) {
	c := NewOrthographicCamera(10)
	c.SetZoom(2)

	// the volume is now 5 units tall, so y=2.5 lands on the top clip edge
	p := common.Vec3{Y: 2.5, Z: -1}.MulMatrix4(c.ProjectionMatrix())
	assert.InDelta(t, 1, p.Y, 1e-5)

	c.SetZoom(0)
	assert.Equal(t, float32(2), c.Zoom())
}

func TestViewMatrixFollowsPose(t *testing.T) {
	c := NewPerspectiveCamera()
	c.SetPose(common.Vec3{Z: 10}, common.Vec3Zero)

	view := c.ViewMatrix()
	p := common.Vec3Zero.MulMatrix4(view)
	require.True(t, p.ApproxEqual(common.Vec3{Z: -10}, eps))
}
