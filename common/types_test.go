package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBox3Empty(t *testing.T) {
	b := EmptyBox3()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, Vec3Zero, b.Center())
	assert.Equal(t, Vec3Zero, b.Size())

	b = b.ExpandByPoint(Vec3{1, 2, 3})
	assert.False(t, b.IsEmpty())
	assert.Equal(t, Vec3{1, 2, 3}, b.Center())
}

func TestBox3Union(t *testing.T) {
	a := NewBox3(Vec3{0, 0, 0}, Vec3{1, 1, 1})
	b := NewBox3(Vec3{2, -1, 0}, Vec3{3, 0, 4})

	u := a.Union(b)
	assert.Equal(t, Vec3{0, -1, 0}, u.Min)
	assert.Equal(t, Vec3{3, 1, 4}, u.Max)
	assert.Equal(t, a, a.Union(EmptyBox3()))
	assert.Equal(t, b, EmptyBox3().Union(b))
}

func TestBox3ApplyQuat(t *testing.T) {
	b := NewBox3(Vec3{-2, -1, -1}, Vec3{2, 1, 1})
	r := b.ApplyQuat(NewQuatAxisAngle(Vec3Y, math.Pi/2))

	assert.True(t, r.Size().ApproxEqual(Vec3{2, 2, 4}, eps))
}

func TestQuatUnitVectors(t *testing.T) {
	from := Vec3{1, 1, 0}.Normal()
	q := NewQuatUnitVectors(from, Vec3Z)
	assert.True(t, from.MulQuat(q).ApproxEqual(Vec3Z, eps))

	// opposite vectors still produce a valid half turn
	q = NewQuatUnitVectors(Vec3Z, Vec3{0, 0, -1})
	assert.True(t, Vec3Z.MulQuat(q).ApproxEqual(Vec3{0, 0, -1}, eps))
}

func TestQuatInverse(t *testing.T) {
	q := NewQuatAxisAngle(Vec3{0, 0.6, 0.8}, 1.2)
	v := Vec3{3, -2, 1}
	assert.True(t, v.MulQuat(q).MulQuat(q.Inverse()).ApproxEqual(v, eps))
	assert.True(t, v.MulQuat(q.Mul(q.Inverse())).ApproxEqual(v, eps))
}

func TestNewColorHex(t *testing.T) {
	c := NewColorHex(0xf2f2f2)
	assert.InDelta(t, 242.0/255.0, c.R, 1e-6)
	assert.InDelta(t, 242.0/255.0, c.G, 1e-6)
	assert.InDelta(t, 242.0/255.0, c.B, 1e-6)
	assert.Equal(t, float32(1), c.A)
}
