// package common contains common types that are used throughout this viewer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types: vectors, quaternions, bounding boxes, insets and colors.
package common

import (
	"github.com/chewxy/math32"
)

// Vec2 is a 2-component float32 vector.
type Vec2 struct {
	X, Y float32
}

// Vec3 is a 3-component float32 vector.
type Vec3 struct {
	X, Y, Z float32
}

// Quat is a rotation quaternion stored as (x, y, z, w).
type Quat struct {
	X, Y, Z, W float32
}

// Box3 is an axis-aligned bounding box. A box whose Max is below its Min on any axis is empty;
// use EmptyBox3 to start accumulating points.
type Box3 struct {
	Min, Max Vec3
}

// Insets holds four per-side values. Depending on use they are pixel insets (viewport offset)
// or fractions of a fitted volume (padding).
type Insets struct {
	Top    float32 `toml:"top" yaml:"top"`
	Bottom float32 `toml:"bottom" yaml:"bottom"`
	Left   float32 `toml:"left" yaml:"left"`
	Right  float32 `toml:"right" yaml:"right"`
}

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

var (
	// Vec3Zero is the origin.
	Vec3Zero = Vec3{}
	// Vec3X is the unit X axis.
	Vec3X = Vec3{1, 0, 0}
	// Vec3Y is the unit Y axis, the world up direction.
	Vec3Y = Vec3{0, 1, 0}
	// Vec3Z is the unit Z axis.
	Vec3Z = Vec3{0, 0, 1}
	// QuatIdentity is the identity rotation.
	QuatIdentity = Quat{0, 0, 0, 1}
)

// --- Vec3 ---

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// MulScalar returns v scaled by s.
func (v Vec3) MulScalar(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Mul returns the component-wise product of v and o.
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the Euclidean length of v.
func (v Vec3) Length() float32 { return math32.Sqrt(v.Dot(v)) }

// Normal returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec3) Normal() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.MulScalar(1 / l)
}

// IsZero reports whether every component of v is exactly zero.
func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Min returns the component-wise minimum of v and o.
func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{math32.Min(v.X, o.X), math32.Min(v.Y, o.Y), math32.Min(v.Z, o.Z)}
}

// Max returns the component-wise maximum of v and o.
func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{math32.Max(v.X, o.X), math32.Max(v.Y, o.Y), math32.Max(v.Z, o.Z)}
}

// ApproxEqual reports whether v and o differ by at most eps on every axis.
func (v Vec3) ApproxEqual(o Vec3, eps float32) bool {
	return math32.Abs(v.X-o.X) <= eps && math32.Abs(v.Y-o.Y) <= eps && math32.Abs(v.Z-o.Z) <= eps
}

// MulQuat rotates v by the quaternion q.
func (v Vec3) MulQuat(q Quat) Vec3 {
	tx := 2 * (q.Y*v.Z - q.Z*v.Y)
	ty := 2 * (q.Z*v.X - q.X*v.Z)
	tz := 2 * (q.X*v.Y - q.Y*v.X)
	return Vec3{
		v.X + q.W*tx + q.Y*tz - q.Z*ty,
		v.Y + q.W*ty + q.Z*tx - q.X*tz,
		v.Z + q.W*tz + q.X*ty - q.Y*tx,
	}
}

// MulMatrix4 transforms the point v by the column-major 4x4 matrix m, including the perspective divide.
func (v Vec3) MulMatrix4(m [16]float32) Vec3 {
	w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]
	if w == 0 {
		w = 1
	}
	return Vec3{
		(m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]) / w,
		(m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]) / w,
		(m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]) / w,
	}
}

// --- Quat ---

// NewQuatAxisAngle returns the rotation of angle radians around the unit axis.
func NewQuatAxisAngle(axis Vec3, angle float32) Quat {
	half := angle / 2
	s := math32.Sin(half)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, math32.Cos(half)}
}

// NewQuatUnitVectors returns the shortest rotation taking the unit vector from onto the unit vector to.
func NewQuatUnitVectors(from, to Vec3) Quat {
	var q Quat
	r := from.Dot(to) + 1
	if r < 1e-6 {
		// from and to point in opposite directions
		r = 0
		if math32.Abs(from.X) > math32.Abs(from.Z) {
			q = Quat{-from.Y, from.X, 0, r}
		} else {
			q = Quat{0, -from.Z, from.Y, r}
		}
	} else {
		c := from.Cross(to)
		q = Quat{c.X, c.Y, c.Z, r}
	}
	return q.Normal()
}

// Mul returns the Hamilton product q * o, which applies o first and then q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		q.X*o.W + q.W*o.X + q.Y*o.Z - q.Z*o.Y,
		q.Y*o.W + q.W*o.Y + q.Z*o.X - q.X*o.Z,
		q.Z*o.W + q.W*o.Z + q.X*o.Y - q.Y*o.X,
		q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Inverse returns the inverse of the unit quaternion q.
func (q Quat) Inverse() Quat { return Quat{-q.X, -q.Y, -q.Z, q.W} }

// Normal returns q scaled to unit length. A zero quaternion becomes the identity.
func (q Quat) Normal() Quat {
	l := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return QuatIdentity
	}
	return Quat{q.X / l, q.Y / l, q.Z / l, q.W / l}
}

// --- Box3 ---

// EmptyBox3 returns a box containing no points.
func EmptyBox3() Box3 {
	inf := math32.Inf(1)
	return Box3{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// NewBox3 returns the box spanning the two corners a and b in any order.
func NewBox3(a, b Vec3) Box3 {
	return Box3{Min: a.Min(b), Max: a.Max(b)}
}

// IsEmpty reports whether the box contains no points.
func (b Box3) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// Center returns the midpoint of the box, or the origin when the box is empty.
func (b Box3) Center() Vec3 {
	if b.IsEmpty() {
		return Vec3Zero
	}
	return b.Min.Add(b.Max).MulScalar(0.5)
}

// Size returns the extent of the box along each axis, or zero when the box is empty.
func (b Box3) Size() Vec3 {
	if b.IsEmpty() {
		return Vec3Zero
	}
	return b.Max.Sub(b.Min)
}

// ExpandByPoint returns the smallest box containing b and p.
func (b Box3) ExpandByPoint(p Vec3) Box3 {
	return Box3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing b and o. Empty boxes contribute nothing.
func (b Box3) Union(o Box3) Box3 {
	if o.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return o
	}
	return Box3{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Corners returns the eight corners of the box.
func (b Box3) Corners() [8]Vec3 {
	return [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z},
		{b.Min.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Min.Z},
		{b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Min.Z},
		{b.Max.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Min.Z},
		{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

// ApplyMatrix4 returns the axis-aligned box enclosing b after transforming its corners by m.
func (b Box3) ApplyMatrix4(m [16]float32) Box3 {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox3()
	for _, c := range b.Corners() {
		out = out.ExpandByPoint(c.MulMatrix4(m))
	}
	return out
}

// ApplyQuat returns the axis-aligned box enclosing b after rotating its corners by q.
func (b Box3) ApplyQuat(q Quat) Box3 {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox3()
	for _, c := range b.Corners() {
		out = out.ExpandByPoint(c.MulQuat(q))
	}
	return out
}

// --- Color ---

// NewColorHex converts a 0xRRGGBB value to an opaque Color.
func NewColorHex(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xff) / 255,
		G: float32((hex>>8)&0xff) / 255,
		B: float32(hex&0xff) / 255,
		A: 1,
	}
}
