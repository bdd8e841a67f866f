package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
)

// Variant selects the projection model of a Camera.
type Variant int

const (
	// VariantPerspective projects with a vertical field of view.
	VariantPerspective Variant = iota
	// VariantOrthographic projects a fixed-size view volume.
	VariantOrthographic
)

// String returns the variant's name.
func (v Variant) String() string {
	switch v {
	case VariantPerspective:
		return "perspective"
	case VariantOrthographic:
		return "orthographic"
	default:
		return "unknown"
	}
}

// ViewOffset describes a sub-rectangle of a larger virtual viewport that the camera renders.
type ViewOffset struct {
	FullWidth, FullHeight float32
	OffsetX, OffsetY      float32
	Width, Height         float32
}

type cameraImpl struct {
	mu *sync.Mutex

	variant Variant
	name    string

	up       common.Vec3
	position common.Vec3
	target   common.Vec3

	// perspective
	fov    float32 // degrees
	aspect float32

	// orthographic
	left, right, top, bottom float32

	zoom float32
	near float32
	far  float32

	view *ViewOffset

	viewMatrix              [16]float32
	projectionMatrix        [16]float32
	viewProjectionMatrix    [16]float32
	inverseProjectionMatrix [16]float32
}

// Camera defines the interface for a perspective or orthographic camera.
// The camera holds its projection parameters and a pose (position and look-at target) and keeps its
// view, projection and view-projection matrices current. Every setter recomputes the matrices.
// Thread-safe for concurrent access.
type Camera interface {
	// Name returns the camera's name.
	Name() string

	// Variant returns the projection model of the camera. It is fixed at construction.
	//
	// Returns:
	//   - Variant: perspective or orthographic
	Variant() Variant

	// Up returns the camera's up vector.
	Up() common.Vec3

	// SetUp sets the camera's up vector.
	//
	// Parameters:
	//   - up: the up vector
	SetUp(up common.Vec3)

	// Position returns the world-space camera position.
	Position() common.Vec3

	// Target returns the world-space point the camera looks at.
	Target() common.Vec3

	// SetPose places the camera at position looking at target.
	//
	// Parameters:
	//   - position: world-space camera position
	//   - target: world-space look-at point
	SetPose(position, target common.Vec3)

	// Fov returns the vertical field of view in degrees. Only used by perspective cameras.
	//
	// Returns:
	//   - float32: field of view in degrees
	Fov() float32

	// SetFov sets the vertical field of view in degrees.
	//
	// Parameters:
	//   - fov: field of view in degrees
	SetFov(fov float32)

	// EffectiveFov returns the vertical field of view in degrees after applying zoom.
	//
	// Returns:
	//   - float32: the effective field of view in degrees
	EffectiveFov() float32

	// Aspect returns the aspect ratio (width / height). Only used by perspective cameras.
	Aspect() float32

	// SetAspect sets the aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Frustum returns the orthographic view volume extents. Only used by orthographic cameras.
	//
	// Returns:
	//   - left, right, top, bottom: extents in view space
	Frustum() (left, right, top, bottom float32)

	// SetFrustum sets the orthographic view volume extents.
	//
	// Parameters:
	//   - left, right, top, bottom: extents in view space
	SetFrustum(left, right, top, bottom float32)

	// Zoom returns the zoom factor.
	Zoom() float32

	// SetZoom sets the zoom factor. Values <= 0 are ignored.
	//
	// Parameters:
	//   - zoom: the zoom factor
	SetZoom(zoom float32)

	// Near returns the near clipping plane distance.
	Near() float32

	// SetNear sets the near clipping plane distance.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// Far returns the far clipping plane distance.
	Far() float32

	// SetFar sets the far clipping plane distance.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// ViewOffset returns the active view offset.
	//
	// Returns:
	//   - ViewOffset: the offset
	//   - bool: false when no view offset is set
	ViewOffset() (ViewOffset, bool)

	// SetViewOffset renders only a sub-rectangle of a larger virtual viewport.
	//
	// Parameters:
	//   - fullWidth, fullHeight: size of the full virtual viewport
	//   - x, y: top-left corner of the sub-rectangle
	//   - width, height: size of the sub-rectangle
	SetViewOffset(fullWidth, fullHeight, x, y, width, height float32)

	// ClearViewOffset removes any view offset.
	ClearViewOffset()

	// UpdateProjectionMatrix rebuilds the projection matrix from the current parameters.
	UpdateProjectionMatrix()

	// ViewMatrix returns the current 4x4 view matrix (column-major).
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 projection matrix (column-major).
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the combined view-projection matrix (column-major).
	ViewProjectionMatrix() [16]float32

	// InverseProjectionMatrix returns the inverse of the projection matrix (column-major).
	InverseProjectionMatrix() [16]float32
}

var _ Camera = &cameraImpl{}

// NewPerspectiveCamera creates a perspective camera with a 50 degree field of view, a near plane of 0.1, a far
// plane of 2000 and a position of (1, 1, 1) looking at the origin.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewPerspectiveCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		variant:  VariantPerspective,
		name:     "perspective",
		up:       common.Vec3Y,
		position: common.Vec3{X: 1, Y: 1, Z: 1},
		fov:      50,
		aspect:   1,
		zoom:     1,
		near:     0.1,
		far:      2000,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

// NewOrthographicCamera creates an orthographic camera whose view volume is size units tall and wide, with a near
// plane of 0.1, a far plane of size*2 and a position of (0, 0, 100) looking at the origin.
//
// Parameters:
//   - size: full height (and width) of the view volume
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewOrthographicCamera(size float32, options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		variant:  VariantOrthographic,
		name:     "orthographic",
		up:       common.Vec3Y,
		position: common.Vec3{Z: 100},
		left:     -size / 2,
		right:    size / 2,
		top:      size / 2,
		bottom:   -size / 2,
		aspect:   1,
		zoom:     1,
		near:     0.1,
		far:      size * 2,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

func (c *cameraImpl) Variant() Variant {
	return c.variant
}

func (c *cameraImpl) Up() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) SetUp(up common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
	c.updateMatrices()
}

func (c *cameraImpl) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) SetPose(position, target common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateMatrices()
}

func (c *cameraImpl) EffectiveFov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.RadToDeg(2 * math32.Atan(math32.Tan(common.DegToRad(c.fov)/2)/c.zoom))
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Frustum() (left, right, top, bottom float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left, c.right, c.top, c.bottom
}

func (c *cameraImpl) SetFrustum(left, right, top, bottom float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.left, c.right, c.top, c.bottom = left, right, top, bottom
	c.updateMatrices()
}

func (c *cameraImpl) Zoom() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *cameraImpl) SetZoom(zoom float32) {
	if zoom <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = zoom
	c.updateMatrices()
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateMatrices()
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateMatrices()
}

func (c *cameraImpl) ViewOffset() (ViewOffset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view == nil {
		return ViewOffset{}, false
	}
	return *c.view, true
}

func (c *cameraImpl) SetViewOffset(fullWidth, fullHeight, x, y, width, height float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = &ViewOffset{
		FullWidth:  fullWidth,
		FullHeight: fullHeight,
		OffsetX:    x,
		OffsetY:    y,
		Width:      width,
		Height:     height,
	}
	c.updateMatrices()
}

func (c *cameraImpl) ClearViewOffset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = nil
	c.updateMatrices()
}

func (c *cameraImpl) UpdateProjectionMatrix() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) InverseProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseProjectionMatrix
}

// updateMatrices recalculates the view, projection, view-projection, and inverse projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	common.LookAt(c.viewMatrix[:], c.position, c.target, c.up)

	switch c.variant {
	case VariantOrthographic:
		c.orthographicProjection()
	default:
		c.perspectiveProjection()
	}

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
	common.Invert4(c.inverseProjectionMatrix[:], c.projectionMatrix[:])
}

// perspectiveProjection builds an off-center frustum so a view offset can select a sub-rectangle of the image.
// Caller must hold the mutex.
func (c *cameraImpl) perspectiveProjection() {
	top := c.near * math32.Tan(common.DegToRad(c.fov)/2) / c.zoom
	height := 2 * top
	width := c.aspect * height
	left := -width / 2

	if v := c.view; v != nil && v.FullWidth > 0 && v.FullHeight > 0 {
		left += v.OffsetX * width / v.FullWidth
		top -= v.OffsetY * height / v.FullHeight
		width *= v.Width / v.FullWidth
		height *= v.Height / v.FullHeight
	}

	common.Frustum(c.projectionMatrix[:], left, left+width, top, top-height, c.near, c.far)
}

// orthographicProjection scales the view volume by zoom around its center, then applies the view offset.
// Caller must hold the mutex.
func (c *cameraImpl) orthographicProjection() {
	dx := (c.right - c.left) / (2 * c.zoom)
	dy := (c.top - c.bottom) / (2 * c.zoom)
	cx := (c.right + c.left) / 2
	cy := (c.top + c.bottom) / 2

	left := cx - dx
	right := cx + dx
	top := cy + dy
	bottom := cy - dy

	if v := c.view; v != nil && v.FullWidth > 0 && v.FullHeight > 0 {
		scaleW := (c.right - c.left) / v.FullWidth / c.zoom
		scaleH := (c.top - c.bottom) / v.FullHeight / c.zoom

		left += scaleW * v.OffsetX
		right = left + scaleW*v.Width
		top -= scaleH * v.OffsetY
		bottom = top - scaleH*v.Height
	}

	common.Orthographic(c.projectionMatrix[:], left, right, top, bottom, c.near, c.far)
}
