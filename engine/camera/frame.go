package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// ErrDegenerateViewport is returned when the viewport offset leaves no usable area to render into, or the render
// surface has no size yet. Projection parameters are left untouched.
var ErrDegenerateViewport = errors.New("camera: degenerate viewport")

// Surface reports the pixel size of the render target the frame projects onto.
type Surface interface {
	Size() (width, height int)
}

type frame struct {
	mu     *sync.Mutex
	logger *slog.Logger

	surface      Surface
	perspective  Camera
	orthographic Camera
	controls     OrbitControls
	variant      Variant

	orthographicSize float32
	viewportOffset   common.Insets
	padding          common.Insets
	angularOffset    common.Vec2
	fitAxis          common.Vec3
	fitRadius        float32
	fitVolume        common.Box3

	controlsOptions []OrbitControlsBuilderOption
	listeners       []func(Camera)
}

// CameraFrame owns a perspective and an orthographic camera, the orbit controls that drive the active one, and the
// framing parameters used to fit content into view. Both cameras persist with independent parameters; only the
// active one is rendered and controlled.
//
// The orthographic view volume is always derived from the orthographic size and the aspect of the usable viewport;
// it is never set directly.
// Thread-safe for concurrent access.
type CameraFrame interface {
	// Camera returns the active camera.
	Camera() Camera

	// Perspective returns the perspective camera.
	Perspective() Camera

	// Orthographic returns the orthographic camera.
	Orthographic() Camera

	// Controls returns the orbit controls.
	Controls() OrbitControls

	// ActiveVariant returns which camera is active.
	ActiveVariant() Variant

	// SetActiveVariant switches the active camera, re-points the orbit controls and every camera-change listener
	// at it, and recomputes the projection. The switch happens even when the projection cannot be recomputed.
	//
	// Parameters:
	//   - v: the variant to activate
	//
	// Returns:
	//   - error: ErrDegenerateViewport if the projection could not be recomputed
	SetActiveVariant(v Variant) error

	// OnCameraChange registers fn to be called with the newly active camera after every variant switch.
	//
	// Parameters:
	//   - fn: the listener
	OnCameraChange(fn func(Camera))

	// SetSurface sets the render target whose size drives the projection. It does not recompute the projection.
	//
	// Parameters:
	//   - s: the render surface
	SetSurface(s Surface)

	// ViewportOffset returns the pixel insets of the usable viewport.
	ViewportOffset() common.Insets

	// SetViewportOffset stores the pixel insets of the usable viewport and recomputes the projection.
	//
	// Parameters:
	//   - insets: pixel insets from each edge of the render surface
	//
	// Returns:
	//   - error: ErrDegenerateViewport if the insets leave no usable area
	SetViewportOffset(insets common.Insets) error

	// OrthographicSize returns the full height of the orthographic view volume.
	OrthographicSize() float32

	// SetOrthographicSize sets the full height of the orthographic view volume and recomputes the projection.
	//
	// Parameters:
	//   - size: the view volume height in world units
	//
	// Returns:
	//   - error: ErrDegenerateViewport if the projection could not be recomputed
	SetOrthographicSize(size float32) error

	// UpdateProjection recomputes the projection of both cameras from the surface size and the viewport offset.
	// The active camera renders only the usable sub-rectangle through a view offset; the perspective aspect and
	// the orthographic view volume follow the usable area's aspect. Calling it twice with the same inputs yields
	// the same parameters.
	//
	// Returns:
	//   - error: ErrDegenerateViewport if the surface has no size or the insets leave no usable area
	UpdateProjection() error

	// Padding returns the per-side fit padding fractions.
	Padding() common.Insets

	// SetPadding sets the per-side fit padding fractions.
	SetPadding(p common.Insets)

	// AngularOffset returns the azimuth (X) and polar (Y) rotation applied after fitting, in radians.
	AngularOffset() common.Vec2

	// SetAngularOffset sets the azimuth (X) and polar (Y) rotation applied after fitting, in radians.
	SetAngularOffset(o common.Vec2)

	// FitAxis returns the default placement direction.
	FitAxis() common.Vec3

	// SetFitAxis sets the default placement direction.
	SetFitAxis(axis common.Vec3)

	// FitRadius returns the default placement distance.
	FitRadius() float32

	// SetFitRadius sets the default placement distance.
	SetFitRadius(r float32)

	// FitVolume returns the current fit volume.
	FitVolume() common.Box3

	// SetFitVolume sets the volume SetDefaultPosition frames.
	SetFitVolume(box common.Box3)

	// FitToVolume frames box. The eye is placed, per axis, at the axis component when it is non-zero and at the
	// box center otherwise; the camera then looks at the center, fits the padded box and applies the angular
	// offset. The three movements start together and the returned future is their join. Fitting an empty box
	// does nothing and returns a resolved future.
	//
	// Parameters:
	//   - ctx: bounds the join; it does not cancel the movements
	//   - box: the world-space box to frame
	//   - axis: absolute eye coordinates, zero components meaning "at the center"
	//   - transition: animate when true, snap when false
	//
	// Returns:
	//   - *common.Future[struct{}]: resolves when all three movements complete
	FitToVolume(ctx context.Context, box common.Box3, axis common.Vec3, transition bool) *common.Future[struct{}]

	// SetDefaultPosition frames the fit volume from FitAxis scaled by FitRadius.
	//
	// Parameters:
	//   - ctx: bounds the join; it does not cancel the movements
	//   - transition: animate when true, snap when false
	//
	// Returns:
	//   - *common.Future[struct{}]: resolves when the camera is in place
	SetDefaultPosition(ctx context.Context, transition bool) *common.Future[struct{}]
}

var _ CameraFrame = &frame{}

// NewCameraFrame creates a CameraFrame with a 1000 unit orthographic size, a fit axis of +Z and a fit radius of 5.
// Panics if Install has not been called.
//
// Parameters:
//   - options: functional options to configure the frame
//
// Returns:
//   - CameraFrame: the newly created frame
func NewCameraFrame(options ...CameraFrameBuilderOption) CameraFrame {
	f := &frame{
		mu:               &sync.Mutex{},
		logger:           common.Logger(),
		variant:          VariantPerspective,
		orthographicSize: 1000,
		fitAxis:          common.Vec3Z,
		fitRadius:        5,
		fitVolume:        common.EmptyBox3(),
	}
	for _, option := range options {
		option(f)
	}

	if f.perspective == nil {
		f.perspective = NewPerspectiveCamera()
	}
	if f.orthographic == nil {
		f.orthographic = NewOrthographicCamera(f.orthographicSize)
	}
	f.controls = NewOrbitControls(f.active(), f.controlsOptions...)
	return f
}

func (f *frame) Camera() Camera {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active()
}

func (f *frame) Perspective() Camera {
	return f.perspective
}

func (f *frame) Orthographic() Camera {
	return f.orthographic
}

func (f *frame) Controls() OrbitControls {
	return f.controls
}

func (f *frame) ActiveVariant() Variant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.variant
}

func (f *frame) SetActiveVariant(v Variant) error {
	f.mu.Lock()
	f.variant = v
	cam := f.active()
	f.controls.SetCamera(cam)
	listeners := make([]func(Camera), len(f.listeners))
	copy(listeners, f.listeners)
	err := f.updateProjection()
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(cam)
	}
	f.logger.Debug("active camera changed", slog.String("variant", v.String()))
	return err
}

func (f *frame) OnCameraChange(fn func(Camera)) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

func (f *frame) SetSurface(s Surface) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.surface = s
}

func (f *frame) ViewportOffset() common.Insets {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.viewportOffset
}

func (f *frame) SetViewportOffset(insets common.Insets) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.viewportOffset = insets
	return f.updateProjection()
}

func (f *frame) OrthographicSize() float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orthographicSize
}

func (f *frame) SetOrthographicSize(size float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orthographicSize = size
	return f.updateProjection()
}

func (f *frame) UpdateProjection() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateProjection()
}

func (f *frame) Padding() common.Insets {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.padding
}

func (f *frame) SetPadding(p common.Insets) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.padding = p
}

func (f *frame) AngularOffset() common.Vec2 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.angularOffset
}

func (f *frame) SetAngularOffset(o common.Vec2) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.angularOffset = o
}

func (f *frame) FitAxis() common.Vec3 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fitAxis
}

func (f *frame) SetFitAxis(axis common.Vec3) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fitAxis = axis
}

func (f *frame) FitRadius() float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fitRadius
}

func (f *frame) SetFitRadius(r float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fitRadius = r
}

func (f *frame) FitVolume() common.Box3 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fitVolume
}

func (f *frame) SetFitVolume(box common.Box3) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fitVolume = box
}

func (f *frame) FitToVolume(ctx context.Context, box common.Box3, axis common.Vec3, transition bool) *common.Future[struct{}] {
	if box.IsEmpty() {
		return common.Resolved(struct{}{})
	}

	f.mu.Lock()
	padding := f.padding
	offset := f.angularOffset
	f.mu.Unlock()

	center := box.Center()
	eye := common.Vec3{
		X: axisOrCenter(axis.X, center.X),
		Y: axisOrCenter(axis.Y, center.Y),
		Z: axisOrCenter(axis.Z, center.Z),
	}

	f.logger.Debug("fit volume",
		slog.Any("center", center),
		slog.Any("eye", eye),
		slog.Bool("transition", transition),
	)

	lookAt := f.controls.SetLookAt(eye, center, transition)
	fit := f.controls.FitToBox(box, transition, padding)
	rotate := f.controls.Rotate(offset.X, offset.Y, transition)
	return common.JoinAll(ctx, lookAt, fit, rotate)
}

func (f *frame) SetDefaultPosition(ctx context.Context, transition bool) *common.Future[struct{}] {
	f.mu.Lock()
	box := f.fitVolume
	axis := f.fitAxis.MulScalar(f.fitRadius)
	f.mu.Unlock()
	return f.FitToVolume(ctx, box, axis, transition)
}

// active returns the active camera. Caller must hold the mutex.
func (f *frame) active() Camera {
	if f.variant == VariantOrthographic {
		return f.orthographic
	}
	return f.perspective
}

// updateProjection validates the usable viewport before touching any camera. Caller must hold the mutex.
func (f *frame) updateProjection() error {
	if f.surface == nil {
		return fmt.Errorf("%w: no render surface", ErrDegenerateViewport)
	}

	w, h := f.surface.Size()
	width, height := float32(w), float32(h)
	off := f.viewportOffset

	usableWidth := width - off.Left - off.Right
	usableHeight := height - off.Top - off.Bottom
	if width <= 0 || height <= 0 || usableWidth <= 0 || usableHeight <= 0 {
		return fmt.Errorf("%w: surface %dx%d leaves %gx%g after insets", ErrDegenerateViewport, w, h, usableWidth, usableHeight)
	}

	widthRatio := width / usableWidth
	heightRatio := height / usableHeight

	cam := f.active()
	cam.SetViewOffset(
		width, height,
		-off.Left*widthRatio, -off.Top*heightRatio,
		width*widthRatio, height*heightRatio,
	)

	aspect := usableWidth / usableHeight
	f.perspective.SetAspect(aspect)

	size := f.orthographicSize
	f.orthographic.SetFrustum(-size*aspect/2, size*aspect/2, size/2, -size/2)

	cam.UpdateProjectionMatrix()
	f.controls.SetViewportSize(usableWidth, usableHeight)
	return nil
}

func axisOrCenter(axis, center float32) float32 {
	if axis != 0 {
		return axis
	}
	return center
}
