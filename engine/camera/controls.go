package camera

import (
	"log/slog"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
)

type orbitControls struct {
	mu     *sync.Mutex
	logger *slog.Logger

	camera  Camera
	enabled bool

	smoothTime         float32
	draggingSmoothTime float32
	azimuthRotateSpeed float32
	polarRotateSpeed   float32
	dollySpeed         float32
	restThreshold      float32

	minDistance   float32
	maxDistance   float32
	minPolarAngle float32
	maxPolarAngle float32
	minZoom       float32
	maxZoom       float32

	// current and end state; Update moves current toward end
	target         common.Vec3
	targetEnd      common.Vec3
	focalOffset    common.Vec3
	focalOffsetEnd common.Vec3
	spherical      spherical
	sphericalEnd   spherical
	zoom           float32
	zoomEnd        float32

	thetaVelocity  float32
	phiVelocity    float32
	radiusVelocity float32
	zoomVelocity   float32
	targetVelocity common.Vec3
	focalVelocity  common.Vec3

	dragging       bool
	viewportWidth  float32
	viewportHeight float32

	needsUpdate bool
	hasRested   bool
	restWaiters []*common.Future[struct{}]
}

// OrbitControls orbits a Camera around a target using spherical coordinates (radius, azimuth, polar angle).
// Every movement sets an end state; Update eases the current state toward it each frame and writes the resulting
// pose to the camera. Transitions return a future that resolves once the controls come to rest, or immediately
// when the transition is disabled, in which case the camera snaps to the end state.
// Thread-safe for concurrent access.
type OrbitControls interface {
	// Camera returns the controlled camera.
	Camera() Camera

	// SetCamera points the controls at a different camera. The orbit state is kept and applied to the new camera;
	// the zoom state is taken from the new camera so each camera keeps its own zoom.
	//
	// Parameters:
	//   - c: the camera to control
	SetCamera(c Camera)

	// Enabled returns whether the controls accept input and should be updated.
	Enabled() bool

	// SetEnabled enables or disables the controls.
	SetEnabled(enabled bool)

	// SmoothTime returns the approximate time in seconds to reach the end state of a transition.
	SmoothTime() float32

	// DraggingSmoothTime returns the smoothing time used while the user drags.
	DraggingSmoothTime() float32

	// AzimuthRotateSpeed returns the horizontal drag rotation speed.
	AzimuthRotateSpeed() float32

	// PolarRotateSpeed returns the vertical drag rotation speed.
	PolarRotateSpeed() float32

	// Target returns the current orbit target.
	Target() common.Vec3

	// TargetEnd returns the orbit target the controls are moving toward.
	TargetEnd() common.Vec3

	// Spherical returns the current spherical coordinates relative to the target.
	//
	// Returns:
	//   - radius: distance from the target
	//   - azimuth: angle around +Y, measured from +Z, in radians
	//   - polar: angle from +Y in radians
	Spherical() (radius, azimuth, polar float32)

	// SphericalEnd returns the spherical coordinates the controls are moving toward.
	//
	// Returns:
	//   - radius: distance from the target
	//   - azimuth: angle around +Y, measured from +Z, in radians
	//   - polar: angle from +Y in radians
	SphericalEnd() (radius, azimuth, polar float32)

	// ZoomEnd returns the zoom the controls are moving toward.
	ZoomEnd() float32

	// Resting reports whether every pending transition has completed.
	Resting() bool

	// SetLookAt moves the camera to eye looking at target.
	//
	// Parameters:
	//   - eye: world-space camera position
	//   - target: world-space orbit target
	//   - transition: animate when true, snap when false
	//
	// Returns:
	//   - *common.Future[struct{}]: resolves when the controls come to rest
	SetLookAt(eye, target common.Vec3, transition bool) *common.Future[struct{}]

	// RotateTo sets the absolute azimuth and polar angles. The polar angle is clamped to the allowed range.
	//
	// Parameters:
	//   - azimuth: angle around +Y in radians
	//   - polar: angle from +Y in radians
	//   - transition: animate when true, snap when false
	//
	// Returns:
	//   - *common.Future[struct{}]: resolves when the controls come to rest
	RotateTo(azimuth, polar float32, transition bool) *common.Future[struct{}]

	// Rotate adds to the end azimuth and polar angles.
	//
	// Parameters:
	//   - azimuth: azimuth delta in radians
	//   - polar: polar delta in radians
	//   - transition: animate when true, snap when false
	//
	// Returns:
	//   - *common.Future[struct{}]: resolves when the controls come to rest
	Rotate(azimuth, polar float32, transition bool) *common.Future[struct{}]

	// DollyTo sets the distance from the target, clamped to the allowed range.
	//
	// Parameters:
	//   - distance: the new distance
	//   - transition: animate when true, snap when false
	//
	// Returns:
	//   - *common.Future[struct{}]: resolves when the controls come to rest
	DollyTo(distance float32, transition bool) *common.Future[struct{}]

	// ZoomTo sets the camera zoom, clamped to the allowed range.
	//
	// Parameters:
	//   - zoom: the new zoom factor
	//   - transition: animate when true, snap when false
	//
	// Returns:
	//   - *common.Future[struct{}]: resolves when the controls come to rest
	ZoomTo(zoom float32, transition bool) *common.Future[struct{}]

	// MoveTo moves the orbit target, keeping the spherical offset.
	//
	// Parameters:
	//   - target: the new orbit target
	//   - transition: animate when true, snap when false
	//
	// Returns:
	//   - *common.Future[struct{}]: resolves when the controls come to rest
	MoveTo(target common.Vec3, transition bool) *common.Future[struct{}]

	// SetFocalOffset shifts the camera and its look-at point along the camera's own axes without changing the
	// orbit target.
	//
	// Parameters:
	//   - offset: right, up and backward offset in world units
	//   - transition: animate when true, snap when false
	//
	// Returns:
	//   - *common.Future[struct{}]: resolves when the controls come to rest
	SetFocalOffset(offset common.Vec3, transition bool) *common.Future[struct{}]

	// FitToBox frames box in the camera. The azimuth and polar angles snap to the nearest quarter turn, the box
	// is measured in that view orientation and grown on each side by the padding fractions of its size, then the
	// target moves to the padded box center and the camera dollies (perspective) or zooms (orthographic) so the
	// padded box fills the view. Fitting an empty box is a no-op.
	//
	// Parameters:
	//   - box: the world-space box to frame
	//   - transition: animate when true, snap when false
	//   - padding: per-side fractions of the box size
	//
	// Returns:
	//   - *common.Future[struct{}]: resolves when the controls come to rest
	FitToBox(box common.Box3, transition bool, padding common.Insets) *common.Future[struct{}]

	// SetViewportSize records the pixel size of the rendered view, used to scale drag input.
	SetViewportSize(width, height float32)

	// BeginDrag marks the start of a user drag. While dragging, the dragging smooth time is used.
	BeginDrag()

	// Drag rotates by a pointer movement in pixels.
	//
	// Parameters:
	//   - dx, dy: pointer movement since the previous call
	Drag(dx, dy float32)

	// EndDrag marks the end of a user drag.
	EndDrag()

	// Wheel dollies (perspective) or zooms (orthographic). Positive delta moves closer.
	//
	// Parameters:
	//   - delta: wheel steps
	Wheel(delta float32)

	// Update eases the current state toward the end state and writes the pose to the camera.
	//
	// Parameters:
	//   - dt: elapsed time since the last update in seconds
	//
	// Returns:
	//   - bool: true if the camera moved
	Update(dt float32) bool
}

var _ OrbitControls = &orbitControls{}

// NewOrbitControls creates orbit controls for camera, starting from the camera's current position and target.
// Panics if Install has not been called or camera is nil.
//
// Parameters:
//   - camera: the camera to control
//   - options: functional options to configure the controls
//
// Returns:
//   - OrbitControls: the newly created controls
func NewOrbitControls(camera Camera, options ...OrbitControlsBuilderOption) OrbitControls {
	if !Installed() {
		panic("camera: orbit controls capability is not installed; call camera.Install first")
	}
	if camera == nil {
		panic("camera: NewOrbitControls requires a camera")
	}

	target := camera.Target()
	sph := sphericalFromVec3(camera.Position().Sub(target)).makeSafe()
	zoom := camera.Zoom()

	oc := &orbitControls{
		mu:      &sync.Mutex{},
		logger:  common.Logger(),
		camera:  camera,
		enabled: true,

		smoothTime:         0.25,
		draggingSmoothTime: 0.125,
		azimuthRotateSpeed: 1,
		polarRotateSpeed:   1,
		dollySpeed:         1,
		restThreshold:      0.01,

		minDistance:   epsilon,
		maxDistance:   math32.Inf(1),
		minPolarAngle: 0,
		maxPolarAngle: math.Pi,
		minZoom:       0.01,
		maxZoom:       math32.Inf(1),

		target:       target,
		targetEnd:    target,
		spherical:    sph,
		sphericalEnd: sph,
		zoom:         zoom,
		zoomEnd:      zoom,

		hasRested: true,
	}
	for _, option := range options {
		option(oc)
	}
	return oc
}

func (oc *orbitControls) Camera() Camera {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.camera
}

func (oc *orbitControls) SetCamera(c Camera) {
	if c == nil {
		return
	}
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.camera = c
	oc.zoom = c.Zoom()
	oc.zoomEnd = oc.zoom
	oc.zoomVelocity = 0
	oc.needsUpdate = true
	oc.applyPose()
}

func (oc *orbitControls) Enabled() bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.enabled
}

func (oc *orbitControls) SetEnabled(enabled bool) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.enabled = enabled
	if !enabled {
		oc.dragging = false
	}
}

func (oc *orbitControls) SmoothTime() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.smoothTime
}

func (oc *orbitControls) DraggingSmoothTime() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.draggingSmoothTime
}

func (oc *orbitControls) AzimuthRotateSpeed() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.azimuthRotateSpeed
}

func (oc *orbitControls) PolarRotateSpeed() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.polarRotateSpeed
}

func (oc *orbitControls) Target() common.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.target
}

func (oc *orbitControls) TargetEnd() common.Vec3 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.targetEnd
}

func (oc *orbitControls) Spherical() (radius, azimuth, polar float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.spherical.radius, oc.spherical.theta, oc.spherical.phi
}

func (oc *orbitControls) SphericalEnd() (radius, azimuth, polar float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.sphericalEnd.radius, oc.sphericalEnd.theta, oc.sphericalEnd.phi
}

func (oc *orbitControls) ZoomEnd() float32 {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.zoomEnd
}

func (oc *orbitControls) Resting() bool {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.hasRested
}

func (oc *orbitControls) SetLookAt(eye, target common.Vec3, transition bool) *common.Future[struct{}] {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	oc.targetEnd = target
	sph := sphericalFromVec3(eye.Sub(target))
	sph.phi = common.Clamp(sph.phi, oc.minPolarAngle, oc.maxPolarAngle)
	sph.radius = common.Clamp(sph.radius, oc.minDistance, oc.maxDistance)
	oc.sphericalEnd = sph.makeSafe()

	if !transition {
		oc.target = oc.targetEnd
		oc.targetVelocity = common.Vec3Zero
		oc.spherical = oc.sphericalEnd
		oc.thetaVelocity, oc.phiVelocity, oc.radiusVelocity = 0, 0, 0
	}
	return oc.transitionFuture(transition)
}

func (oc *orbitControls) RotateTo(azimuth, polar float32, transition bool) *common.Future[struct{}] {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.rotateTo(azimuth, polar, transition)
	return oc.transitionFuture(transition)
}

func (oc *orbitControls) Rotate(azimuth, polar float32, transition bool) *common.Future[struct{}] {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.rotateTo(oc.sphericalEnd.theta+azimuth, oc.sphericalEnd.phi+polar, transition)
	return oc.transitionFuture(transition)
}

func (oc *orbitControls) DollyTo(distance float32, transition bool) *common.Future[struct{}] {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.dollyTo(distance, transition)
	return oc.transitionFuture(transition)
}

func (oc *orbitControls) ZoomTo(zoom float32, transition bool) *common.Future[struct{}] {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.zoomTo(zoom, transition)
	return oc.transitionFuture(transition)
}

func (oc *orbitControls) MoveTo(target common.Vec3, transition bool) *common.Future[struct{}] {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.moveTo(target, transition)
	return oc.transitionFuture(transition)
}

func (oc *orbitControls) SetFocalOffset(offset common.Vec3, transition bool) *common.Future[struct{}] {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.setFocalOffset(offset, transition)
	return oc.transitionFuture(transition)
}

func (oc *orbitControls) FitToBox(box common.Box3, transition bool, padding common.Insets) *common.Future[struct{}] {
	if box.IsEmpty() {
		return common.Resolved(struct{}{})
	}

	oc.mu.Lock()
	defer oc.mu.Unlock()

	theta := roundToStep(oc.sphericalEnd.theta, math.Pi/2)
	phi := roundToStep(oc.sphericalEnd.phi, math.Pi/2)
	oc.rotateTo(theta, phi, transition)

	// view direction for the snapped angles
	normal := spherical{radius: 1, theta: theta, phi: phi}.vec3().Normal()
	viewFromPolar := math32.Abs(math32.Abs(normal.Y)-1) < epsilon
	poleTwist := common.NewQuatAxisAngle(common.Vec3Y, theta)

	// rotate the box into view space where +Z points at the camera
	toView := common.NewQuatUnitVectors(normal, common.Vec3Z)
	if viewFromPolar {
		toView = toView.Mul(poleTwist)
	}
	bb := box.ApplyQuat(toView)

	size := bb.Size()
	bb.Min.X -= padding.Left * size.X
	bb.Min.Y -= padding.Bottom * size.Y
	bb.Max.X += padding.Right * size.X
	bb.Max.Y += padding.Top * size.Y

	toWorld := common.NewQuatUnitVectors(common.Vec3Z, normal)
	if viewFromPolar {
		toWorld = poleTwist.Inverse().Mul(toWorld)
	}
	center := bb.Center().MulQuat(toWorld)
	bbSize := bb.Size()

	switch oc.camera.Variant() {
	case VariantOrthographic:
		left, right, top, bottom := oc.camera.Frustum()
		oc.zoomTo(orthographicFitZoom(right-left, top-bottom, bbSize, oc.zoomEnd), transition)
	default:
		oc.dollyTo(perspectiveFitDistance(oc.camera.EffectiveFov(), oc.camera.Aspect(), bbSize), transition)
	}
	oc.moveTo(center, transition)
	oc.setFocalOffset(common.Vec3Zero, transition)

	oc.logger.Debug("fit box",
		slog.Any("center", center),
		slog.Float64("azimuth", float64(theta)),
		slog.Float64("polar", float64(phi)),
		slog.Bool("transition", transition),
	)
	return oc.transitionFuture(transition)
}

// perspectiveFitDistance returns the camera distance at which a box of the given view-space size fills a
// perspective view. The box's depth is added so the near face, not the center, touches the frustum.
func perspectiveFitDistance(fovDeg, aspect float32, size common.Vec3) float32 {
	fov := common.DegToRad(fovDeg)
	heightToFit := size.Y
	if size.Y <= 0 || size.X/size.Y >= aspect {
		heightToFit = size.X / aspect
	}
	return heightToFit*0.5/math32.Tan(fov*0.5) + size.Z*0.5
}

// orthographicFitZoom returns the zoom at which a box of the given view-space size fills an orthographic view of
// frustum size (width, height). Flat axes are ignored; a box flat on both axes keeps the current zoom.
func orthographicFitZoom(width, height float32, size common.Vec3, current float32) float32 {
	zoom := math32.Inf(1)
	if size.X > 0 {
		zoom = math32.Min(zoom, width/size.X)
	}
	if size.Y > 0 {
		zoom = math32.Min(zoom, height/size.Y)
	}
	if math32.IsInf(zoom, 1) {
		return current
	}
	return zoom
}

func (oc *orbitControls) SetViewportSize(width, height float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.viewportWidth, oc.viewportHeight = width, height
}

func (oc *orbitControls) BeginDrag() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if !oc.enabled {
		return
	}
	oc.dragging = true
}

func (oc *orbitControls) Drag(dx, dy float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if !oc.enabled || !oc.dragging {
		return
	}

	h := oc.viewportHeight
	if h <= 0 {
		h = 1
	}
	theta := 2 * math.Pi * oc.azimuthRotateSpeed * -dx / h
	phi := 2 * math.Pi * oc.polarRotateSpeed * -dy / h
	oc.rotateTo(oc.sphericalEnd.theta+theta, oc.sphericalEnd.phi+phi, true)
	oc.needsUpdate = true
	oc.hasRested = false
}

func (oc *orbitControls) EndDrag() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	oc.dragging = false
}

func (oc *orbitControls) Wheel(delta float32) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	if !oc.enabled || delta == 0 {
		return
	}

	switch oc.camera.Variant() {
	case VariantOrthographic:
		oc.zoomTo(oc.zoomEnd*math32.Pow(0.95, -delta*oc.dollySpeed), true)
	default:
		oc.dollyTo(oc.sphericalEnd.radius*math32.Pow(0.95, delta*oc.dollySpeed), true)
	}
	oc.needsUpdate = true
	oc.hasRested = false
}

func (oc *orbitControls) Update(dt float32) bool {
	oc.mu.Lock()
	if dt <= 0 {
		updated := oc.needsUpdate
		if updated {
			oc.applyPose()
			oc.needsUpdate = false
		}
		oc.mu.Unlock()
		return updated
	}

	st := oc.smoothTime
	if oc.dragging {
		st = oc.draggingSmoothTime
	}
	inf := math32.Inf(1)

	prevTarget, prevSpherical, prevZoom, prevFocal := oc.target, oc.spherical, oc.zoom, oc.focalOffset

	if approxZero(oc.sphericalEnd.theta - oc.spherical.theta) {
		oc.spherical.theta = oc.sphericalEnd.theta
		oc.thetaVelocity = 0
	} else {
		oc.spherical.theta = smoothDamp(oc.spherical.theta, oc.sphericalEnd.theta, &oc.thetaVelocity, st, inf, dt)
	}
	if approxZero(oc.sphericalEnd.phi - oc.spherical.phi) {
		oc.spherical.phi = oc.sphericalEnd.phi
		oc.phiVelocity = 0
	} else {
		oc.spherical.phi = smoothDamp(oc.spherical.phi, oc.sphericalEnd.phi, &oc.phiVelocity, st, inf, dt)
	}
	if approxZero(oc.sphericalEnd.radius - oc.spherical.radius) {
		oc.spherical.radius = oc.sphericalEnd.radius
		oc.radiusVelocity = 0
	} else {
		oc.spherical.radius = smoothDamp(oc.spherical.radius, oc.sphericalEnd.radius, &oc.radiusVelocity, st, inf, dt)
	}
	if approxZero(oc.zoomEnd - oc.zoom) {
		oc.zoom = oc.zoomEnd
		oc.zoomVelocity = 0
	} else {
		oc.zoom = smoothDamp(oc.zoom, oc.zoomEnd, &oc.zoomVelocity, st, inf, dt)
	}
	oc.target = smoothDampVec3(oc.target, oc.targetEnd, &oc.targetVelocity, st, inf, dt)
	oc.focalOffset = smoothDampVec3(oc.focalOffset, oc.focalOffsetEnd, &oc.focalVelocity, st, inf, dt)

	updated := oc.needsUpdate ||
		oc.target != prevTarget ||
		oc.spherical != prevSpherical ||
		oc.zoom != prevZoom ||
		oc.focalOffset != prevFocal

	var waiters []*common.Future[struct{}]
	if !oc.hasRested && !oc.dragging && oc.nearEnd() {
		oc.snapToEnd()
		oc.hasRested = true
		waiters = oc.restWaiters
		oc.restWaiters = nil
		updated = true
	}

	if updated {
		oc.applyPose()
	}
	oc.needsUpdate = false
	oc.mu.Unlock()

	for _, w := range waiters {
		w.Resolve(struct{}{})
	}
	return updated
}

// --- internal helpers, caller must hold the mutex ---

func (oc *orbitControls) rotateTo(theta, phi float32, transition bool) {
	oc.sphericalEnd.theta = theta
	oc.sphericalEnd.phi = common.Clamp(phi, oc.minPolarAngle, oc.maxPolarAngle)
	oc.sphericalEnd = oc.sphericalEnd.makeSafe()
	if !transition {
		oc.spherical.theta = oc.sphericalEnd.theta
		oc.spherical.phi = oc.sphericalEnd.phi
		oc.thetaVelocity, oc.phiVelocity = 0, 0
	}
}

func (oc *orbitControls) dollyTo(distance float32, transition bool) {
	oc.sphericalEnd.radius = common.Clamp(distance, oc.minDistance, oc.maxDistance)
	if !transition {
		oc.spherical.radius = oc.sphericalEnd.radius
		oc.radiusVelocity = 0
	}
}

func (oc *orbitControls) zoomTo(zoom float32, transition bool) {
	oc.zoomEnd = common.Clamp(zoom, oc.minZoom, oc.maxZoom)
	if !transition {
		oc.zoom = oc.zoomEnd
		oc.zoomVelocity = 0
	}
}

func (oc *orbitControls) moveTo(target common.Vec3, transition bool) {
	oc.targetEnd = target
	if !transition {
		oc.target = target
		oc.targetVelocity = common.Vec3Zero
	}
}

func (oc *orbitControls) setFocalOffset(offset common.Vec3, transition bool) {
	oc.focalOffsetEnd = offset
	if !transition {
		oc.focalOffset = offset
		oc.focalVelocity = common.Vec3Zero
	}
}

// transitionFuture finishes a movement request. A snap applies the pose at once and returns a resolved future;
// an animated request returns a future resolved by Update when the controls come to rest.
func (oc *orbitControls) transitionFuture(transition bool) *common.Future[struct{}] {
	oc.needsUpdate = true
	if !transition {
		oc.applyPose()
		return common.Resolved(struct{}{})
	}
	oc.hasRested = false
	f := common.NewFuture[struct{}]()
	oc.restWaiters = append(oc.restWaiters, f)
	return f
}

func (oc *orbitControls) nearEnd() bool {
	t := oc.restThreshold
	within := func(a, b float32) bool { return math32.Abs(a-b) < t }
	withinVec := func(a, b common.Vec3) bool { return a.ApproxEqual(b, t) }

	return within(oc.spherical.theta, oc.sphericalEnd.theta) &&
		within(oc.spherical.phi, oc.sphericalEnd.phi) &&
		within(oc.spherical.radius, oc.sphericalEnd.radius) &&
		within(oc.zoom, oc.zoomEnd) &&
		withinVec(oc.target, oc.targetEnd) &&
		withinVec(oc.focalOffset, oc.focalOffsetEnd)
}

func (oc *orbitControls) snapToEnd() {
	oc.spherical = oc.sphericalEnd
	oc.target = oc.targetEnd
	oc.zoom = oc.zoomEnd
	oc.focalOffset = oc.focalOffsetEnd
	oc.thetaVelocity, oc.phiVelocity, oc.radiusVelocity, oc.zoomVelocity = 0, 0, 0, 0
	oc.targetVelocity, oc.focalVelocity = common.Vec3Zero, common.Vec3Zero
}

// applyPose writes the current orbit state to the camera.
func (oc *orbitControls) applyPose() {
	offset := oc.spherical.vec3()
	position := oc.target.Add(offset)
	target := oc.target

	if !oc.focalOffset.IsZero() {
		back := offset.Normal()
		right := common.Vec3Y.Cross(back).Normal()
		up := back.Cross(right)
		shift := right.MulScalar(oc.focalOffset.X).
			Add(up.MulScalar(oc.focalOffset.Y)).
			Add(back.MulScalar(oc.focalOffset.Z))
		position = position.Add(shift)
		target = target.Add(shift)
	}

	oc.camera.SetPose(position, target)
	if oc.camera.Zoom() != oc.zoom {
		oc.camera.SetZoom(oc.zoom)
	}
}
