package camera

import (
	"math"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/chewxy/math32"
)

// epsilon is the threshold below which a remaining transition delta is treated as zero.
const epsilon = 1e-5

// spherical holds Y-up spherical coordinates: theta is the azimuth around +Y measured from +Z, phi is the polar
// angle measured from +Y.
type spherical struct {
	radius float32
	theta  float32
	phi    float32
}

func sphericalFromVec3(v common.Vec3) spherical {
	r := v.Length()
	if r == 0 {
		return spherical{}
	}
	return spherical{
		radius: r,
		theta:  math32.Atan2(v.X, v.Z),
		phi:    math32.Acos(common.Clamp(v.Y/r, -1, 1)),
	}
}

func (s spherical) vec3() common.Vec3 {
	sinPhiRadius := math32.Sin(s.phi) * s.radius
	return common.Vec3{
		X: sinPhiRadius * math32.Sin(s.theta),
		Y: math32.Cos(s.phi) * s.radius,
		Z: sinPhiRadius * math32.Cos(s.theta),
	}
}

// makeSafe keeps phi off the poles so the view basis stays defined.
func (s spherical) makeSafe() spherical {
	s.phi = common.Clamp(s.phi, epsilon, math.Pi-epsilon)
	return s
}

func approxZero(v float32) bool {
	return math32.Abs(v) < epsilon
}

// roundToStep rounds v to the nearest multiple of step.
func roundToStep(v, step float32) float32 {
	return math32.Round(v/step) * step
}

// smoothDamp moves current toward target with a critically damped spring that settles in roughly smoothTime
// seconds. velocity is carried between calls.
func smoothDamp(current, target float32, velocity *float32, smoothTime, maxSpeed, dt float32) float32 {
	smoothTime = math32.Max(0.0001, smoothTime)
	omega := 2 / smoothTime
	x := omega * dt
	exp := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)

	change := current - target
	originalTo := target

	maxChange := maxSpeed * smoothTime
	change = common.Clamp(change, -maxChange, maxChange)
	target = current - change

	temp := (*velocity + omega*change) * dt
	*velocity = (*velocity - omega*temp) * exp
	output := target + (change+temp)*exp

	// never overshoot
	if (originalTo-current > 0) == (output > originalTo) {
		output = originalTo
		*velocity = (output - originalTo) / dt
	}
	return output
}

func smoothDampVec3(current, target common.Vec3, velocity *common.Vec3, smoothTime, maxSpeed, dt float32) common.Vec3 {
	return common.Vec3{
		X: smoothDamp(current.X, target.X, &velocity.X, smoothTime, maxSpeed, dt),
		Y: smoothDamp(current.Y, target.Y, &velocity.Y, smoothTime, maxSpeed, dt),
		Z: smoothDamp(current.Z, target.Z, &velocity.Z, smoothTime, maxSpeed, dt),
	}
}
