package camera

import "log/slog"

// OrbitControlsBuilderOption is a functional option for configuring OrbitControls.
type OrbitControlsBuilderOption func(*orbitControls)

// WithSmoothTime sets the approximate time in seconds a transition takes to settle.
//
// Parameters:
//   - seconds: smoothing time
//
// Returns:
//   - OrbitControlsBuilderOption: functional option to set the smoothing time
func WithSmoothTime(seconds float32) OrbitControlsBuilderOption {
	return func(oc *orbitControls) {
		oc.smoothTime = seconds
	}
}

// WithDraggingSmoothTime sets the smoothing time used while the user drags.
//
// Parameters:
//   - seconds: smoothing time while dragging
//
// Returns:
//   - OrbitControlsBuilderOption: functional option to set the dragging smoothing time
func WithDraggingSmoothTime(seconds float32) OrbitControlsBuilderOption {
	return func(oc *orbitControls) {
		oc.draggingSmoothTime = seconds
	}
}

// WithRotateSpeed sets the drag rotation speeds. A speed of 1 turns a full circle per viewport height dragged.
//
// Parameters:
//   - azimuth: horizontal rotation speed
//   - polar: vertical rotation speed
//
// Returns:
//   - OrbitControlsBuilderOption: functional option to set the rotation speeds
func WithRotateSpeed(azimuth, polar float32) OrbitControlsBuilderOption {
	return func(oc *orbitControls) {
		oc.azimuthRotateSpeed = azimuth
		oc.polarRotateSpeed = polar
	}
}

// WithDollySpeed sets the wheel dolly and zoom speed multiplier.
//
// Parameters:
//   - speed: multiplier for wheel input
//
// Returns:
//   - OrbitControlsBuilderOption: functional option to set the dolly speed
func WithDollySpeed(speed float32) OrbitControlsBuilderOption {
	return func(oc *orbitControls) {
		oc.dollySpeed = speed
	}
}

// WithDistanceLimits sets the allowed distance range from the target.
//
// Parameters:
//   - min: minimum distance
//   - max: maximum distance
//
// Returns:
//   - OrbitControlsBuilderOption: functional option to set the distance limits
func WithDistanceLimits(min, max float32) OrbitControlsBuilderOption {
	return func(oc *orbitControls) {
		oc.minDistance = min
		oc.maxDistance = max
	}
}

// WithPolarLimits sets the allowed polar angle range in radians.
//
// Parameters:
//   - min: minimum polar angle (0 looks straight down)
//   - max: maximum polar angle (Pi looks straight up)
//
// Returns:
//   - OrbitControlsBuilderOption: functional option to set the polar limits
func WithPolarLimits(min, max float32) OrbitControlsBuilderOption {
	return func(oc *orbitControls) {
		oc.minPolarAngle = min
		oc.maxPolarAngle = max
	}
}

// WithRestThreshold sets how close every component must be to its end value for the controls to count as resting.
//
// Parameters:
//   - threshold: the rest threshold
//
// Returns:
//   - OrbitControlsBuilderOption: functional option to set the rest threshold
func WithRestThreshold(threshold float32) OrbitControlsBuilderOption {
	return func(oc *orbitControls) {
		oc.restThreshold = threshold
	}
}

// WithControlsLogger sets the logger used by the controls. Defaults to common.Logger().
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - OrbitControlsBuilderOption: functional option to set the logger
func WithControlsLogger(logger *slog.Logger) OrbitControlsBuilderOption {
	return func(oc *orbitControls) {
		if logger != nil {
			oc.logger = logger
		}
	}
}
