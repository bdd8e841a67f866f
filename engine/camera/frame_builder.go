package camera

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// CameraFrameBuilderOption is a functional option for configuring a CameraFrame.
type CameraFrameBuilderOption func(*frame)

// WithSurface sets the render target whose size drives the projection.
//
// Parameters:
//   - s: the render surface
//
// Returns:
//   - CameraFrameBuilderOption: functional option to set the surface
func WithSurface(s Surface) CameraFrameBuilderOption {
	return func(f *frame) {
		f.surface = s
	}
}

// WithVariant sets the initially active camera. Defaults to VariantPerspective.
//
// Parameters:
//   - v: the variant to activate
//
// Returns:
//   - CameraFrameBuilderOption: functional option to set the active variant
func WithVariant(v Variant) CameraFrameBuilderOption {
	return func(f *frame) {
		f.variant = v
	}
}

// WithPerspectiveCamera replaces the default perspective camera.
//
// Parameters:
//   - c: a camera created with NewPerspectiveCamera
//
// Returns:
//   - CameraFrameBuilderOption: functional option to set the perspective camera
func WithPerspectiveCamera(c Camera) CameraFrameBuilderOption {
	return func(f *frame) {
		f.perspective = c
	}
}

// WithOrthographicSize sets the full height of the orthographic view volume. The default orthographic camera is
// built with this size, so its far plane is size*2.
//
// Parameters:
//   - size: view volume height in world units
//
// Returns:
//   - CameraFrameBuilderOption: functional option to set the orthographic size
func WithOrthographicSize(size float32) CameraFrameBuilderOption {
	return func(f *frame) {
		f.orthographicSize = size
	}
}

// WithViewportOffset sets the initial pixel insets of the usable viewport.
//
// Parameters:
//   - insets: pixel insets from each edge of the render surface
//
// Returns:
//   - CameraFrameBuilderOption: functional option to set the viewport offset
func WithViewportOffset(insets common.Insets) CameraFrameBuilderOption {
	return func(f *frame) {
		f.viewportOffset = insets
	}
}

// WithPadding sets the per-side fit padding fractions.
//
// Parameters:
//   - p: padding fractions of the fitted box size
//
// Returns:
//   - CameraFrameBuilderOption: functional option to set the padding
func WithPadding(p common.Insets) CameraFrameBuilderOption {
	return func(f *frame) {
		f.padding = p
	}
}

// WithAngularOffset sets the azimuth (X) and polar (Y) rotation applied after fitting, in radians.
//
// Parameters:
//   - o: the angular offset
//
// Returns:
//   - CameraFrameBuilderOption: functional option to set the angular offset
func WithAngularOffset(o common.Vec2) CameraFrameBuilderOption {
	return func(f *frame) {
		f.angularOffset = o
	}
}

// WithFitAxis sets the default placement direction and distance.
//
// Parameters:
//   - axis: placement direction
//   - radius: placement distance
//
// Returns:
//   - CameraFrameBuilderOption: functional option to set the fit axis and radius
func WithFitAxis(axis common.Vec3, radius float32) CameraFrameBuilderOption {
	return func(f *frame) {
		f.fitAxis = axis
		f.fitRadius = radius
	}
}

// WithControlsOptions passes options through to the orbit controls.
//
// Parameters:
//   - options: orbit controls options
//
// Returns:
//   - CameraFrameBuilderOption: functional option to configure the controls
func WithControlsOptions(options ...OrbitControlsBuilderOption) CameraFrameBuilderOption {
	return func(f *frame) {
		f.controlsOptions = append(f.controlsOptions, options...)
	}
}

// WithFrameLogger sets the logger used by the frame and its controls. Defaults to common.Logger().
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - CameraFrameBuilderOption: functional option to set the logger
func WithFrameLogger(logger *slog.Logger) CameraFrameBuilderOption {
	return func(f *frame) {
		if logger == nil {
			return
		}
		f.logger = logger
		f.controlsOptions = append(f.controlsOptions, WithControlsLogger(logger))
	}
}
