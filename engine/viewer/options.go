package viewer

import (
	"math"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

const (
	defaultPerspectiveFitRadius  = 5
	defaultOrthographicFitRadius = 100
)

// Options parameterizes a Viewer. Specialized viewers are expressed as different Options values
// rather than as separate types.
type Options struct {
	// ToneMappingExposure is applied by the output pass.
	ToneMappingExposure float32

	// Padding is the per-side fraction of the fitted volume kept as margin.
	Padding common.Insets

	// AngularOffset is the azimuth (X) and polar (Y) rotation applied after fitting, in radians.
	AngularOffset common.Vec2

	// FitAxis is the default camera placement direction.
	FitAxis common.Vec3

	// FitRadius is the default camera placement distance. Zero selects 5 for the perspective
	// camera and 100 for the orthographic camera.
	FitRadius float32

	// OrthographicSize is the full height of the orthographic view volume.
	OrthographicSize float32

	// ViewportOffset is the pixel inset of the region the image is fitted into.
	ViewportOffset common.Insets

	// ClearColor is the color frames are cleared to.
	ClearColor common.Color

	// Samples is the sample count of the post-processing target.
	Samples int

	// UseEffects renders through the post-processing chain instead of directly.
	UseEffects bool

	// UseOrthographic starts the viewer with the orthographic camera active.
	UseOrthographic bool

	// SceneSetup runs once during Initialize to populate the scene.
	SceneSetup func(v Viewer)
}

// DefaultOptions returns the options of the base orbit viewer.
//
// Returns:
//   - Options: the base viewer options
func DefaultOptions() Options {
	return Options{
		ToneMappingExposure: 1,
		FitAxis:             common.Vec3Z,
		OrthographicSize:    1000,
		ClearColor:          common.NewColorHex(0xf2f2f2),
		Samples:             8,
	}
}

// ShowcaseOptions returns the options of the model showcase viewer: brighter exposure, extra margin
// at the bottom for UI chrome and a three-quarter view angle.
//
// Returns:
//   - Options: the showcase viewer options
func ShowcaseOptions() Options {
	o := DefaultOptions()
	o.ToneMappingExposure = 1.8
	o.Padding = common.Insets{Top: 0.1, Bottom: 0.2, Left: 0.1, Right: 0.1}
	o.AngularOffset = common.Vec2{X: math.Pi / 6, Y: -math.Pi / 5}
	return o
}

// fitRadius resolves the zero FitRadius default for the starting camera.
func (o Options) fitRadius() float32 {
	if o.UseOrthographic {
		return common.Coalesce(o.FitRadius, defaultOrthographicFitRadius)
	}
	return common.Coalesce(o.FitRadius, defaultPerspectiveFitRadius)
}
