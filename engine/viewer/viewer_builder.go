package viewer

import (
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/Carmen-Shannon/oxy-viewer/engine/surface"
)

// ViewerBuilderOption is a functional option for configuring a Viewer.
// Use the With* functions to create options that are applied directly to the viewer instance.
type ViewerBuilderOption func(*viewer)

// WithOptions replaces the viewer options. Defaults to DefaultOptions().
//
// Parameters:
//   - o: the options
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithOptions(o Options) ViewerBuilderOption {
	return func(v *viewer) {
		v.options = o
	}
}

// WithContainer attaches a container as soon as the viewer is built.
//
// Parameters:
//   - c: the container
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithContainer(c surface.Container) ViewerBuilderOption {
	return func(v *viewer) {
		v.container = c
	}
}

// WithScene sets the scene the viewer renders. Defaults to an empty scene.
//
// Parameters:
//   - s: the scene
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithScene(s scene.Scene) ViewerBuilderOption {
	return func(v *viewer) {
		v.scene = s
	}
}

// WithTickRate sets the frame clock rate in ticks per second.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithTickRate(fps float64) ViewerBuilderOption {
	return func(v *viewer) {
		if fps <= 0 {
			fps = 60
		}
		v.tickRate = time.Duration(float64(time.Second) / fps)
	}
}

// WithProfiling enables or disables frame statistics, sampled once per rendered frame.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//   - options: options for the profiler
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithProfiling(enabled bool, options ...profiler.ProfilerBuilderOption) ViewerBuilderOption {
	return func(v *viewer) {
		v.profilingEnabled = enabled
		if len(options) > 0 {
			v.profiler = profiler.NewProfiler(options...)
		}
	}
}

// WithViewerLogger sets the logger used by the viewer and its camera frame. Defaults to common.Logger().
func WithViewerLogger(logger *slog.Logger) ViewerBuilderOption {
	return func(v *viewer) {
		if logger != nil {
			v.logger = logger
		}
	}
}
