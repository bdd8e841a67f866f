package controller

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/engine/resource"
)

// ControllerBuilderOption is a functional option for configuring a Controller.
type ControllerBuilderOption func(*controller)

// WithPipeline sets the resource pipeline. The caller keeps ownership: Dispose clears it but does not close it.
//
// Parameters:
//   - p: the resource pipeline
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithPipeline(p resource.Pipeline) ControllerBuilderOption {
	return func(c *controller) {
		c.pipeline = p
	}
}

// WithControllerLogger sets the logger. Defaults to common.Logger().
func WithControllerLogger(logger *slog.Logger) ControllerBuilderOption {
	return func(c *controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}
