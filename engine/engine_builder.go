package engine

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-viewer/engine/resource"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithBuild makes Run build the scene from an object and an environment resource once the controller is
// initialized.
//
// Parameters:
//   - object: the mesh bundle resource
//   - environment: the environment map resource
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBuild(object, environment resource.Resource) EngineBuilderOption {
	return func(e *engine) {
		e.object = &object
		e.environment = &environment
	}
}

// WithConfigWatch makes Run watch a configuration file and apply its renderer and framing settings on change.
//
// Parameters:
//   - path: the configuration file
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfigWatch(path string) EngineBuilderOption {
	return func(e *engine) {
		e.configPath = path
	}
}

// WithEngineLogger sets the logger. Defaults to common.Logger().
func WithEngineLogger(logger *slog.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
