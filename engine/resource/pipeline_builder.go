package resource

import (
	"context"
	"log/slog"
)

// PipelineBuilderOption is a functional option for configuring a Pipeline via NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithMeshDecoder sets the decoder used for mesh bundles.
//
// Parameters:
//   - d: the mesh decoder
//
// Returns:
//   - PipelineBuilderOption: a function that applies the decoder option to a pipeline
func WithMeshDecoder(d MeshDecoder) PipelineBuilderOption {
	return func(p *pipeline) {
		p.meshDecoder = d
	}
}

// WithImageDecoder sets the decoder used for environment maps.
//
// Parameters:
//   - d: the image decoder
//
// Returns:
//   - PipelineBuilderOption: a function that applies the decoder option to a pipeline
func WithImageDecoder(d ImageDecoder) PipelineBuilderOption {
	return func(p *pipeline) {
		p.imageDecoder = d
	}
}

// WithWorkers sets the number of decode workers.
//
// Parameters:
//   - n: worker count, values below 1 are raised to 1
//
// Returns:
//   - PipelineBuilderOption: a function that applies the worker count option to a pipeline
func WithWorkers(n int) PipelineBuilderOption {
	return func(p *pipeline) {
		p.workers = max(n, 1)
	}
}

// WithQueueSize sets how many decodes may wait for a worker before Load blocks.
func WithQueueSize(n int) PipelineBuilderOption {
	return func(p *pipeline) {
		p.queueSize = max(n, 0)
	}
}

// WithContext sets the parent of the context handed to decoders. Close cancels the derived context.
func WithContext(ctx context.Context) PipelineBuilderOption {
	return func(p *pipeline) {
		if ctx != nil {
			p.ctx = ctx
		}
	}
}

// WithResources pre-registers resources.
//
// Parameters:
//   - resources: the resources to register
//
// Returns:
//   - PipelineBuilderOption: a function that applies the resources option to a pipeline
func WithResources(resources ...Resource) PipelineBuilderOption {
	return func(p *pipeline) {
		for _, r := range resources {
			p.resources[r.ID] = r
		}
	}
}

// WithPipelineLogger sets the logger used by the pipeline.
func WithPipelineLogger(l *slog.Logger) PipelineBuilderOption {
	return func(p *pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}
