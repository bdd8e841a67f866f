package renderer

import "log/slog"

// ComposerBuilderOption is a functional option applied to a composer during construction via NewComposer.
type ComposerBuilderOption func(*composer)

// WithSampleCount sets the sample count of the composer's intermediate target. Values below 1 are clamped to 1.
//
// Parameters:
//   - samples: the sample count
//
// Returns:
//   - ComposerBuilderOption: a function that applies the sample count option to a composer
func WithSampleCount(samples int) ComposerBuilderOption {
	return func(c *composer) {
		c.sampleCount = max(1, samples)
	}
}

// WithPasses appends passes to the chain in order.
//
// Parameters:
//   - passes: the passes to append
//
// Returns:
//   - ComposerBuilderOption: a function that applies the passes option to a composer
func WithPasses(passes ...Pass) ComposerBuilderOption {
	return func(c *composer) {
		c.passes = append(c.passes, passes...)
	}
}

// WithComposerLogger sets the logger used by the composer. Defaults to common.Logger().
func WithComposerLogger(logger *slog.Logger) ComposerBuilderOption {
	return func(c *composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}
