package decoder

import "log/slog"

// ImageDecoderBuilderOption is a functional option for configuring an ImageDecoder via NewImageDecoder.
type ImageDecoderBuilderOption func(*imageDecoder)

// WithImageFetcher sets the Fetcher used to read images.
//
// Parameters:
//   - f: the fetcher
//
// Returns:
//   - ImageDecoderBuilderOption: a function that applies the fetcher option to a decoder
func WithImageFetcher(f Fetcher) ImageDecoderBuilderOption {
	return func(d *imageDecoder) {
		d.fetcher = f
	}
}

// WithImageLogger sets the logger used by the decoder.
func WithImageLogger(l *slog.Logger) ImageDecoderBuilderOption {
	return func(d *imageDecoder) {
		if l != nil {
			d.logger = l
		}
	}
}
