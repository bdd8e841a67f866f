package decoder

import "log/slog"

// GLTFDecoderBuilderOption is a functional option for configuring a GLTFDecoder via NewGLTFDecoder.
type GLTFDecoderBuilderOption func(*gltfDecoder)

// WithGLTFFetcher sets the Fetcher used to read documents and their external buffers.
//
// Parameters:
//   - f: the fetcher
//
// Returns:
//   - GLTFDecoderBuilderOption: a function that applies the fetcher option to a decoder
func WithGLTFFetcher(f Fetcher) GLTFDecoderBuilderOption {
	return func(d *gltfDecoder) {
		d.fetcher = f
	}
}

// WithGLTFLogger sets the logger used by the decoder.
func WithGLTFLogger(l *slog.Logger) GLTFDecoderBuilderOption {
	return func(d *gltfDecoder) {
		if l != nil {
			d.logger = l
		}
	}
}
