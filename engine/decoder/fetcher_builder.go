package decoder

import (
	"log/slog"
	"net/http"
)

// FetcherBuilderOption is a functional option for configuring a Fetcher via NewFetcher.
type FetcherBuilderOption func(*fetcher)

// WithHTTPClient sets the client used for http(s) locations.
//
// Parameters:
//   - c: the HTTP client
//
// Returns:
//   - FetcherBuilderOption: a function that applies the client option to a fetcher
func WithHTTPClient(c *http.Client) FetcherBuilderOption {
	return func(f *fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithRootDir sets the directory relative file paths are read from. The directory may start with "~".
//
// Parameters:
//   - dir: the root directory
//
// Returns:
//   - FetcherBuilderOption: a function that applies the root directory option to a fetcher
func WithRootDir(dir string) FetcherBuilderOption {
	return func(f *fetcher) {
		f.rootDir = dir
	}
}

// WithFetcherLogger sets the logger used by the fetcher.
func WithFetcherLogger(l *slog.Logger) FetcherBuilderOption {
	return func(f *fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}
