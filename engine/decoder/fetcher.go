package decoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"

	"github.com/mitchellh/go-homedir"
)

// ErrUnexpectedStatus is returned when an HTTP fetch answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("decoder: unexpected HTTP status")

type fetcher struct {
	client  *http.Client
	rootDir string
	logger  *slog.Logger
}

// Fetcher reads the raw bytes behind an asset location. Locations are http(s) URLs, file URLs or file paths;
// file paths may start with "~" and relative paths are taken from the fetcher's root directory.
type Fetcher interface {
	// Fetch reads the whole asset.
	//
	// Parameters:
	//   - ctx: cancels an HTTP request in flight
	//   - location: the asset URL or path
	//
	// Returns:
	//   - []byte: the asset bytes
	//   - error: ErrUnexpectedStatus for a non-2xx HTTP answer, or the underlying I/O error
	Fetch(ctx context.Context, location string) ([]byte, error)

	// Resolve returns the location of ref relative to base, the way a glTF document references its buffers.
	// Absolute refs are returned unchanged.
	//
	// Parameters:
	//   - base: the referencing document's location
	//   - ref: the referenced location
	//
	// Returns:
	//   - string: the resolved location
	Resolve(base, ref string) string
}

var _ Fetcher = &fetcher{}

// NewFetcher creates a Fetcher that uses http.DefaultClient and resolves relative paths against the working
// directory.
//
// Parameters:
//   - options: functional options to configure the fetcher
//
// Returns:
//   - Fetcher: the newly created fetcher
func NewFetcher(options ...FetcherBuilderOption) Fetcher {
	f := &fetcher{
		client: http.DefaultClient,
		logger: common.Logger(),
	}
	for _, option := range options {
		option(f)
	}
	if dir, err := homedir.Expand(f.rootDir); err == nil {
		f.rootDir = dir
	}
	return f
}

func (f *fetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if isRemote(location) {
		return f.fetchHTTP(ctx, location)
	}

	p, err := f.localPath(location)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

func (f *fetcher) Resolve(base, ref string) string {
	if isRemote(ref) || strings.HasPrefix(ref, "file:") || filepath.IsAbs(ref) {
		return ref
	}
	if isRemote(base) {
		b, err := url.Parse(base)
		if err != nil {
			return ref
		}
		r, err := url.Parse(ref)
		if err != nil {
			return ref
		}
		return b.ResolveReference(r).String()
	}
	if strings.HasPrefix(base, "file:") {
		if u, err := url.Parse(base); err == nil {
			u.Path = path.Join(path.Dir(u.Path), ref)
			return u.String()
		}
	}
	if unescaped, err := url.PathUnescape(ref); err == nil {
		ref = unescaped
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(ref))
}

func (f *fetcher) fetchHTTP(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", location, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s answered %s", ErrUnexpectedStatus, location, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body of %s: %w", location, err)
	}
	f.logger.Debug("fetched asset", slog.String("url", location), slog.Int("bytes", len(data)))
	return data, nil
}

// localPath maps a file URL or path to a path on disk.
func (f *fetcher) localPath(location string) (string, error) {
	p := location
	if strings.HasPrefix(location, "file:") {
		u, err := url.Parse(location)
		if err != nil {
			return "", fmt.Errorf("invalid file URL %q: %w", location, err)
		}
		p = filepath.FromSlash(u.Path)
	}

	p, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("failed to expand %q: %w", location, err)
	}
	if !filepath.IsAbs(p) && f.rootDir != "" {
		p = filepath.Join(f.rootDir, p)
	}
	return p, nil
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// extension returns the lower-cased extension of location, ignoring any URL query or fragment.
func extension(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 && isRemote(location) {
		location = location[:i]
	}
	return strings.ToLower(path.Ext(location))
}

// baseName returns the last element of location without its extension.
func baseName(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 && isRemote(location) {
		location = location[:i]
	}
	b := path.Base(filepath.ToSlash(location))
	return strings.TrimSuffix(b, path.Ext(b))
}
