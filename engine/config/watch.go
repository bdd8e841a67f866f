package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-viewer/common"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/go-homedir"
)

// Watch reloads the configuration at path every time the file is written or replaced and passes the result to fn.
// The parent directory is watched so that editors which save by renaming a temporary file are picked up.
// A reload that fails is passed to fn as an error and watching continues.
//
// Watch returns once the watcher is set up; watching stops when ctx is done.
//
// Parameters:
//   - ctx: bounds the watch
//   - path: the configuration file
//   - fn: receives each reloaded configuration, or the reload error; called from the watcher goroutine
//
// Returns:
//   - error: error if the watcher cannot be created
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to expand config path: %w", err)
	}
	target, err := filepath.Abs(expanded)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	if _, err := FormatFor(target); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	logger := common.Logger()
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				logger.Debug("config changed", slog.String("path", target), slog.String("op", event.Op.String()))
				c, err := Load(target)
				fn(c, err)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", slog.Any("error", err))
			}
		}
	}()
	return nil
}
