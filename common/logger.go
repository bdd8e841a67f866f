package common

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that discards all records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger shared by the viewer packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// Components built without an explicit logger option read this value when they are constructed,
// so SetLogger should be called before building the viewer.
//
// Log levels used:
//   - [slog.LevelDebug]: per-load and per-fit diagnostics
//   - [slog.LevelInfo]: lifecycle events and profiler statistics
//   - [slog.LevelWarn]: misuse that is ignored (double start, duplicate registration)
//   - [slog.LevelError]: failed decodes and failed scene builds
//
// Example:
//
//	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current shared logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
