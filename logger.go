package g3d

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

// loggerHooks are sub-package setters registered through RegisterLoggerHook.
var loggerHooks atomic.Pointer[[]func(*slog.Logger)]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for g3d and every sub-package that
// registered a hook with RegisterLoggerHook (gpu, window).
// By default, g3d produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by g3d:
//   - [slog.LevelDebug]: per-resource diagnostics (buffers, pipelines, textures)
//   - [slog.LevelInfo]: lifecycle events (adapter selected, window created)
//   - [slog.LevelWarn]: recoverable failures (drawable render error, unknown uniform)
//
// Example:
//
//	g3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	if hooks := loggerHooks.Load(); hooks != nil {
		for _, h := range *hooks {
			h(l)
		}
	}
}

// Logger returns the current logger used by g3d.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// RegisterLoggerHook registers fn to receive every logger passed to
// SetLogger. Sub-packages call it from init so a single SetLogger call
// configures the whole engine. fn is invoked immediately with the current
// logger.
func RegisterLoggerHook(fn func(*slog.Logger)) {
	for {
		old := loggerHooks.Load()
		var next []func(*slog.Logger)
		if old != nil {
			next = append(next, *old...)
		}
		next = append(next, fn)
		if loggerHooks.CompareAndSwap(old, &next) {
			break
		}
	}
	fn(Logger())
}
