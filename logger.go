package quad

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip
// attribute formatting altogether.
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

// SetLogger configures the logger used by quad and its sub-packages.
// By default nothing is logged. Passing nil restores the silent logger.
//
// Levels:
//   - [slog.LevelDebug]: pipeline descriptors, buffer sizes, skipped triangles
//   - [slog.LevelInfo]: lifecycle events (pipeline created, device shared)
//   - [slog.LevelWarn]: non-fatal issues (resource release, format fallback)
//
// Example:
//
//	quad.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. The gpu sub-package logs through it so
// one SetLogger call configures the whole module.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
