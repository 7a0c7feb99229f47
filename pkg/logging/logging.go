// Package logging holds the slog logger shared by the facet packages.
//
// By default nothing is logged. Call SetLogger to enable output.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by render, models, texture and
// assets. Pass nil to restore the silent default.
//
// Log levels used:
//   - [slog.LevelDebug]: per-draw diagnostics (depth buffer reallocation,
//     skipped triangles, tangent generation)
//   - [slog.LevelInfo]: asset loads and evictions
//   - [slog.LevelWarn]: recoverable asset problems
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
