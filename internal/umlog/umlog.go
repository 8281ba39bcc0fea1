// Package umlog provides umix's structured logging, following the
// pattern in elsie's internal/log (github.com/smoynes/elsie): a thin
// wrapper around the standard library's log/slog with a runtime-settable
// level, rather than a hand-rolled formatter or an unwired third-party
// logging library. No third-party logging package is used anywhere in
// the example corpus for a single-process CLI tool like this one — zap
// only appears in mibesr's web server — so log/slog is the idiomatic
// choice here; see DESIGN.md.
package umlog

import (
	"log/slog"
	"os"
)

// Level re-exports slog's level type so callers don't need to import
// log/slog directly just to pass -v through.
type Level = slog.Level

const (
	Debug = slog.LevelDebug
	Info  = slog.LevelInfo
	Warn  = slog.LevelWarn
	Error = slog.LevelError
)

// levelVar is the process-wide, runtime-adjustable log level. Verbosity
// flags (-v raises it to Debug) mutate this directly.
var levelVar = &slog.LevelVar{}

// SetLevel adjusts the minimum level that will be emitted.
func SetLevel(l Level) { levelVar.Set(l) }

// New creates a logger that writes human-readable key=value lines to
// out, gated by the current level.
func New(out *os.File) *slog.Logger {
	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: levelVar})
	return slog.New(h)
}
