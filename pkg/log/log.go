// Package log wires the process-wide slog default used by every binary.
package log

import (
	"log/slog"
	"os"
)

// Setup installs a text handler on stderr at the requested level. An
// unrecognized level name falls back to info rather than failing startup.
func Setup(logLevel string) {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// WithModule returns the default logger tagged with the subsystem name, so
// log lines can be attributed to the api, persistence or bus layers.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
