// Package logging builds the process logger: colored tint output while developing,
// JSON lines in production.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a logger writing to stderr. The level is one of debug, info, warn, error
// (default info).
func New(isProduction bool, level string) *slog.Logger {
	return NewWithWriter(os.Stderr, isProduction, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, isProduction bool, level string) *slog.Logger {
	lvl := ParseLevel(level)
	if isProduction {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
		AddSource:  true,
		NoColor:    w != os.Stderr && w != os.Stdout,
	}))
}

// Setup builds a logger with New and installs it as the slog default.
func Setup(isProduction bool, level string) *slog.Logger {
	logger := New(isProduction, level)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a level name to a slog.Level, falling back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
