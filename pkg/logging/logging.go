// Package logging configures structured logging for taghiane.
//
// Two formats are supported: "text" (the default) writes colored,
// human-readable lines to stderr through tint, and "json" writes one
// object per line to stdout for log shippers.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Options describes the logger to build.
type Options struct {
	Level  string
	Format string

	// Attrs are attached to every record, e.g. service and env.
	Attrs []slog.Attr
}

// Setup installs the logger described by opts as the slog default and
// returns it.
func Setup(opts Options) *slog.Logger {
	logger := New(os.Stderr, os.Stdout, opts)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger. Text output goes to textOut, JSON output to jsonOut.
func New(textOut, jsonOut io.Writer, opts Options) *slog.Logger {
	level := ParseLevel(opts.Level)

	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(jsonOut, &slog.HandlerOptions{Level: level, AddSource: true})
	} else {
		h = tint.NewHandler(textOut, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  level == slog.LevelDebug,
		})
	}
	if len(opts.Attrs) > 0 {
		h = h.WithAttrs(opts.Attrs)
	}
	return slog.New(h)
}

// ParseLevel maps debug, info, warn and error to slog levels (default: info).
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
