// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
)

// New builds a logger writing to w.
// Development uses the text handler, everything else JSON.
// verbose lowers the level to Debug so statement-level diagnostics are emitted.
func New(w io.Writer, development, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if development {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Init builds a logger with New and installs it as slog's default.
func Init(w io.Writer, development, verbose bool) *slog.Logger {
	l := New(w, development, verbose)
	slog.SetDefault(l)
	return l
}
