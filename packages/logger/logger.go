// Package logger builds the slog logger shared by the CLI, the HTTP client
// and the mock server.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// InitLogger initializes the application logger.
// Verbose mode logs debug records as text with source locations, otherwise
// info and above are written as JSON. Diagnostics go to stderr when w is nil
// so that stdout stays reserved for response output.
func InitLogger(verbose bool, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}

	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if verbose {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(handler)

	// Set as default logger so it can be used throughout the application
	slog.SetDefault(logger)

	return logger
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
