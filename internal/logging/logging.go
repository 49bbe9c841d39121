// Package logging constructs the process-wide structured logger.
package logging

import (
	"io"
	"log/slog"
)

// New returns a JSON slog.Logger writing to w. The logger is constructed
// once at startup and passed to every component that logs.
func New(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(handler)
}
