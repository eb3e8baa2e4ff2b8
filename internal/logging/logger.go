// Package logging builds the loggers used across the runtime.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates the application logger used by the CLI. It writes to
// Stderr so Stdout stays free for the domain-event stream, and
// standardizes the "error" key to "err".
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a logger that discards everything. Library defaults use
// it so embedding hosts opt in to logging explicitly.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
