package testutil

import (
	"io"
	"log/slog"
)

// NewNullLogger returns a logger that discards everything, for tests that
// exercise code paths emitting log output.
func NewNullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
