// Package logger provides test helpers for structured logging.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// NewTestLogger creates a logger for tests writing to stdout.
// By default, uses WARN level to keep test output quiet.
// Set TEST_DEBUG environment variable to enable debug logging in tests.
func NewTestLogger() *slog.Logger {
	return NewTestLoggerTo(os.Stdout)
}

// NewTestLoggerTo is NewTestLogger with an explicit destination, for tests
// that assert on log output.
func NewTestLoggerTo(w io.Writer) *slog.Logger {
	level := slog.LevelWarn

	if os.Getenv("TEST_DEBUG") != "" {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
