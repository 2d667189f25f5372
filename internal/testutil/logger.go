// Package testutil provides helpers shared by tests.
package testutil

import (
	"log/slog"
	"strings"
	"testing"

	"dbcatalog/internal/logger"
)

// NewTestLogger returns a debug logger that writes through t.Log, so output
// only shows for failing tests or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return logger.NewPlain(testWriter{t}, slog.LevelDebug)
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
