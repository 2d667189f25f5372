package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelDebug, "text")

	l.Info("Crawl finished", "tables", 3, "name", "two words")
	l.With("category", "indexes").Warn("Incomplete")
	l.WithGroup("db").Debug("Ping", "driver", "sqlite")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), `[INFO ] Crawl finished tables=3 name="two words"`)
	assert.Contains(t, string(lines[1]), `[WARN ] Incomplete category=indexes`)
	assert.Contains(t, string(lines[2]), `[DEBUG] Ping db.driver=sqlite`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelWarn, "text")
	l.Info("hidden")
	l.Error("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "[ERROR] shown")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo, "json").Info("hello", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "v", rec["k"])
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"", slog.LevelInfo, true},
		{"DEBUG", slog.LevelDebug, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, err == nil)
		})
	}
}

func TestLabels(t *testing.T) {
	assert.Equal(t, fatalLabel, label(LevelFatal))
	assert.Equal(t, errorLabel, label(slog.LevelError))
	assert.Equal(t, warnLabel, label(slog.LevelWarn))
	assert.Equal(t, infoLabel, label(slog.LevelInfo))
	assert.Equal(t, debugLabel, label(slog.LevelDebug))
}

func TestDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	var buf bytes.Buffer
	SetDefault(New(&buf, slog.LevelInfo, "text"))
	Info("via package")
	Debug("filtered")
	assert.Contains(t, buf.String(), "[INFO ] via package")
	assert.NotContains(t, buf.String(), "filtered")
}
