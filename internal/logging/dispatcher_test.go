package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestDispatcherLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(NewZerolog(&buf, "debug"))

	dl.Debug("handling event", "command", "key:p", "args", 0)

	entry := decode(t, &buf)
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "handling event", entry["message"])
	assert.Equal(t, "key:p", entry["command"])
	assert.Equal(t, float64(0), entry["args"])
	assert.Contains(t, entry, "time")
}

func TestDispatcherLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(NewZerolog(&buf, "info"))

	dl.Info("session started", "name", "demo")

	entry := decode(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "demo", entry["name"])
}

func TestDispatcherLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(NewZerolog(&buf, "info"))

	dl.Error("event failed", "command", "record:train", "error", "disk full")

	entry := decode(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "disk full", entry["error"])
}

func TestDispatcherLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(NewZerolog(&buf, "info"))

	dl.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestNewZerolog_BadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZerolog(&buf, "loud")

	zl.Debug().Msg("hidden")
	zl.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestToFields(t *testing.T) {
	tests := []struct {
		name string
		in   []any
		want map[string]any
	}{
		{"empty", nil, map[string]any{}},
		{"pairs", []any{"a", 1, "b", "two"}, map[string]any{"a": 1, "b": "two"}},
		{"odd length drops trailing key", []any{"a", 1, "b"}, map[string]any{"a": 1}},
		{"non-string key skipped", []any{3, "x", "k", "v"}, map[string]any{"k": "v"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toFields(tt.in))
		})
	}
}
