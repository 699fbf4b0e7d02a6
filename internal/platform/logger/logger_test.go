package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		input string
		want  slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"  Warn ", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
	}
	for _, tc := range cases {
		got, ok := parseLevel(tc.input)
		assert.Equal(t, tc.want, got, "level for %q", tc.input)
		assert.Equal(t, tc.ok, ok, "ok for %q", tc.input)
	}
}

func TestSetupEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := setup("debug", &buf)
	require.NotNil(t, log)

	log.Debug("hello", slog.String("k", "v"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "v", record["k"])
	assert.Equal(t, "DEBUG", record["level"])
}

func TestSetupFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := setup("warn", &buf)

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestSetupInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := setup("chatty", &buf)

	log.Debug("dropped")
	assert.Zero(t, buf.Len())
	log.Info("kept")
	assert.Contains(t, buf.String(), "kept")
}
