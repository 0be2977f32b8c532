package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_Verbose(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := InitLogger(true, &buf)

	log.Debug("sending request", "method", "GET")

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, "msg=\"sending request\"")
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "source=")
	assert.Same(t, log, slog.Default())
}

func TestInitLogger_JSON(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	log := InitLogger(false, &buf)

	log.Debug("hidden")
	log.Info("request completed", "status", 200)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "request completed", record["msg"])
	assert.EqualValues(t, 200, record["status"])
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(t.Context(), slog.LevelError))
}
