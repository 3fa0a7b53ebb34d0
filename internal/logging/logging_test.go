package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("legipwd", "1.0.0", "json", false, &buf)

	logger.Info("batch generated", "count", 30)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "batch generated", entry["msg"])
	assert.Equal(t, "legipwd", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, float64(30), entry["count"])
}

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("legipwd", "1.0.0", "", false, &buf)

	logger.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "service=legipwd")
}

func TestSetup_Verbose(t *testing.T) {
	var buf bytes.Buffer
	Setup("legipwd", "dev", "text", false, &buf).Debug("hidden")
	assert.Empty(t, buf.String())

	Setup("legipwd", "dev", "text", true, &buf).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetup_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("legipwd", "dev", "json", false, &buf).
		With("workers", 2).
		WithGroup("run")

	logger.Info("done", "attempts", 10)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, float64(2), entry["workers"])
	assert.Contains(t, entry, "run")
	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
}
