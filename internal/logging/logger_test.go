package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLoggerInProd(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, "prod", slog.LevelInfo, "weather-data-query")

	logger.Debug("hidden")
	logger.Info("served", "status", 200)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "served", entry["msg"])
	assert.Equal(t, "weather-data-query", entry["app"])
	assert.Equal(t, "prod", entry["env"])
	assert.EqualValues(t, 200, entry["status"])
}

func TestTextLoggerInDev(t *testing.T) {
	var buf bytes.Buffer
	logger := newWithWriter(&buf, "dev", slog.LevelWarn, "weather-data-query")

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("provider fetch failed")
	assert.Contains(t, buf.String(), "provider fetch failed")
	assert.Contains(t, buf.String(), "weather-data-query")
}
