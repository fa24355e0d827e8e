package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/spendly/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), in)
	}
}

func TestFor_TagsComponent(t *testing.T) {
	var buf bytes.Buffer

	logger := logging.For(logging.New(&buf, "info", "json"), logging.ComponentRetention)
	logger.Info("swept", "deleted", 3)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))

	assert.Equal(t, "retention", line["component"])
	assert.Equal(t, "swept", line["msg"])
	assert.EqualValues(t, 3, line["deleted"])
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := logging.New(&buf, "error", "text")
	logger.Info("hidden")

	assert.Empty(t, buf.String())
}
