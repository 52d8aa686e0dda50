package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/tablebot/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJSON_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewJSON(&buf, slog.LevelInfo)

	logger.Info("call failed", "error", errors.New("boom"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "boom", line["err"])
	assert.NotContains(t, line, "error")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := logging.ParseLevel("loud")
	assert.Error(t, err)
}
