package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerWithWritersFansOut(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Info("stored pdf", "key", "documents/1_a.pdf")

	assert.Contains(t, stderr.String(), "stored pdf")
	assert.Contains(t, stderr.String(), "documents/1_a.pdf")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &entry))
	assert.Equal(t, "stored pdf", entry["msg"])
	assert.Equal(t, "documents/1_a.pdf", entry["key"])
}

func TestSetupLoggerWithWritersHonorsLevel(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelWarn)

	logger.Info("below threshold")
	logger.Warn("at threshold")

	assert.NotContains(t, stderr.String(), "below threshold")
	assert.Contains(t, stderr.String(), "at threshold")
	assert.NotContains(t, file.String(), "below threshold")
}
