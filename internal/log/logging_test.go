package log

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmcdole/folio/internal/config"
)

func TestSetupLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "folio.log")

	logger, closer, err := SetupLogger(&config.LoggingConfig{File: path, Level: "warn"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("like failed", "id", "img-1")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	require.Equal(t, "like failed", entry["msg"])
	require.Equal(t, "img-1", entry["id"])
}

func TestSetupLoggerRequiresFile(t *testing.T) {
	_, _, err := SetupLogger(&config.LoggingConfig{})
	require.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	require.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	require.Equal(t, slog.LevelError, ParseLevel("Error"))
	require.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}
