package logger

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ak/sba/internal/infrastructure/config"
)

func TestNew_JSONFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sba.log")
	log, err := New(config.LoggingConfig{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.WithComponent("brew").WithRequestID("req-1").Info("recipe built", zap.Int("items", 4))
	log.Debug("dropped below level")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "recipe built", entry["message"])
	assert.Equal(t, "brew", entry["component"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, float64(4), entry["items"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log, err := New(config.LoggingConfig{Level: "loud", Output: "stderr"})

	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.InfoLevel))
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
}

func TestWithStoreAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sba.log")
	log, err := New(config.LoggingConfig{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.WithComponent("storage").WithStore("sba-settings").WithError(errors.New("disk full")).Warn("put failed")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "storage", entry["component"])
	assert.Equal(t, "sba-settings", entry["store"])
	assert.Equal(t, "disk full", entry["error"])
}
