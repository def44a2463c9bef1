package config

import (
	"os"
	"path/filepath"
	"testing"

	"leadbridge/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `{
		"manychat": {"api_base_url": "https://api.manychat.example", "timeout_sec": 5},
		"database": {"path": "leads.db"},
		"server": {"port": 9000},
		"sync": {"enabled": true, "interval_minutes": 15},
		"log_level": "debug"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.manychat.example", cfg.ManyChat.APIBaseURL)
	assert.Equal(t, 5, cfg.ManyChat.TimeoutSec)
	assert.Equal(t, "leads.db", cfg.Database.Path)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, 15, cfg.Sync.IntervalMinutes)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"manychat": {"api_base_url": "https://api.manychat.example"},
		"database": {"path": "leads.db"}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, constants.DefaultServerReadTimeoutSec, cfg.Server.ReadTimeoutSec)
	assert.Equal(t, constants.MessageSendTimeoutSec, cfg.ManyChat.TimeoutSec)
	assert.Equal(t, constants.DefaultSyncIntervalMinutes, cfg.Sync.IntervalMinutes)
	assert.Equal(t, constants.DefaultContactPageSize, cfg.Sync.ContactPageSize)
	assert.Equal(t, constants.DefaultRetryBackoffMs, cfg.Retry.InitialBackoffMs)
	assert.Equal(t, constants.DefaultMaxBackoffMs, cfg.Retry.MaxBackoffMs)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("missing manychat url", func(t *testing.T) {
		path := writeConfig(t, `{"database": {"path": "leads.db"}}`)
		_, err := LoadConfig(path)
		assert.ErrorIs(t, err, ErrMissingManyChatURL)
	})

	t.Run("missing database path", func(t *testing.T) {
		path := writeConfig(t, `{"manychat": {"api_base_url": "https://api.manychat.example"}}`)
		_, err := LoadConfig(path)
		assert.ErrorIs(t, err, ErrMissingDBPath)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeConfig(t, `{not json`)
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("traversal in path", func(t *testing.T) {
		_, err := LoadConfig("../../etc/config.json")
		assert.Error(t, err)
	})
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"manychat": {"api_base_url": "https://file.example", "api_key": "file-key"},
		"database": {"path": "file.db"},
		"server": {"port": 9000}
	}`)

	t.Setenv("MANYCHAT_API_URL", "https://env.example")
	t.Setenv("LEADBRIDGE_MANYCHAT_API_KEY", "env-key")
	t.Setenv("DB_PATH", "env.db")
	t.Setenv("PORT", "9100")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example", cfg.ManyChat.APIBaseURL)
	assert.Equal(t, "env-key", cfg.ManyChat.APIKey)
	assert.Equal(t, "env.db", cfg.Database.Path)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfigIgnoresInvalidPortOverride(t *testing.T) {
	path := writeConfig(t, `{
		"manychat": {"api_base_url": "https://api.manychat.example"},
		"database": {"path": "leads.db"},
		"server": {"port": 9000}
	}`)

	t.Setenv("PORT", "not-a-number")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
}
