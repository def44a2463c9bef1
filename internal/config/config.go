package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"leadbridge/internal/constants"
	"leadbridge/internal/models"
	"leadbridge/internal/security"
)

var (
	ErrMissingManyChatURL = models.ConfigError{Message: "missing ManyChat API URL"}
	ErrMissingDBPath      = models.ConfigError{Message: "missing database path"}
)

// LoadConfig reads, validates and defaults the application configuration.
// Environment overrides are applied after file validation so secrets never
// have to live in the config file.
func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - Path validated above
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	applyEnvironmentOverrides(&config)

	return &config, nil
}

func validate(c *models.Config) error {
	if c.ManyChat.APIBaseURL == "" {
		return ErrMissingManyChatURL
	}
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}

	if c.ManyChat.TimeoutSec <= 0 {
		c.ManyChat.TimeoutSec = constants.MessageSendTimeoutSec
	}

	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec <= 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}

	if c.Sync.IntervalMinutes <= 0 {
		c.Sync.IntervalMinutes = constants.DefaultSyncIntervalMinutes
	}
	if c.Sync.ContactPageSize <= 0 {
		c.Sync.ContactPageSize = constants.DefaultContactPageSize
	}

	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultRetryBackoffMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}

	return nil
}

func applyEnvironmentOverrides(c *models.Config) {
	if url := os.Getenv("MANYCHAT_API_URL"); url != "" {
		c.ManyChat.APIBaseURL = url
	}

	// The API key should come from the environment, not the config file
	if key := os.Getenv("LEADBRIDGE_MANYCHAT_API_KEY"); key != "" {
		c.ManyChat.APIKey = key
	}

	if path := os.Getenv("DB_PATH"); path != "" {
		c.Database.Path = path
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil && p > 0 {
			c.Server.Port = p
		}
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
}
