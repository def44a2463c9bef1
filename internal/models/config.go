package models

// ConfigError represents a configuration validation failure
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}

// ManyChatConfig configures the ManyChat API client
type ManyChatConfig struct {
	APIBaseURL string `json:"api_base_url"`
	APIKey     string `json:"api_key"`
	TimeoutSec int    `json:"timeout_sec"`
}

// DatabaseConfig configures the SQLite backing store
type DatabaseConfig struct {
	Path string `json:"path"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Port            int `json:"port"`
	ReadTimeoutSec  int `json:"read_timeout_sec"`
	WriteTimeoutSec int `json:"write_timeout_sec"`
	IdleTimeoutSec  int `json:"idle_timeout_sec"`
}

// SyncConfig configures the reconciliation scheduler
type SyncConfig struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"interval_minutes"`
	ContactPageSize int  `json:"contact_page_size"`
}

// RetryConfig configures database retry backoff
type RetryConfig struct {
	InitialBackoffMs int `json:"initial_backoff_ms"`
	MaxBackoffMs     int `json:"max_backoff_ms"`
}

// TracingConfig configures OpenTelemetry tracing
type TracingConfig struct {
	Enabled        bool    `json:"enabled"`
	ServiceName    string  `json:"service_name"`
	ServiceVersion string  `json:"service_version"`
	Environment    string  `json:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate"`
	UseStdout      bool    `json:"use_stdout"`
}

// Config is the root application configuration
type Config struct {
	ManyChat ManyChatConfig `json:"manychat"`
	Database DatabaseConfig `json:"database"`
	Server   ServerConfig   `json:"server"`
	Sync     SyncConfig     `json:"sync"`
	Retry    RetryConfig    `json:"retry"`
	Tracing  TracingConfig  `json:"tracing"`
	LogLevel string         `json:"log_level"`
}
