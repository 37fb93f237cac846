package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all engine configuration.
type Config struct {
	Engine  EngineConfig
	Ops     OpsConfig
	Logging LogConfig
}

// EngineConfig holds profile engine tuning.
type EngineConfig struct {
	// QueueCapacity bounds each profile's serialized event queue.
	QueueCapacity int `envconfig:"QUEUE_CAPACITY" default:"128"`
	// BrowsePageSize is the number of items requested per content fetch window.
	BrowsePageSize int `envconfig:"BROWSE_PAGE_SIZE" default:"20"`
}

// OpsConfig holds the observability HTTP surface configuration.
type OpsConfig struct {
	Port    string `envconfig:"OPS_PORT" default:"9090"`
	Host    string `envconfig:"OPS_HOST" default:"0.0.0.0"`
	Enabled bool   `envconfig:"OPS_ENABLED" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			QueueCapacity:  128,
			BrowsePageSize: 20,
		},
		Ops: OpsConfig{
			Port:    "9090",
			Host:    "0.0.0.0",
			Enabled: true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
