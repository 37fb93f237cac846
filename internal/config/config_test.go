package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 128, cfg.Engine.QueueCapacity)
	assert.Equal(t, 20, cfg.Engine.BrowsePageSize)

	assert.Equal(t, "9090", cfg.Ops.Port)
	assert.Equal(t, "0.0.0.0", cfg.Ops.Host)
	assert.True(t, cfg.Ops.Enabled)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "9090", cfg.Ops.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"QUEUE_CAPACITY":   "64",
		"BROWSE_PAGE_SIZE": "5",
		"OPS_PORT":         "8081",
		"OPS_HOST":         "127.0.0.1",
		"OPS_ENABLED":      "false",
		"LOG_LEVEL":        "debug",
		"LOG_DEV":          "true",
	}
	for key, value := range envVars {
		err := os.Setenv(key, value)
		require.NoError(t, err)
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Engine.QueueCapacity)
	assert.Equal(t, 5, cfg.Engine.BrowsePageSize)
	assert.Equal(t, "8081", cfg.Ops.Port)
	assert.Equal(t, "127.0.0.1", cfg.Ops.Host)
	assert.False(t, cfg.Ops.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	err := os.Setenv("BROWSE_PAGE_SIZE", "50")
	require.NoError(t, err)
	defer os.Unsetenv("BROWSE_PAGE_SIZE")

	err = os.Setenv("LOG_LEVEL", "warn")
	require.NoError(t, err)
	defer os.Unsetenv("LOG_LEVEL")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Engine.BrowsePageSize)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Defaults still apply for the rest.
	assert.Equal(t, 128, cfg.Engine.QueueCapacity)
	assert.Equal(t, "9090", cfg.Ops.Port)
	assert.True(t, cfg.Ops.Enabled)
}

func TestEngineConfig(t *testing.T) {
	tests := []struct {
		name         string
		capacity     string
		pageSize     string
		wantCapacity int
		wantPageSize int
	}{
		{
			name:         "default values",
			wantCapacity: 128,
			wantPageSize: 20,
		},
		{
			name:         "custom capacity",
			capacity:     "256",
			wantCapacity: 256,
			wantPageSize: 20,
		},
		{
			name:         "custom page size",
			pageSize:     "10",
			wantCapacity: 128,
			wantPageSize: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("QUEUE_CAPACITY")
			os.Unsetenv("BROWSE_PAGE_SIZE")

			if tt.capacity != "" {
				err := os.Setenv("QUEUE_CAPACITY", tt.capacity)
				require.NoError(t, err)
				defer os.Unsetenv("QUEUE_CAPACITY")
			}
			if tt.pageSize != "" {
				err := os.Setenv("BROWSE_PAGE_SIZE", tt.pageSize)
				require.NoError(t, err)
				defer os.Unsetenv("BROWSE_PAGE_SIZE")
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantCapacity, cfg.Engine.QueueCapacity)
			assert.Equal(t, tt.wantPageSize, cfg.Engine.BrowsePageSize)
		})
	}
}
