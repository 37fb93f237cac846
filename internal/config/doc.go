// Package config provides 12-factor configuration for the profile engine.
//
// Configuration is loaded from environment variables with sensible defaults.
//
// Configuration Sections:
//   - Engine: event queue and browse pagination tuning
//   - Ops: operational HTTP surface (health, metrics, command API)
//   - Logging: log level and output format
//
// Environment Variables:
//   - QUEUE_CAPACITY, BROWSE_PAGE_SIZE
//   - OPS_PORT, OPS_HOST, OPS_ENABLED
//   - LOG_LEVEL, LOG_DEV
package config
