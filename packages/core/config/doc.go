// Package config handles configuration loading and management for hitfwd.
//
// It provides functionality for:
//   - Loading configuration from .hitfwd.yaml or .hitfwd.json files
//   - Default configuration values
//   - HITFWD_* environment overrides
//   - Converting configuration into HTTP client options
package config
