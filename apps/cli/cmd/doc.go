// Package cmd implements the hitfwd CLI commands using Cobra.
//
// Available commands:
//   - request: Forward a single request and print the response
//   - mock: Serve fixture routes for local development
//   - version: Show hitfwd version information
//   - completion: Generate shell completion scripts
//
// Configuration is read from .hitfwd.yaml (or --config), overlaid with
// HITFWD_* environment variables and finally with command-line flags.
package cmd
