// Package env handles environment variables and placeholder resolution for hitfwd.
//
// It provides functionality for:
//   - Loading .env files
//   - Reading prefixed OS environment variables
//   - {{variable}} interpolation with built-in uuid() and timestamp()
package env
