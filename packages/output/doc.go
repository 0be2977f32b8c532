// Package output renders forwarded responses and request errors.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//
// Both formatters implement the Formatter interface.
package output
