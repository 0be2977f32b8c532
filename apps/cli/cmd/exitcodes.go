package cmd

import (
	"errors"

	"github.com/abdul-hamid-achik/hitfwd/packages/http"
	"github.com/abdul-hamid-achik/hitfwd/packages/schema"
)

// Exit codes for hitfwd CLI
const (
	// ExitSuccess indicates the request succeeded
	ExitSuccess = 0

	// ExitHTTPError indicates a non-2xx response or a failed schema check
	ExitHTTPError = 1

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error, including timeouts
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the process exit code alongside the error. reported is
// set once a formatter has already written the error to the user.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCodeFor maps an error returned by a command to an exit code.
// reportedExit is withExitCode for errors the formatter has already printed
func reportedExit(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err, reported: true}
}

func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if schema.IsValidationError(err) {
		return ExitHTTPError
	}
	if herr, ok := http.AsError(err); ok {
		switch {
		case herr.Response != nil:
			return ExitHTTPError
		case herr.Code == http.CodeBadOptionValue || herr.Code == http.CodeInvalidURL:
			return ExitUsageError
		default:
			return ExitNetworkError
		}
	}
	return ExitUsageError
}
