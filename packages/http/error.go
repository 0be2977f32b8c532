package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Error codes carried by Error.Code. The names follow the codes used by
// common JavaScript HTTP clients so fixtures and logs stay comparable.
const (
	CodeTimeout        = "ECONNABORTED"
	CodeConnRefused    = "ECONNREFUSED"
	CodeCanceled       = "ERR_CANCELED"
	CodeNetwork        = "ERR_NETWORK"
	CodeBadRequest     = "ERR_BAD_REQUEST"
	CodeBadResponse    = "ERR_BAD_RESPONSE"
	CodeInvalidURL     = "ERR_INVALID_URL"
	CodeBadOptionValue = "ERR_BAD_OPTION_VALUE"
)

// Error is returned by Client for non-2xx responses and transport failures.
type Error struct {
	// Code classifies the failure, e.g. CodeTimeout or CodeBadRequest.
	Code string

	// FromClient reports that the error was produced by the client while
	// sending the request, as opposed to invalid caller input.
	FromClient bool

	// Response is set for non-2xx responses and nil for transport failures.
	Response *Response

	Method string
	URL    string

	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Method != "" {
		b.WriteString(strings.ToUpper(e.Method))
		b.WriteString(" ")
	}
	if e.URL != "" {
		b.WriteString(e.URL)
		b.WriteString(": ")
	}
	if e.Response != nil {
		fmt.Fprintf(&b, "request failed with status code %d", e.Response.StatusCode)
	} else {
		b.WriteString("request failed")
	}
	if e.Code != "" {
		b.WriteString(" (")
		b.WriteString(e.Code)
		b.WriteString(")")
	}
	if e.Cause != nil && e.Response == nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// AsError extracts *Error from err.
func AsError(err error) (*Error, bool) {
	var he *Error
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

// IsTimeout reports whether err is a client timeout.
func IsTimeout(err error) bool {
	he, ok := AsError(err)
	return ok && he.Code == CodeTimeout
}

// IsHTTPStatus reports whether err carries a response with the given status code.
func IsHTTPStatus(err error, code int) bool {
	he, ok := AsError(err)
	return ok && he.Response != nil && he.Response.StatusCode == code
}

func statusError(method, url string, resp *Response) *Error {
	code := CodeBadRequest
	if resp.IsServerError() {
		code = CodeBadResponse
	}
	return &Error{
		Code:       code,
		FromClient: true,
		Response:   resp,
		Method:     method,
		URL:        url,
		Cause:      errors.New(resp.Status),
	}
}

func transportError(method, url string, err error) *Error {
	return &Error{
		Code:       classifyTransportError(err),
		FromClient: true,
		Method:     method,
		URL:        url,
		Cause:      err,
	}
}

// limiterError maps a failed rate limiter wait. The limiter refuses up front
// when the next token would arrive after the ctx deadline; that is a timeout.
func limiterError(ctx context.Context, method, url string, err error) *Error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return transportError(method, url, ctxErr)
	}
	terr := transportError(method, url, err)
	if _, ok := ctx.Deadline(); ok {
		terr.Code = CodeTimeout
	}
	return terr
}

func classifyTransportError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return CodeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return CodeCanceled
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return CodeConnRefused
	}
	return CodeNetwork
}
