// Package http provides the request forwarder and the HTTP client behind it.
//
// Forwarder merges an optional query mapping into a path and delegates to a
// Sender. Client is the default Sender and adds:
//   - Base URL resolution and configurable timeouts
//   - Redirect handling
//   - Raw, form, JSON and multipart request bodies
//   - Decoded response data with gjson path access
//   - Error values carrying a code and the failed response
//
// Responses and errors from the Sender reach the caller unchanged.
package http
