package http

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// RequestConfig holds the optional per-call settings for Forwarder.Request.
type RequestConfig struct {
	Method  string
	Data    any
	Query   map[string]string
	Headers map[string]string
	Timeout time.Duration
}

// Forwarder turns a path and RequestConfig into a single call on a Sender.
// Responses and errors from the Sender are returned unchanged.
type Forwarder struct {
	sender Sender
}

func NewForwarder(s Sender) *Forwarder {
	return &Forwarder{sender: s}
}

// Request sends path with cfg applied. cfg may be nil.
func (f *Forwarder) Request(ctx context.Context, path string, cfg *RequestConfig) (*Response, error) {
	if cfg == nil {
		cfg = &RequestConfig{}
	}
	method := cfg.Method
	if method == "" {
		method = http.MethodGet
	}
	req := NewRequest(method, BuildPath(path, cfg.Query)).
		SetData(cfg.Data).
		SetTimeout(cfg.Timeout)
	for k, v := range cfg.Headers {
		req.SetHeader(k, v)
	}
	return f.sender.Do(ctx, req)
}

// BuildPath appends query to path as key=value pairs joined by "&", in key order.
// An empty path becomes "/". The query goes before any "#fragment".
func BuildPath(path string, query map[string]string) string {
	if len(query) == 0 {
		return path
	}
	if path == "" {
		path = "/"
	}

	path, fragment, hasFragment := strings.Cut(path, "#")

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(query[k]))
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
		if strings.HasSuffix(path, "?") || strings.HasSuffix(path, "&") {
			sep = ""
		}
	}
	out := path + sep + strings.Join(pairs, "&")
	if hasFragment {
		out += "#" + fragment
	}
	return out
}
