package mock

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// AnyMethod matches every HTTP method.
const AnyMethod = "*"

// ErrNetwork is returned by routes configured with Handler.NetworkError.
var ErrNetwork = errors.New("mock: network error")

// ErrTimeout is returned by routes configured with Handler.Timeout. It
// reports Timeout() == true like a real deadline error.
var ErrTimeout error = timeoutError{}

type timeoutError struct{}

func (timeoutError) Error() string   { return "mock: timeout exceeded" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// ReplyFunc computes a reply from the recorded request.
type ReplyFunc func(rec *Recorded) (status int, body any)

// Recorded is a request seen by the adapter.
type Recorded struct {
	Method  string
	URL     string
	Path    string
	Query   url.Values
	Params  map[string]string
	Headers http.Header
	Body    []byte
}

func (r *Recorded) BodyString() string {
	return string(r.Body)
}

// Handler configures how a route answers. Configure handlers before the
// adapter starts serving requests.
type Handler struct {
	status     int
	headers    map[string]string
	body       any
	fn         ReplyFunc
	timeout    bool
	networkErr bool
	delay      time.Duration
}

// Reply answers with a fixed status and body. Strings and byte slices are
// written as-is, other values as JSON.
func (h *Handler) Reply(status int, body any) *Handler {
	return h.ReplyWithHeaders(status, body, nil)
}

func (h *Handler) ReplyWithHeaders(status int, body any, headers map[string]string) *Handler {
	h.status = status
	h.body = body
	h.headers = headers
	h.fn = nil
	h.timeout = false
	h.networkErr = false
	return h
}

func (h *Handler) ReplyFunc(fn ReplyFunc) *Handler {
	h.fn = fn
	h.timeout = false
	h.networkErr = false
	return h
}

// Timeout makes the route fail with ErrTimeout.
func (h *Handler) Timeout() *Handler {
	h.timeout = true
	h.networkErr = false
	return h
}

// NetworkError makes the route fail with ErrNetwork.
func (h *Handler) NetworkError() *Handler {
	h.networkErr = true
	h.timeout = false
	return h
}

// Delay holds the reply back for d, or until the request is canceled.
func (h *Handler) Delay(d time.Duration) *Handler {
	h.delay = d
	return h
}

// Adapter is an http.RoundTripper that answers from registered routes
// instead of the network. Install it with http.WithTransport.
type Adapter struct {
	mu      sync.Mutex
	router  *Router
	history []*Recorded
}

func NewAdapter() *Adapter {
	return &Adapter{router: NewRouter()}
}

// On registers a route for method and path. Path may include a query string.
func (a *Adapter) On(method, path string) *Handler {
	return a.addRoute(NewRoute(method, path))
}

func (a *Adapter) addRoute(route *Route) *Handler {
	route.Handler = &Handler{status: http.StatusOK}

	a.mu.Lock()
	a.router.AddRoute(route)
	a.mu.Unlock()
	return route.Handler
}

func (a *Adapter) OnGet(path string) *Handler    { return a.On(http.MethodGet, path) }
func (a *Adapter) OnPost(path string) *Handler   { return a.On(http.MethodPost, path) }
func (a *Adapter) OnPut(path string) *Handler    { return a.On(http.MethodPut, path) }
func (a *Adapter) OnPatch(path string) *Handler  { return a.On(http.MethodPatch, path) }
func (a *Adapter) OnDelete(path string) *Handler { return a.On(http.MethodDelete, path) }
func (a *Adapter) OnAny(path string) *Handler    { return a.On(AnyMethod, path) }

// History returns the recorded requests in call order.
func (a *Adapter) History() []*Recorded {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Recorded, len(a.history))
	copy(out, a.history)
	return out
}

// Routes returns the registered routes.
func (a *Adapter) Routes() []*Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Route, len(a.router.routes))
	copy(out, a.router.routes)
	return out
}

// Reset removes all routes and recorded requests.
func (a *Adapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.router = NewRouter()
	a.history = nil
}

// ResetHistory clears recorded requests but keeps routes.
func (a *Adapter) ResetHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

func (a *Adapter) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		body = b
	}

	rec := &Recorded{
		Method:  req.Method,
		URL:     req.URL.String(),
		Path:    req.URL.Path,
		Query:   req.URL.Query(),
		Headers: req.Header.Clone(),
		Body:    body,
	}

	a.mu.Lock()
	route, params := a.router.Match(req.Method, req.URL.Path, req.URL.RawQuery)
	rec.Params = params
	a.history = append(a.history, rec)
	a.mu.Unlock()

	if route == nil {
		return newResponse(req, http.StatusNotFound, nil, nil)
	}

	h := route.Handler
	if h.delay > 0 {
		timer := time.NewTimer(h.delay)
		select {
		case <-timer.C:
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		}
	}

	switch {
	case h.timeout:
		return nil, ErrTimeout
	case h.networkErr:
		return nil, ErrNetwork
	case h.fn != nil:
		status, out := h.fn(rec)
		return newResponse(req, status, out, nil)
	default:
		return newResponse(req, h.status, h.body, h.headers)
	}
}

func newResponse(req *http.Request, status int, body any, headers map[string]string) (*http.Response, error) {
	header := make(http.Header)
	for k, v := range headers {
		header.Set(k, v)
	}

	var raw []byte
	switch v := body.(type) {
	case nil:
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("mock: encode reply body: %w", err)
		}
		raw = b
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", "application/json")
		}
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(raw)),
		ContentLength: int64(len(raw)),
		Request:       req,
	}, nil
}
