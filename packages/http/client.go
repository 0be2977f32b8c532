package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	neturl "net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRedirects is the maximum number of redirects to follow
	DefaultMaxRedirects = 10
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultMaxIdleConnsPerHost is the maximum number of idle connections per host
	DefaultMaxIdleConnsPerHost = 10
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second
)

// Sender sends a single request. *Client implements it; Forwarder depends
// only on this interface so the client can be substituted in tests.
type Sender interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

type Client struct {
	httpClient      *http.Client
	transport       http.RoundTripper
	baseURL         string
	timeout         time.Duration
	followRedirect  bool
	maxRedirects    int
	validateSSL     bool
	proxyURL        string
	defaultHeaders  map[string]string
	requestIDHeader string
	limiter         *rate.Limiter
	logger          *slog.Logger
}

type ClientOption func(*Client)

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		timeout:        DefaultTimeout,
		followRedirect: true,
		maxRedirects:   DefaultMaxRedirects,
		validateSSL:    true,
		defaultHeaders: make(map[string]string),
		logger:         slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	rt := c.transport
	if rt == nil {
		transport := &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        DefaultMaxIdleConns,
			MaxIdleConnsPerHost: DefaultMaxIdleConnsPerHost,
			IdleConnTimeout:     DefaultIdleConnTimeout,
		}

		if !c.validateSSL {
			transport.TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true,
			}
		}

		if c.proxyURL != "" {
			proxyURL, err := neturl.Parse(c.proxyURL)
			if err == nil {
				transport.Proxy = http.ProxyURL(proxyURL)
			}
		}
		rt = transport
	}

	redirectPolicy := func(req *http.Request, via []*http.Request) error {
		if !c.followRedirect {
			return http.ErrUseLastResponse
		}
		if len(via) >= c.maxRedirects {
			return http.ErrUseLastResponse
		}
		return nil
	}

	c.httpClient = &http.Client{
		Transport:     rt,
		CheckRedirect: redirectPolicy,
	}

	return c
}

// WithBaseURL sets the URL that relative request paths are resolved against
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

// WithTimeout bounds every request. A per-request Timeout takes precedence.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTransport replaces the underlying RoundTripper. TLS and proxy options
// are ignored when a transport is supplied.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) {
		c.transport = rt
	}
}

func WithFollowRedirects(follow bool) ClientOption {
	return func(c *Client) {
		c.followRedirect = follow
	}
}

func WithMaxRedirects(max int) ClientOption {
	return func(c *Client) {
		c.maxRedirects = max
	}
}

func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.defaultHeaders[key] = value
	}
}

// WithDefaultHeaders sets multiple default headers for all requests
func WithDefaultHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.defaultHeaders[k] = v
		}
	}
}

// WithValidateSSL enables or disables SSL certificate validation
func WithValidateSSL(validate bool) ClientOption {
	return func(c *Client) {
		c.validateSSL = validate
	}
}

// WithProxy sets the proxy URL for all requests
func WithProxy(proxyURL string) ClientOption {
	return func(c *Client) {
		c.proxyURL = proxyURL
	}
}

// WithRequestID adds a generated UUID under header to requests that don't carry one
func WithRequestID(header string) ClientOption {
	return func(c *Client) {
		c.requestIDHeader = header
	}
}

// WithRateLimit throttles outgoing requests to rps per second. Zero disables it.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	return c.doRequest(ctx, req)
}

func (c *Client) doRequest(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	target, err := c.resolveURL(req.BuildURL())
	if err != nil {
		return nil, &Error{Code: CodeInvalidURL, FromClient: true, Method: method, URL: req.URL, Cause: err}
	}

	var body io.Reader
	var contentType string

	if len(req.Multipart) > 0 {
		multipartBody, ct, err := BuildMultipartBody(req.Multipart, req.BaseDir)
		if err != nil {
			return nil, &Error{Code: CodeBadOptionValue, Method: method, URL: target, Cause: err}
		}
		body = multipartBody
		contentType = ct
	} else {
		body, contentType, err = encodeBody(req.Data)
		if err != nil {
			return nil, &Error{Code: CodeBadOptionValue, Method: method, URL: target, Cause: err}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &Error{Code: CodeInvalidURL, FromClient: true, Method: method, URL: target, Cause: err}
	}

	for k, v := range c.defaultHeaders {
		httpReq.Header.Set(k, v)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if contentType != "" && (httpReq.Header.Get("Content-Type") == "" || len(req.Multipart) > 0) {
		httpReq.Header.Set("Content-Type", contentType)
	}

	if c.requestIDHeader != "" && httpReq.Header.Get(c.requestIDHeader) == "" {
		httpReq.Header.Set(c.requestIDHeader, uuid.NewString())
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, limiterError(ctx, method, target, err)
		}
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		terr := transportError(method, target, err)
		c.logger.Debug("request failed", "method", method, "url", target, "code", terr.Code, "duration", duration, "error", err)
		return nil, terr
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, transportError(method, target, err)
	}

	headers := make(map[string]string)
	for k := range httpResp.Header {
		headers[k] = httpResp.Header.Get(k)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    headers,
		Body:       respBody,
		Data:       decodeData(respBody),
		Duration:   duration,
	}

	c.logger.Debug("request", "method", method, "url", target, "status", resp.StatusCode, "duration", duration)

	if !resp.IsSuccess() {
		return nil, statusError(method, target, resp)
	}
	return resp, nil
}

// resolveURL joins a relative path onto the base URL. Absolute URLs pass through.
func (c *Client) resolveURL(raw string) (string, error) {
	u, err := neturl.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if !u.IsAbs() {
		if c.baseURL == "" {
			return "", errors.New("relative path requires a base URL")
		}
		base, err := neturl.Parse(c.baseURL)
		if err != nil {
			return "", fmt.Errorf("invalid base URL: %v", err)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		// A leading "/" is relative to the base path so prefixes like /api/v1 survive.
		ref := *u
		ref.Path = strings.TrimPrefix(ref.Path, "/")
		u = base.ResolveReference(&ref)
	}
	s := u.String()
	if err := ValidateURL(s); err != nil {
		return "", err
	}
	return s, nil
}

func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodGet,
		URL:     url,
		Headers: headers,
	})
}

func (c *Client) Post(ctx context.Context, url string, data any, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodPost,
		URL:     url,
		Data:    data,
		Headers: headers,
	})
}

func (c *Client) Put(ctx context.Context, url string, data any, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodPut,
		URL:     url,
		Data:    data,
		Headers: headers,
	})
}

func (c *Client) Patch(ctx context.Context, url string, data any, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodPatch,
		URL:     url,
		Data:    data,
		Headers: headers,
	})
}

func (c *Client) Delete(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method:  http.MethodDelete,
		URL:     url,
		Headers: headers,
	})
}

// validatePathWithinBase checks that the resolved path stays within the base directory
// to prevent path traversal attacks
func validatePathWithinBase(path, baseDir string) error {
	if baseDir == "" {
		return nil
	}

	cleanBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %v", err)
	}

	cleanPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %v", err)
	}

	if !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) && cleanPath != cleanBase {
		return fmt.Errorf("path traversal detected: %s is outside allowed directory %s", path, baseDir)
	}

	return nil
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}

// BuildMultipartBody creates a multipart form data body from multipart fields
func BuildMultipartBody(fields []*MultipartField, baseDir string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, field := range fields {
		if field.Type == MultipartFieldFile {
			filePath := field.Path
			if !filepath.IsAbs(filePath) && baseDir != "" {
				filePath = filepath.Join(baseDir, filePath)
			}

			if err := validatePathWithinBase(filePath, baseDir); err != nil {
				return nil, "", err
			}

			file, err := os.Open(filePath)
			if err != nil {
				return nil, "", err
			}

			part, err := writer.CreateFormFile(field.Name, filepath.Base(filePath))
			if err != nil {
				file.Close()
				return nil, "", err
			}

			_, err = io.Copy(part, file)
			file.Close()
			if err != nil {
				return nil, "", err
			}
		} else {
			err := writer.WriteField(field.Name, field.Value)
			if err != nil {
				return nil, "", err
			}
		}
	}

	err := writer.Close()
	if err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}
