// Package mock intercepts HTTP requests for tests and serves fixture routes.
//
// Adapter plugs into a client as its transport and answers from registered
// routes, recording every request. Server exposes the same routes over a real
// listener, loaded from YAML fixture files.
package mock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounceDelay is the debounce delay for fixture change events
const WatchDebounceDelay = 300 * time.Millisecond

// Server is a mock HTTP server backed by an Adapter
type Server struct {
	adapter *Adapter
	port    int
	delay   time.Duration
	verbose bool
	logger  *slog.Logger

	mu    sync.Mutex
	files []string
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithVerbose enables per-request logging
func WithVerbose(verbose bool) Option {
	return func(s *Server) {
		s.verbose = verbose
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new mock server
func NewServer(opts ...Option) *Server {
	s := &Server{
		adapter: NewAdapter(),
		port:    3000,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Adapter returns the adapter answering the server's requests
func (s *Server) Adapter() *Adapter {
	return s.adapter
}

// LoadFile loads routes from a fixture file
func (s *Server) LoadFile(path string) error {
	f, err := LoadFixture(path)
	if err != nil {
		return fmt.Errorf("failed to load fixture %s: %w", path, err)
	}
	s.adapter.Apply(f)

	s.mu.Lock()
	s.files = append(s.files, path)
	s.mu.Unlock()
	return nil
}

// LoadFiles loads routes from multiple fixture files
func (s *Server) LoadFiles(paths []string) error {
	for _, path := range paths {
		if err := s.LoadFile(path); err != nil {
			return err
		}
	}
	return nil
}

// Reload re-reads every loaded fixture and swaps the routes in one step.
// On error the current routes stay in place.
func (s *Server) Reload() error {
	s.mu.Lock()
	files := append([]string(nil), s.files...)
	s.mu.Unlock()

	merged := &Fixture{}
	for _, path := range files {
		f, err := LoadFixture(path)
		if err != nil {
			return fmt.Errorf("failed to load fixture %s: %w", path, err)
		}
		merged.Merge(f)
	}
	s.adapter.Replace(merged)
	s.logger.Info("fixtures reloaded", "files", len(files), "routes", len(merged.Routes))
	return nil
}

// Routes returns all registered routes
func (s *Server) Routes() []*Route {
	return s.adapter.Routes()
}

// Handler returns the http.Handler serving the routes
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleRequest)
}

// StartWithContext serves until ctx is done, then shuts down gracefully
func (s *Server) StartWithContext(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("mock server starting", "addr", ln.Addr().String(), "routes", len(s.Routes()))
	if s.verbose {
		for _, route := range s.Routes() {
			s.logger.Info("route", "method", route.Method, "path", route.PathPattern, "query", route.RawQuery)
		}
	}

	err := server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Watch reloads the fixtures whenever one of the loaded files is written.
// It blocks until ctx is done.
func (s *Server) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	s.mu.Lock()
	files := make(map[string]bool, len(s.files))
	dirs := make(map[string]bool)
	for _, f := range s.files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	s.mu.Unlock()

	// Editors often replace files, so watch directories rather than files.
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !files[name] {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(WatchDebounceDelay, func() {
				if err := s.Reload(); err != nil {
					s.logger.Error("reload failed", "error", err)
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "error", err)
		}
	}
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
	}

	resp, err := s.adapter.RoundTrip(r)
	switch {
	case errors.Is(err, ErrTimeout):
		// Hold the connection until the client gives up.
		<-r.Context().Done()
		s.log(r, 0, start)
		return
	case errors.Is(err, ErrNetwork):
		s.log(r, 0, start)
		panic(http.ErrAbortHandler)
	case err != nil:
		s.log(r, http.StatusInternalServerError, start)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)

	s.log(r, resp.StatusCode, start)
}

func (s *Server) log(r *http.Request, status int, start time.Time) {
	if !s.verbose {
		return
	}
	s.logger.Info("request", "method", r.Method, "path", r.URL.RequestURI(), "status", status, "duration", time.Since(start))
}
