package mock

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Fixture is a set of routes loaded from a YAML (or JSON) file:
//
//	routes:
//	  - method: GET
//	    path: /next?q=error
//	    status: 200
//	    body: {msg: ok}
//	  - method: GET
//	    path: /timeoutPath
//	    timeout: true
type Fixture struct {
	Routes []RouteSpec `yaml:"routes"`
}

type RouteSpec struct {
	Name         string            `yaml:"name,omitempty"`
	Method       string            `yaml:"method"`
	Path         string            `yaml:"path"`
	Status       int               `yaml:"status,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`
	Body         any               `yaml:"body,omitempty"`
	Delay        string            `yaml:"delay,omitempty"`
	Timeout      bool              `yaml:"timeout,omitempty"`
	NetworkError bool              `yaml:"networkError,omitempty"`
}

// LoadFixture reads and validates a fixture file
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFixture(data)
}

func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	for i, r := range f.Routes {
		if r.Path == "" {
			return nil, fmt.Errorf("route %d: path is required", i)
		}
		if r.Delay != "" {
			if _, err := time.ParseDuration(r.Delay); err != nil {
				return nil, fmt.Errorf("route %d: invalid delay %q: %w", i, r.Delay, err)
			}
		}
	}
	return &f, nil
}

// Apply registers every route of f on the adapter
func (a *Adapter) Apply(f *Fixture) {
	routes := f.buildRoutes()
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range routes {
		a.router.AddRoute(r)
	}
}

// Replace swaps the adapter's routes for those of f. History is kept.
func (a *Adapter) Replace(f *Fixture) {
	router := NewRouter()
	for _, r := range f.buildRoutes() {
		router.AddRoute(r)
	}
	a.mu.Lock()
	a.router = router
	a.mu.Unlock()
}

func (f *Fixture) buildRoutes() []*Route {
	routes := make([]*Route, 0, len(f.Routes))
	for _, r := range f.Routes {
		method := r.Method
		if method == "" {
			method = AnyMethod
		}
		route := NewRoute(method, r.Path)
		route.Name = r.Name
		h := &Handler{}
		route.Handler = h

		if r.Delay != "" {
			d, _ := time.ParseDuration(r.Delay)
			h.Delay(d)
		}

		switch {
		case r.Timeout:
			h.Timeout()
		case r.NetworkError:
			h.NetworkError()
		default:
			status := r.Status
			if status == 0 {
				status = http.StatusOK
			}
			h.ReplyWithHeaders(status, r.Body, r.Headers)
		}
		routes = append(routes, route)
	}
	return routes
}

// Merge appends the routes of other fixtures to f
func (f *Fixture) Merge(others ...*Fixture) *Fixture {
	for _, o := range others {
		if o != nil {
			f.Routes = append(f.Routes, o.Routes...)
		}
	}
	return f
}
