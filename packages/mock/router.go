package mock

import (
	"net/url"
	"reflect"
	"regexp"
	"strings"
)

// Route represents a mock route
type Route struct {
	Method      string
	PathPattern string
	RawQuery    string
	PathRegex   *regexp.Regexp
	Name        string
	Handler     *Handler
}

// Router matches incoming requests to routes
type Router struct {
	routes []*Route
}

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{
		routes: make([]*Route, 0),
	}
}

// NewRoute builds a route for method and pattern. The pattern may carry a
// query string, in which case requests must send the same query.
func NewRoute(method, pattern string) *Route {
	path, rawQuery, _ := strings.Cut(pattern, "?")
	path = normalizePath(path)
	return &Route{
		Method:      strings.ToUpper(method),
		PathPattern: path,
		RawQuery:    rawQuery,
		PathRegex:   createPathRegex(path),
	}
}

// AddRoute adds a route to the router
func (r *Router) AddRoute(route *Route) {
	r.routes = append(r.routes, route)
}

// Routes returns the registered routes in registration order
func (r *Router) Routes() []*Route {
	return r.routes
}

// Match finds the first route matching the given method, path and query
func (r *Router) Match(method, path, rawQuery string) (*Route, map[string]string) {
	path = normalizePath(path)

	for _, route := range r.routes {
		if route.Method != AnyMethod && !strings.EqualFold(route.Method, method) {
			continue
		}
		if route.RawQuery != "" && !sameQuery(route.RawQuery, rawQuery) {
			continue
		}
		if params := matchPath(route, path); params != nil {
			return route, params
		}
	}

	return nil, nil
}

func sameQuery(a, b string) bool {
	qa, errA := url.ParseQuery(a)
	qb, errB := url.ParseQuery(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return reflect.DeepEqual(qa, qb)
}

func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	// Remove trailing slash (except for root)
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = path[:len(path)-1]
	}
	return path
}

func matchPath(route *Route, path string) map[string]string {
	if route.PathRegex != nil {
		matches := route.PathRegex.FindStringSubmatch(path)
		if matches != nil {
			params := make(map[string]string)
			names := route.PathRegex.SubexpNames()
			for i, name := range names {
				if i > 0 && name != "" && i < len(matches) {
					params[name] = matches[i]
				}
			}
			return params
		}
	}

	if route.PathPattern == path {
		return make(map[string]string)
	}

	return nil
}

var paramPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// createPathRegex converts {{param}} segments into named capture groups
func createPathRegex(pattern string) *regexp.Regexp {
	if !paramPattern.MatchString(pattern) {
		return nil
	}
	parts := paramPattern.Split(pattern, -1)
	names := paramPattern.FindAllStringSubmatch(pattern, -1)

	var b strings.Builder
	b.WriteString("^")
	for i, part := range parts {
		b.WriteString(regexp.QuoteMeta(part))
		if i < len(names) {
			b.WriteString("(?P<" + strings.TrimSpace(names[i][1]) + ">[^/]+)")
		}
	}
	b.WriteString("$")

	regex, err := regexp.Compile(b.String())
	if err != nil {
		return nil
	}
	return regex
}
