package mock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_Match(t *testing.T) {
	r := NewRouter()
	r.AddRoute(NewRoute("GET", "/next?q=error"))
	r.AddRoute(NewRoute("GET", "/users/{{id}}"))
	r.AddRoute(NewRoute("POST", "/uploadfile"))
	r.AddRoute(NewRoute(AnyMethod, "/health/"))
	r.AddRoute(NewRoute("GET", "/?key=value"))

	tests := []struct {
		name     string
		method   string
		path     string
		query    string
		wantPath string
		params   map[string]string
	}{
		{"exact query", "GET", "/next", "q=error", "/next", map[string]string{}},
		{"query mismatch", "GET", "/next", "q=other", "", nil},
		{"missing query", "GET", "/next", "", "", nil},
		{"path param", "GET", "/users/7", "", "/users/{{id}}", map[string]string{"id": "7"}},
		{"method mismatch", "GET", "/uploadfile", "", "", nil},
		{"method case-insensitive", "post", "/uploadfile", "", "/uploadfile", map[string]string{}},
		{"any method", "DELETE", "/health", "", "/health", map[string]string{}},
		{"trailing slash", "PUT", "/health/", "", "/health", map[string]string{}},
		{"root with query", "GET", "", "key=value", "/", map[string]string{}},
		{"unknown", "GET", "/nope", "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route, params := r.Match(tt.method, tt.path, tt.query)
			if tt.wantPath == "" {
				assert.Nil(t, route)
				return
			}
			require.NotNil(t, route)
			assert.Equal(t, tt.wantPath, route.PathPattern)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestRouter_QueryOrderDoesNotMatter(t *testing.T) {
	r := NewRouter()
	r.AddRoute(NewRoute("GET", "/s?a=1&b=2"))

	route, _ := r.Match("GET", "/s", "b=2&a=1")
	assert.NotNil(t, route)
}

func TestRouter_FirstMatchWins(t *testing.T) {
	r := NewRouter()
	first := NewRoute("GET", "/items/{{id}}")
	second := NewRoute("GET", "/items/special")
	r.AddRoute(first)
	r.AddRoute(second)

	route, _ := r.Match("GET", "/items/special", "")
	assert.Same(t, first, route)
}

func TestCreatePathRegex(t *testing.T) {
	assert.Nil(t, createPathRegex("/plain/path"))

	re := createPathRegex("/a.b/{{id}}")
	require.NotNil(t, re)
	assert.True(t, re.MatchString("/a.b/1"))
	assert.False(t, re.MatchString("/axb/1"))
}
