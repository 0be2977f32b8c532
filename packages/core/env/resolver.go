package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver expands {{name}} placeholders in request paths, headers and data.
//
//	{{name}}         user-defined variable
//	{{$NAME}}        OS environment variable
//	{{uuid()}}       random UUID v4
//	{{timestamp()}}  unix seconds
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
	}
}

// SetWarnFunc sets a function to be called when a placeholder cannot be resolved
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

func (r *Resolver) GetVariable(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variables[name]
	return v, ok
}

// Resolve replaces every placeholder it can resolve. Unresolved placeholders
// are left in place.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(expr, "$") {
			envVar := expr[1:]
			if val, ok := os.LookupEnv(envVar); ok {
				return val
			}
			r.warn("unresolved environment variable: $%s", envVar)
			return match
		}

		if strings.HasSuffix(expr, "()") {
			switch strings.TrimSuffix(expr, "()") {
			case "uuid":
				return uuid.NewString()
			case "timestamp":
				return fmt.Sprintf("%d", time.Now().Unix())
			}
			r.warn("unknown function: %s", expr)
			return match
		}

		if val, ok := r.GetVariable(expr); ok {
			return fmt.Sprintf("%v", val)
		}

		r.warn("unresolved variable: %s", expr)
		return match
	})
}

func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[k] = r.Resolve(v)
	}
	return result
}

// HasUnresolved reports whether input still contains placeholders after resolution
func (r *Resolver) HasUnresolved(input string) bool {
	return variablePattern.MatchString(r.Resolve(input))
}

// MergeVariables merges maps left to right, later sources win
func MergeVariables(sources ...map[string]any) map[string]any {
	result := make(map[string]any)
	for _, src := range sources {
		for k, v := range src {
			result[k] = v
		}
	}
	return result
}

// LoadSystemEnv returns OS environment variables starting with prefix, with
// the prefix stripped. An empty prefix returns everything.
func LoadSystemEnv(prefix string) map[string]any {
	result := make(map[string]any)
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			continue
		}
		if prefix == "" {
			result[key] = value
		} else if len(key) > len(prefix) && strings.HasPrefix(key, prefix) {
			result[key[len(prefix):]] = value
		}
	}
	return result
}
