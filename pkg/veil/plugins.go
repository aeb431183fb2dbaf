package veil

import (
	"errors"
	"fmt"
	mrand "math/rand/v2"
	"sort"
	"strings"
	"sync"
)

// Func is a custom veiling function for a scalar-series sensor. It receives
// the trusted samples, a strength scalar and the generator for its stream,
// and returns the veiled samples (same length).
type Func func(data []float64, strength float64, rng *mrand.Rand) ([]float64, error)

// Registry maps sensor names to custom veiling functions, letting callers
// plug in modalities the engine does not ship. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// ErrNotRegistered is returned by Lookup for unknown sensor names.
var ErrNotRegistered = errors.New("veil: sensor not registered")

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register binds a veiling function to a sensor name. Names are trimmed;
// empty names and nil functions are rejected.
func (r *Registry) Register(name string, fn Func) error {
	key := strings.TrimSpace(name)
	if key == "" {
		return fmt.Errorf("veil: sensor name must be non-empty")
	}
	if fn == nil {
		return fmt.Errorf("veil: nil function for sensor %q", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[key] = fn
	return nil
}

// Lookup returns the function registered under name.
func (r *Registry) Lookup(name string) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	return fn, nil
}

// Sensors lists registered sensor names, sorted.
func (r *Registry) Sensors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
