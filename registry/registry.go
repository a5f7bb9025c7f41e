// Package registry holds the schemas the language service answers against,
// keyed by name. Transports share one registry.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Protocol-Lattice/gqlls/schema"
)

// DefaultName is the name a schema is registered under when none is given.
const DefaultName = "default"

// ErrNotFound is returned when no schema is registered under a name.
var ErrNotFound = errors.New("registry: schema not found")

// Registry is a concurrency-safe set of named schemas.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*schema.Schema
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{schemas: make(map[string]*schema.Schema)}
}

// Global registry instance used by the package level helpers.
var global = New()

// Register stores s under name, replacing any schema already there.
func (r *Registry) Register(name string, s *schema.Schema) {
	if name == "" {
		name = DefaultName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[name] = s
}

// Load reads a schema file and registers it under name.
func (r *Registry) Load(name, path string) error {
	s, err := schema.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load schema %q: %w", name, err)
	}
	r.Register(name, s)
	return nil
}

// Lookup returns the schema registered under name. An empty name means
// DefaultName.
func (r *Registry) Lookup(name string) (*schema.Schema, error) {
	if name == "" {
		name = DefaultName
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return s, nil
}

// Default returns the default schema, or nil if none is registered.
func (r *Registry) Default() *schema.Schema {
	s, _ := r.Lookup(DefaultName)
	return s
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register stores a schema in the global registry.
func Register(name string, s *schema.Schema) {
	global.Register(name, s)
}

// Lookup finds a schema in the global registry.
func Lookup(name string) (*schema.Schema, error) {
	return global.Lookup(name)
}

// Global returns the global registry.
// This allows the handler package to serve the registered schemas.
func Global() *Registry {
	return global
}
