// ABOUTME: Registry of settings schemas participating in a migration
// ABOUTME: Preserves registration order so copies run deterministically
package settings

import "fmt"

// Registry holds schemas by name in registration order
type Registry struct {
	schemas []Schema
	index   map[string]int
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// DefaultRegistry returns a registry holding CoreSchema and ViewSchema
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(CoreSchema)
	_ = r.Register(ViewSchema)
	return r
}

// Register adds a schema; names must be unique
func (r *Registry) Register(s Schema) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, ok := r.index[s.Name]; ok {
		return fmt.Errorf("schema %s already registered", s.Name)
	}
	r.index[s.Name] = len(r.schemas)
	r.schemas = append(r.schemas, s)
	return nil
}

// Lookup returns the schema registered under name
func (r *Registry) Lookup(name string) (Schema, bool) {
	i, ok := r.index[name]
	if !ok {
		return Schema{}, false
	}
	return r.schemas[i], true
}

// All returns the registered schemas in registration order
func (r *Registry) All() []Schema {
	out := make([]Schema, len(r.schemas))
	copy(out, r.schemas)
	return out
}
