/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/record"
	"github.com/suparena/shapestore/resolver"
	"github.com/suparena/shapestore/schema"
	"github.com/suparena/shapestore/wire"
)

// Registry maps entity kinds to their schemas and tables to their index
// catalogs. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	models  map[string][]*schema.Schema
	indexes map[string][]schema.IndexDescriptor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		models:  make(map[string][]*schema.Schema),
		indexes: make(map[string][]schema.IndexDescriptor),
	}
}

// Default is the process-wide registry used by the package-level functions.
var Default = New()

// RegisterModel registers the schemas of an entity kind. Registering a kind
// twice is an error.
func (r *Registry) RegisterModel(kind string, schemas ...*schema.Schema) error {
	if len(schemas) == 0 {
		return fmt.Errorf("model registry: kind %q needs at least one schema", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.models[kind]; exists {
		return fmt.Errorf("model registry: kind %q already registered", kind)
	}
	r.models[kind] = append([]*schema.Schema(nil), schemas...)
	return nil
}

// Schemas returns the schemas registered for kind.
func (r *Registry) Schemas(kind string) ([]*schema.Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemas, ok := r.models[kind]
	if !ok {
		return nil, fmt.Errorf("model registry: no model registered for kind %q", kind)
	}
	return append([]*schema.Schema(nil), schemas...), nil
}

// Kinds returns the registered kinds in order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.models))
	for k := range r.models {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Decode materializes a stored item of kind with the schema that fits it best.
func (r *Registry) Decode(kind string, item wire.Item) (*record.Record, error) {
	schemas, err := r.Schemas(kind)
	if err != nil {
		return nil, err
	}
	values, err := wire.UnmarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("model registry: failed to read %s item: %w", kind, err)
	}
	best := resolver.BestSchema(schemas, values, attrtype.FromWire)
	return record.FromItem(schemas[best], item)
}

// RegisterModel registers kind in the Default registry.
func RegisterModel(kind string, schemas ...*schema.Schema) error {
	return Default.RegisterModel(kind, schemas...)
}

// Schemas looks kind up in the Default registry.
func Schemas(kind string) ([]*schema.Schema, error) {
	return Default.Schemas(kind)
}
