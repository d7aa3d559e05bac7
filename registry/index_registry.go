/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sort"

	"github.com/suparena/shapestore/schema"
)

// RegisterIndexes merges the index catalogs of schemas into the catalog of
// table. Every schema sharing a table must agree on its primary key and on
// any secondary index they both declare.
func (r *Registry) RegisterIndexes(table string, schemas ...*schema.Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog := append([]schema.IndexDescriptor(nil), r.indexes[table]...)
	for _, s := range schemas {
		for _, idx := range s.Indexes() {
			merged, err := mergeIndex(table, catalog, idx)
			if err != nil {
				return err
			}
			catalog = merged
		}
	}
	sort.SliceStable(catalog, func(i, j int) bool {
		if catalog[i].IsTableIndex != catalog[j].IsTableIndex {
			return catalog[i].IsTableIndex
		}
		return catalog[i].Name < catalog[j].Name
	})
	r.indexes[table] = catalog
	return nil
}

func mergeIndex(table string, catalog []schema.IndexDescriptor, idx schema.IndexDescriptor) ([]schema.IndexDescriptor, error) {
	for _, existing := range catalog {
		if existing.IsTableIndex != idx.IsTableIndex || existing.Name != idx.Name {
			continue
		}
		if existing.HashKey != idx.HashKey || existing.RangeKey != idx.RangeKey || existing.Global != idx.Global {
			return nil, fmt.Errorf("index registry: table %q declares %s as %s but a schema declares it as %s",
				table, indexLabel(idx), keyLabel(existing), keyLabel(idx))
		}
		return catalog, nil
	}
	return append(catalog, idx), nil
}

func indexLabel(idx schema.IndexDescriptor) string {
	if idx.IsTableIndex {
		return "the primary key"
	}
	return "index " + idx.Name
}

func keyLabel(idx schema.IndexDescriptor) string {
	if idx.RangeKey == "" {
		return "(" + idx.HashKey + ")"
	}
	return "(" + idx.HashKey + ", " + idx.RangeKey + ")"
}

// Indexes returns the index catalog of table, the table index first.
func (r *Registry) Indexes(table string) ([]schema.IndexDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	catalog, ok := r.indexes[table]
	if !ok {
		return nil, false
	}
	return append([]schema.IndexDescriptor(nil), catalog...), true
}

// RegisterIndexes merges schemas into the catalog of table in the Default registry.
func RegisterIndexes(table string, schemas ...*schema.Schema) error {
	return Default.RegisterIndexes(table, schemas...)
}

// Indexes looks the catalog of table up in the Default registry.
func Indexes(table string) ([]schema.IndexDescriptor, bool) {
	return Default.Indexes(table)
}
