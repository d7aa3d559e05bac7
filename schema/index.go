/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import "github.com/suparena/shapestore/errors"

// IndexDescriptor describes the table index or one secondary index.
type IndexDescriptor struct {
	Name         string
	IsTableIndex bool
	Global       bool
	HashKey      string
	RangeKey     string
	// Projection lists projected attributes; nil projects everything.
	Projection []string
}

// Indexes returns the table index followed by the declared secondary
// indexes, ordered by attribute name then declaration order.
func (s *Schema) Indexes() []IndexDescriptor {
	out := make([]IndexDescriptor, len(s.indexes))
	copy(out, s.indexes)
	return out
}

// Index returns the secondary index named name.
func (s *Schema) Index(name string) (IndexDescriptor, bool) {
	for _, idx := range s.indexes {
		if !idx.IsTableIndex && idx.Name == name {
			return idx, true
		}
	}
	return IndexDescriptor{}, false
}

func (s *Schema) buildIndexes() error {
	s.indexes = []IndexDescriptor{{IsTableIndex: true, Global: true, HashKey: s.hashKey, RangeKey: s.rangeKey}}
	names := make(map[string]string)
	for _, attr := range sortedKeys(s.attrs) {
		for _, def := range s.attrs[attr].indexDefs {
			idx := IndexDescriptor{Name: def.Name, Global: !def.Local, Projection: def.Projection}
			if def.Local {
				if def.RangeKey != "" {
					return errors.NewSchemaDeclarationError(attr, "local index range key is the indexed attribute itself")
				}
				idx.HashKey = s.hashKey
				idx.RangeKey = attr
				if idx.Name == "" {
					idx.Name = attr + "LocalIndex"
				}
			} else {
				idx.HashKey = attr
				idx.RangeKey = def.RangeKey
				if idx.Name == "" {
					idx.Name = attr + "GlobalIndex"
				}
			}
			if idx.RangeKey != "" && s.attrs[idx.RangeKey] == nil {
				return errors.NewSchemaDeclarationError(attr, "index %q range key %q is not declared", idx.Name, idx.RangeKey)
			}
			if other, dup := names[idx.Name]; dup {
				return errors.NewSchemaDeclarationError(attr, "index name %q already used by %q", idx.Name, other)
			}
			names[idx.Name] = attr
			s.indexes = append(s.indexes, idx)
		}
	}
	return nil
}
