/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package record

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/marshal"
	"github.com/suparena/shapestore/schema"
	"github.com/suparena/shapestore/wire"
)

// Source is where a record's values came from.
type Source int

const (
	// SourceLocal records were built by the caller and are pending.
	SourceLocal Source = iota
	// SourceStore records were materialized from a stored item.
	SourceStore
)

func (s Source) String() string {
	if s == SourceStore {
		return "store"
	}
	return "local"
}

// Record is one entity instance. It is not safe for concurrent mutation.
type Record struct {
	schema    *schema.Schema
	values    map[string]any
	original  map[string]any
	source    Source
	persisted bool
}

// New builds a record from input, which may be a map[string]any, a wire
// item, a JSON-shaped wire item or an attrtype.Valuer. Wire input is decoded
// with marshal.LoadOptions and marks the record as persisted.
func New(s *schema.Schema, input any) (*Record, error) {
	switch v := input.(type) {
	case map[string]types.AttributeValue:
		return FromItem(s, v)
	case map[string]any:
		if wire.IsJSONShaped(v) {
			item, err := wire.FromJSON(v)
			if err != nil {
				return nil, fmt.Errorf("failed to read wire item: %w", err)
			}
			return FromItem(s, item)
		}
		return newRecord(s, v, SourceLocal), nil
	case attrtype.Valuer:
		return newRecord(s, v.Values(), SourceLocal), nil
	case nil:
		return newRecord(s, nil, SourceLocal), nil
	}
	return nil, fmt.Errorf("unsupported record input %T", input)
}

// FromItem decodes a stored item into a persisted record.
func FromItem(s *schema.Schema, item wire.Item) (*Record, error) {
	values, err := marshal.FromItem(s, item, marshal.LoadOptions())
	if err != nil {
		return nil, err
	}
	r := newRecord(s, values, SourceStore)
	r.persisted = true
	return r, nil
}

func newRecord(s *schema.Schema, values map[string]any, source Source) *Record {
	v := marshal.Clone(values)
	return &Record{
		schema:   s,
		values:   v,
		original: marshal.Clone(v),
		source:   source,
	}
}

// Schema returns the schema the record was built against.
func (r *Record) Schema() *schema.Schema { return r.schema }

// Values returns the live value map. Mutations are visible to the record.
func (r *Record) Values() map[string]any { return r.values }

// Original returns a copy of the snapshot taken at construction.
func (r *Record) Original() map[string]any { return marshal.Clone(r.original) }

// Source reports where the record came from.
func (r *Record) Source() Source { return r.source }

// Persisted reports whether the record is known to be stored.
func (r *Record) Persisted() bool { return r.persisted }

// MarkPersisted flags the record as stored.
func (r *Record) MarkPersisted() { r.persisted = true }

// Get returns the value at a dotted path.
func (r *Record) Get(path string) (any, bool) {
	return marshal.Lookup(r.values, path)
}

// Set writes a value at a dotted path.
func (r *Record) Set(path string, v any) {
	marshal.Assign(r.values, path, v)
}

// Conform replaces the record's values in place with projection; keys absent
// from projection are dropped.
func (r *Record) Conform(projection map[string]any) {
	for k := range r.values {
		if _, ok := projection[k]; !ok {
			delete(r.values, k)
		}
	}
	for k, v := range projection {
		r.values[k] = v
	}
}

// Key returns the hash and range key values present on the record.
func (r *Record) Key() map[string]any {
	return KeyOf(r.schema, r.values)
}

// KeyOf extracts the hash and range key values of values.
func KeyOf(s *schema.Schema, values map[string]any) map[string]any {
	key := make(map[string]any, 2)
	if v, ok := values[s.HashKey()]; ok {
		key[s.HashKey()] = v
	}
	if rk := s.RangeKey(); rk != "" {
		if v, ok := values[rk]; ok {
			key[rk] = v
		}
	}
	return key
}

// Transform runs the marshal passes over the record's values, handing the
// original snapshot to modifiers.
func (r *Record) Transform(opts marshal.Options) (map[string]any, error) {
	opts.Original = r.original
	return marshal.Transform(r.schema, r.values, opts)
}

// Item transforms the record for saving and encodes it as a wire item.
func (r *Record) Item() (wire.Item, error) {
	out, err := r.Transform(marshal.SaveOptions())
	if err != nil {
		return nil, err
	}
	return wire.MarshalMap(out)
}
