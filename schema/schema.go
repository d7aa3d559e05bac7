/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/errors"
)

// Timestamps names the attributes stamped on create and update. Empty names
// are not stamped.
type Timestamps struct {
	CreatedAt string
	UpdatedAt string
}

// Settings are schema-wide options.
type Settings struct {
	Timestamps Timestamps
	// SaveUnknown lists undeclared paths that survive pruning. "*" matches
	// one path segment and "**" any number of segments.
	SaveUnknown []string
	// SaveUnknownAll keeps every undeclared path.
	SaveUnknownAll bool
}

// Option configures a Schema.
type Option func(*Settings)

// WithTimestamps declares Date attributes stamped on create and update.
func WithTimestamps(createdAt, updatedAt string) Option {
	return func(s *Settings) {
		s.Timestamps = Timestamps{CreatedAt: createdAt, UpdatedAt: updatedAt}
	}
}

// WithSaveUnknown allows undeclared paths matching patterns.
func WithSaveUnknown(patterns ...string) Option {
	return func(s *Settings) {
		if len(patterns) == 0 {
			s.SaveUnknownAll = true
			return
		}
		s.SaveUnknown = append(s.SaveUnknown, patterns...)
	}
}

// WithSettings replaces all settings.
func WithSettings(settings Settings) Option {
	return func(s *Settings) {
		*s = settings
	}
}

// Candidate is one resolved candidate type of an attribute.
type Candidate struct {
	Descriptor *attrtype.Descriptor
	// Schema is the nested declaration of a Map candidate.
	Schema map[string]*Attribute
	// Element is the element declaration of a List candidate.
	Element *Attribute
}

// Attribute is a normalized attribute declaration. It is immutable once the
// schema is built.
type Attribute struct {
	Name         string
	Candidates   []Candidate
	Default      any
	ForceDefault bool
	Required     bool
	Enum         []any
	Get          ModifierFunc
	Set          ModifierFunc
	HashKey      bool
	RangeKey     bool

	validate  any
	indexDefs []IndexDefinition
}

// Descriptors returns the candidate descriptors in declaration order.
func (a *Attribute) Descriptors() []*attrtype.Descriptor {
	out := make([]*attrtype.Descriptor, len(a.Candidates))
	for i, c := range a.Candidates {
		out[i] = c.Descriptor
	}
	return out
}

// TypeNames returns the display names of the candidate types.
func (a *Attribute) TypeNames() []string {
	out := make([]string, len(a.Candidates))
	for i, c := range a.Candidates {
		out[i] = c.Descriptor.DisplayName()
	}
	return out
}

// HasValidator reports whether a validator is declared.
func (a *Attribute) HasValidator() bool {
	return a.validate != nil
}

// Valid applies the declared validator. Attributes without one accept everything.
func (a *Attribute) Valid(v any) bool {
	switch fn := a.validate.(type) {
	case nil:
		return true
	case *regexp.Regexp:
		s, ok := v.(string)
		return ok && fn.MatchString(s)
	case func(any) bool:
		return fn(v)
	default:
		return attrtype.Equal(v, fn)
	}
}

// HasDefault reports whether a default is declared.
func (a *Attribute) HasDefault() bool {
	return a.Default != nil
}

// DefaultValue computes the default, calling the provider if one is declared.
func (a *Attribute) DefaultValue() any {
	if fn, ok := a.Default.(func() any); ok {
		return fn()
	}
	return a.Default
}

// Combine returns the combine descriptor when the attribute is a combine
// attribute.
func (a *Attribute) Combine() (*attrtype.Descriptor, bool) {
	for _, c := range a.Candidates {
		if c.Descriptor.Name == attrtype.Combine {
			return c.Descriptor, true
		}
	}
	return nil, false
}

// Schema is the normalized declaration tree of one entity shape. It is
// immutable after New and safe for concurrent use.
type Schema struct {
	attrs    map[string]*Attribute
	settings Settings
	hashKey  string
	rangeKey string
	indexes  []IndexDescriptor
}

// New builds and validates a schema from its declaration.
func New(def Definition, opts ...Option) (*Schema, error) {
	s := &Schema{}
	for _, opt := range opts {
		opt(&s.settings)
	}
	def = s.withTimestamps(def)

	attrs, err := s.build(def, "", 0)
	if err != nil {
		return nil, err
	}
	s.attrs = attrs

	if err := s.resolveKeys(); err != nil {
		return nil, err
	}
	if err := s.checkCombines(); err != nil {
		return nil, err
	}
	if err := s.buildIndexes(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNew is New for package-level schemas; it panics on a declaration error.
func MustNew(def Definition, opts ...Option) *Schema {
	s, err := New(def, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) withTimestamps(def Definition) Definition {
	ts := s.settings.Timestamps
	if ts.CreatedAt == "" && ts.UpdatedAt == "" {
		return def
	}
	out := make(Definition, len(def)+2)
	for k, v := range def {
		out[k] = v
	}
	for _, name := range []string{ts.CreatedAt, ts.UpdatedAt} {
		if _, declared := out[name]; name != "" && !declared {
			out[name] = Of(T(attrtype.Date))
		}
	}
	return out
}

func (s *Schema) build(def Definition, prefix string, depth int) (map[string]*Attribute, error) {
	out := make(map[string]*Attribute, len(def))
	for _, name := range sortedKeys(def) {
		path := join(prefix, name)
		if name == "" {
			return nil, errors.NewSchemaDeclarationError(prefix, "attribute names must not be empty")
		}
		if strings.Contains(name, ".") {
			return nil, errors.NewSchemaDeclarationError(path, "attribute names must not contain '.'")
		}
		a, err := s.buildAttribute(path, name, def[name], depth)
		if err != nil {
			return nil, err
		}
		out[name] = a
	}
	return out, nil
}

func (s *Schema) buildAttribute(path, name string, d AttributeDefinition, depth int) (*Attribute, error) {
	if (d.HashKey || d.RangeKey || len(d.Index) > 0) && depth > 0 {
		return nil, errors.NewSchemaDeclarationError(path, "keys and indexes may only be declared on root attributes")
	}
	if d.HashKey && d.RangeKey {
		return nil, errors.NewSchemaDeclarationError(path, "an attribute cannot be both hash key and range key")
	}

	specs := d.Type
	if len(specs) == 0 {
		switch {
		case d.Schema != nil:
			specs = []TypeSpec{T(attrtype.Map)}
		case len(d.Elements) > 0:
			specs = []TypeSpec{T(attrtype.List)}
		default:
			return nil, errors.NewSchemaDeclarationError(path, "no type declared")
		}
	}

	validate, err := compileValidator(d.Validate)
	if err != nil {
		return nil, errors.NewSchemaDeclarationError(path, "%v", err)
	}

	a := &Attribute{
		Name:         name,
		Default:      d.Default,
		ForceDefault: d.ForceDefault,
		Required:     d.Required,
		Enum:         d.Enum,
		Get:          d.Get,
		Set:          d.Set,
		HashKey:      d.HashKey,
		RangeKey:     d.RangeKey,
		validate:     validate,
		indexDefs:    d.Index,
	}
	for _, ts := range specs {
		c, err := s.buildCandidate(path, ts, d, depth)
		if err != nil {
			return nil, err
		}
		a.Candidates = append(a.Candidates, c)
	}
	return a, nil
}

func (s *Schema) buildCandidate(path string, ts TypeSpec, d AttributeDefinition, depth int) (Candidate, error) {
	desc, err := attrtype.Describe(ts.Spec)
	if err != nil {
		return Candidate{}, errors.NewSchemaDeclarationError(path, "%v", err)
	}
	c := Candidate{Descriptor: desc}
	switch desc.Name {
	case attrtype.Map:
		nested := ts.Schema
		if nested == nil {
			nested = d.Schema
		}
		if nested != nil {
			if c.Schema, err = s.build(nested, path, depth+1); err != nil {
				return Candidate{}, err
			}
		}
	case attrtype.List:
		elements := ts.Elements
		if elements == nil {
			elements = d.Elements
		}
		switch len(elements) {
		case 0:
		case 1:
			if c.Element, err = s.buildAttribute(path+".0", "", elements[0], depth+1); err != nil {
				return Candidate{}, err
			}
		default:
			return Candidate{}, errors.NewSchemaDeclarationError(path,
				"list attributes declare exactly one element schema, got %d", len(elements))
		}
	}
	return c, nil
}

func compileValidator(v any) (any, error) {
	switch fn := v.(type) {
	case nil, *regexp.Regexp, func(any) bool:
		return fn, nil
	case func(string) bool:
		return func(x any) bool {
			s, ok := x.(string)
			return ok && fn(s)
		}, nil
	}
	if k := reflect.TypeOf(v).Kind(); k == reflect.Func {
		return nil, fmt.Errorf("unsupported validator signature %T", v)
	}
	return v, nil
}

func (s *Schema) resolveKeys() error {
	for _, name := range sortedKeys(s.attrs) {
		a := s.attrs[name]
		if a.HashKey {
			if s.hashKey != "" {
				return errors.NewSchemaDeclarationError(name, "hash key already declared on %q", s.hashKey)
			}
			s.hashKey = name
		}
		if a.RangeKey {
			if s.rangeKey != "" {
				return errors.NewSchemaDeclarationError(name, "range key already declared on %q", s.rangeKey)
			}
			s.rangeKey = name
		}
	}
	if s.hashKey == "" {
		return errors.NewSchemaDeclarationError("", "no hash key declared")
	}
	return nil
}

func (s *Schema) checkCombines() error {
	var err error
	s.each(s.attrs, "", func(path string, a *Attribute) bool {
		d, ok := a.Combine()
		if !ok {
			return true
		}
		for _, src := range d.Settings.Attributes {
			if s.Attribute(src) == nil {
				err = errors.NewSchemaDeclarationError(path, "combine source %q is not declared", src)
				return false
			}
		}
		return true
	})
	return err
}

// each visits every declared attribute, parents first, until fn returns false.
func (s *Schema) each(attrs map[string]*Attribute, prefix string, fn func(path string, a *Attribute) bool) bool {
	for _, name := range sortedKeys(attrs) {
		a := attrs[name]
		path := join(prefix, name)
		if !fn(path, a) {
			return false
		}
		for _, c := range a.Candidates {
			if c.Schema != nil && !s.each(c.Schema, path, fn) {
				return false
			}
			if c.Element != nil {
				if !fn(path+".0", c.Element) {
					return false
				}
				for _, ec := range c.Element.Candidates {
					if ec.Schema != nil && !s.each(ec.Schema, path+".0", fn) {
						return false
					}
				}
			}
		}
	}
	return true
}

// Walk visits every declared attribute with its generic path; list elements
// appear under index 0.
func (s *Schema) Walk(fn func(path string, a *Attribute)) {
	s.each(s.attrs, "", func(path string, a *Attribute) bool {
		fn(path, a)
		return true
	})
}

// HashKey is the name of the hash key attribute.
func (s *Schema) HashKey() string { return s.hashKey }

// RangeKey is the name of the range key attribute, or "".
func (s *Schema) RangeKey() string { return s.rangeKey }

// HashKeyType is the first declared type of the hash key.
func (s *Schema) HashKeyType() attrtype.Name {
	return s.attrs[s.hashKey].Candidates[0].Descriptor.Name
}

// Settings returns the schema-wide settings.
func (s *Schema) Settings() Settings { return s.settings }

// TopLevel returns the root attribute names in sorted order.
func (s *Schema) TopLevel() []string {
	return sortedKeys(s.attrs)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
