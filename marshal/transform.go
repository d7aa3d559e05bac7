/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package marshal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/errors"
	"github.com/suparena/shapestore/resolver"
	"github.com/suparena/shapestore/schema"
	"github.com/suparena/shapestore/wire"
)

type transformer struct {
	schema   *schema.Schema
	opts     Options
	resolver *resolver.Resolver
	out      map[string]any
	choices  map[string]int
	// scope limits the required pass to paths below it.
	scope string
}

// Transform runs the enabled passes over a copy of values. values itself is
// never modified and no partial record is returned on error.
func Transform(s *schema.Schema, values map[string]any, opts Options) (map[string]any, error) {
	return transform(s, values, opts, "")
}

func transform(s *schema.Schema, values map[string]any, opts Options, scope string) (map[string]any, error) {
	t := &transformer{
		schema:   s,
		opts:     opts,
		resolver: opts.resolver(),
		out:      Clone(values),
		scope:    scope,
	}
	passes := []struct {
		enabled bool
		run     func() error
	}{
		{opts.TypeCheck, t.prune},
		{opts.Defaults || opts.ForceDefaults, t.defaults},
		{opts.CustomTypes, t.convert},
		{opts.Encode, t.encode},
		{opts.Combine, t.combine},
		{opts.Modifiers != ModifiersNone, t.modify},
		{opts.Validate, t.validate},
		{opts.Required != RequiredOff, t.required},
		{opts.Enum, t.enum},
	}
	for _, p := range passes {
		if !p.enabled {
			continue
		}
		t.refresh()
		if err := p.run(); err != nil {
			return nil, err
		}
	}
	t.dropOmitted(t.out)
	return t.out, nil
}

// ToItem transforms values toward the store and encodes the wire item.
func ToItem(s *schema.Schema, values map[string]any, opts Options) (wire.Item, error) {
	opts.Direction = attrtype.ToWire
	out, err := Transform(s, values, opts)
	if err != nil {
		return nil, err
	}
	return wire.MarshalMap(out)
}

// FromItem decodes a wire item and transforms it out of the store.
func FromItem(s *schema.Schema, item wire.Item, opts Options) (map[string]any, error) {
	opts.Direction = attrtype.FromWire
	values, err := wire.UnmarshalMap(item)
	if err != nil {
		return nil, err
	}
	return Transform(s, values, opts)
}

func (t *transformer) refresh() {
	t.choices = t.resolver.TypePaths(t.schema, t.out, t.opts.Direction)
}

func (t *transformer) resolve(path string, v any) resolver.Result {
	a := t.schema.AttributeFor(path, t.choices)
	if a == nil {
		return resolver.Result{Matched: -1}
	}
	return t.resolver.ResolveAttribute(a, v, t.opts.Direction)
}

// prune type-checks declared paths and deletes undeclared ones.
func (t *transformer) prune() error {
	return t.pruneMap(t.out, "")
}

func (t *transformer) pruneMap(m map[string]any, prefix string) error {
	for _, k := range sortedKeys(m) {
		path := join(prefix, k)
		v := m[k]
		if attrtype.IsOmit(v) {
			continue
		}
		a := t.schema.AttributeFor(path, t.choices)
		if a == nil {
			if !t.schema.AllowsUnknown(path) {
				delete(m, k)
				continue
			}
			if err := t.pruneUnknown(v, path); err != nil {
				return err
			}
			continue
		}
		res := t.resolver.ResolveAttribute(a, v, t.opts.Direction)
		if !res.Valid {
			return errors.NewTypeMismatchError(path, a.TypeNames(), attrtype.KindOf(v))
		}
		t.choices[path] = res.Matched
		c, _ := res.Candidate()
		if err := t.pruneCandidate(c, v, path); err != nil {
			return err
		}
	}
	return nil
}

// pruneUnknown descends into an allowed undeclared value so its own children
// are checked against the save-unknown patterns.
func (t *transformer) pruneUnknown(v any, path string) error {
	switch c := v.(type) {
	case map[string]any:
		return t.pruneMap(c, path)
	case []any:
		for i, e := range c {
			if err := t.pruneUnknown(e, path+"."+strconv.Itoa(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *transformer) pruneCandidate(c schema.Candidate, v any, path string) error {
	switch c.Descriptor.Name {
	case attrtype.Map:
		if c.Schema == nil {
			return nil
		}
		return t.pruneMap(v.(map[string]any), path)
	case attrtype.List:
		if c.Element == nil {
			return nil
		}
		return t.pruneList(c.Element, v.([]any), path)
	}
	return nil
}

// pruneList checks the first element and any element whose kind differs
// from the first; elements of an already checked kind reuse its candidate.
func (t *transformer) pruneList(element *schema.Attribute, list []any, path string) error {
	checked := make(map[string]schema.Candidate)
	for i, e := range list {
		p := path + "." + strconv.Itoa(i)
		kind := attrtype.KindOf(e)
		c, seen := checked[kind]
		if !seen {
			res := t.resolver.ResolveAttribute(element, e, t.opts.Direction)
			if !res.Valid {
				return errors.NewTypeMismatchError(p, element.TypeNames(), kind)
			}
			t.choices[p] = res.Matched
			c, _ = res.Candidate()
			checked[kind] = c
		}
		if err := t.pruneCandidate(c, e, p); err != nil {
			return err
		}
	}
	return nil
}

// defaults writes defaults for absent paths and forced defaults everywhere.
func (t *transformer) defaults() error {
	for _, path := range t.schema.Attributes(t.out, t.choices) {
		if schema.IsIndex(lastSegment(path)) {
			continue
		}
		a := t.schema.AttributeFor(path, t.choices)
		if a == nil || !a.HasDefault() {
			continue
		}
		if !t.opts.Defaults && !a.ForceDefault {
			continue
		}
		if !t.parentPresent(path) {
			continue
		}
		cur, present := Lookup(t.out, path)
		if attrtype.IsOmit(cur) {
			continue
		}
		if present && cur != nil && !a.ForceDefault {
			continue
		}
		dv := attrtype.Normalize(a.DefaultValue())
		if attrtype.IsEmpty(dv) {
			continue
		}
		if !t.resolver.ResolveAttribute(a, dv, t.opts.Direction).Valid {
			return errors.NewTypeMismatchError(path, a.TypeNames(), attrtype.KindOf(dv))
		}
		Assign(t.out, path, dv)
	}
	return nil
}

// convert applies custom type converters to values not yet in target form.
func (t *transformer) convert() error {
	for _, path := range Present(t.out) {
		v, ok := Lookup(t.out, path)
		if !ok || attrtype.IsOmit(v) {
			continue
		}
		res := t.resolve(path, v)
		d := res.Descriptor()
		if d == nil || d.Converter == nil {
			continue
		}
		fn := d.Converter.ToWire
		form := d.Match(v)
		if t.opts.Direction == attrtype.ToWire {
			if form == attrtype.FormUnderlying {
				continue
			}
		} else {
			if form == attrtype.FormMain {
				continue
			}
			fn = d.Converter.FromWire
		}
		converted, err := fn(v)
		if err != nil {
			return errors.NewTypeMismatchError(path, res.Attribute.TypeNames(), attrtype.KindOf(v))
		}
		Assign(t.out, path, converted)
	}
	return nil
}

// encode applies the resolved type's wire encode or decode function.
func (t *transformer) encode() error {
	for _, path := range Present(t.out) {
		v, ok := Lookup(t.out, path)
		if !ok || attrtype.IsOmit(v) {
			continue
		}
		d := t.resolve(path, v).Descriptor()
		if d == nil {
			continue
		}
		fn := d.Encode
		if t.opts.Direction == attrtype.FromWire {
			fn = d.Decode
		}
		if fn == nil {
			continue
		}
		encoded, err := fn(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", path, err)
		}
		Assign(t.out, path, encoded)
	}
	return nil
}

// combine writes every combine attribute from its source attributes.
func (t *transformer) combine() error {
	for _, path := range t.schema.Attributes(t.out, t.choices) {
		a := t.schema.AttributeFor(path, t.choices)
		if a == nil {
			continue
		}
		d, ok := a.Combine()
		if !ok || !t.parentPresent(path) {
			continue
		}
		if joined, ok := Join(t.out, d); ok {
			Assign(t.out, path, joined)
		}
	}
	return nil
}

// Join concatenates the non-empty source values of a combine descriptor.
func Join(values map[string]any, d *attrtype.Descriptor) (string, bool) {
	parts := make([]string, 0, len(d.Settings.Attributes))
	for _, src := range d.Settings.Attributes {
		v, ok := Lookup(values, src)
		if !ok || attrtype.IsEmpty(v) {
			continue
		}
		parts = append(parts, stringify(v))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, d.Settings.Separator), true
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	}
	if attrtype.IsNumber(v) {
		return attrtype.FormatNumber(v)
	}
	return fmt.Sprint(v)
}

// modify applies get or set modifiers to present values.
func (t *transformer) modify() error {
	for _, path := range t.schema.Attributes(t.out, t.choices) {
		a := t.schema.AttributeFor(path, t.choices)
		if a == nil {
			continue
		}
		fn := a.Set
		if t.opts.Modifiers == ModifiersGet {
			fn = a.Get
		}
		if fn == nil {
			continue
		}
		v, ok := Lookup(t.out, path)
		if !ok || attrtype.IsOmit(v) {
			continue
		}
		previous, _ := Lookup(t.opts.Original, path)
		Assign(t.out, path, fn(v, previous))
	}
	return nil
}

func (t *transformer) validate() error {
	for _, path := range t.schema.Attributes(t.out, t.choices) {
		a := t.schema.AttributeFor(path, t.choices)
		if a == nil || !a.HasValidator() {
			continue
		}
		v, ok := Lookup(t.out, path)
		if !ok || attrtype.IsOmit(v) {
			continue
		}
		if !a.Valid(v) {
			return errors.NewCheckError(errors.KindValidator, path,
				fmt.Sprintf("%s with a value of %s had a validation error when trying to save the document", path, display(v)))
		}
	}
	return nil
}

func (t *transformer) required() error {
	for _, path := range t.schema.Attributes(t.out, t.choices) {
		if t.opts.Required == RequiredNested && !strings.Contains(path, ".") {
			continue
		}
		if t.scope != "" && !strings.HasPrefix(path, t.scope+".") {
			continue
		}
		a := t.schema.AttributeFor(path, t.choices)
		if a == nil || !a.Required || !t.parentPresent(path) {
			continue
		}
		v, ok := Lookup(t.out, path)
		if !ok || v == nil || attrtype.IsOmit(v) {
			return errors.NewCheckError(errors.KindRequired, path,
				fmt.Sprintf("%s is a required property but has no value when trying to save document", path))
		}
	}
	return nil
}

func (t *transformer) enum() error {
	for _, path := range t.schema.Attributes(t.out, t.choices) {
		a := t.schema.AttributeFor(path, t.choices)
		if a == nil || len(a.Enum) == 0 {
			continue
		}
		v, ok := Lookup(t.out, path)
		if !ok || attrtype.IsOmit(v) {
			continue
		}
		if !InEnum(a.Enum, v) {
			allowed := make([]string, len(a.Enum))
			for i, e := range a.Enum {
				allowed[i] = display(e)
			}
			return errors.NewCheckError(errors.KindEnum, path,
				fmt.Sprintf("%s must equal [%s], but is set to %s", path, strings.Join(allowed, ", "), display(v)))
		}
	}
	return nil
}

// InEnum reports whether v is one of allowed.
func InEnum(allowed []any, v any) bool {
	for _, e := range allowed {
		if attrtype.Equal(e, v) {
			return true
		}
	}
	return false
}

func display(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return stringify(v)
}

func (t *transformer) parentPresent(path string) bool {
	parent := schema.Parent(path)
	if parent == "" {
		return true
	}
	v, ok := Lookup(t.out, parent)
	return ok && v != nil && !attrtype.IsOmit(v)
}

func (t *transformer) dropOmitted(m map[string]any) {
	for k, v := range m {
		switch c := v.(type) {
		case map[string]any:
			t.dropOmitted(c)
		default:
			if attrtype.IsOmit(c) {
				delete(m, k)
			}
		}
	}
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
