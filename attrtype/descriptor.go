/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attrtype

import (
	"fmt"
	"strings"
)

// Form tells which representation of a type a value is in.
type Form int

const (
	// FormNone means the value is not of the type.
	FormNone Form = iota
	// FormMain is the in-memory representation (a time.Time for dates).
	FormMain
	// FormUnderlying is the stored representation (epoch number for dates).
	FormUnderlying
)

// Converter is a bidirectional conversion between the main and underlying
// forms of a custom type.
type Converter struct {
	ToWire   func(v any) (any, error)
	FromWire func(v any) (any, error)
}

// Descriptor is the resolved, parameterized description of one type.
type Descriptor struct {
	Name        Name
	WireTags    []string
	IsSet       bool
	IsAggregate bool
	Custom      bool
	Settings    Settings

	// Element describes set members.
	Element *Descriptor

	// Match classifies v against this type.
	Match func(v any) Form

	// Converter is set for custom types whose stored form differs from the
	// in-memory form.
	Converter *Converter

	// Encode and Decode run in the wire encode/decode pass.
	Encode func(v any) (any, error)
	Decode func(v any) (any, error)

	// strictDecode rejects the main form when decoding from the store.
	strictDecode bool
}

// Is reports whether v is a member of the type for the given direction.
func (d *Descriptor) Is(v any, dir Direction) bool {
	form := d.Match(v)
	if form == FormNone {
		return false
	}
	if dir == FromWire && d.strictDecode && form == FormMain {
		return false
	}
	return true
}

// DisplayName is the name used in error messages.
func (d *Descriptor) DisplayName() string {
	if d.Name == Constant {
		return fmt.Sprintf("%s (%v)", d.Name, d.Settings.Value)
	}
	return string(d.Name)
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s[%s]", d.Name, strings.Join(d.WireTags, ","))
}

type entry struct {
	wireTags  []string
	set       bool
	aggregate bool
	custom    bool
	build     func(d *Descriptor) error
}

// catalog is the fixed set of base types. Set and model reference builders
// describe their element types, so the table is filled in init.
var catalog map[Name]entry

func init() {
	catalog = map[Name]entry{
		String:    {wireTags: []string{"S"}, build: scalar(func(v any) bool { _, ok := v.(string); return ok })},
		Number:    {wireTags: []string{"N"}, build: scalar(IsNumber)},
		Boolean:   {wireTags: []string{"BOOL"}, build: scalar(func(v any) bool { _, ok := v.(bool); return ok })},
		Binary:    {wireTags: []string{"B"}, build: scalar(func(v any) bool { _, ok := v.([]byte); return ok })},
		Null:      {wireTags: []string{"NULL"}, build: scalar(func(v any) bool { return v == nil })},
		Map:       {wireTags: []string{"M"}, aggregate: true, build: scalar(isMap)},
		List:      {wireTags: []string{"L"}, aggregate: true, build: scalar(isList)},
		Date:      {wireTags: []string{"N"}, custom: true, build: buildDate},
		Combine:   {wireTags: []string{"S"}, custom: true, build: buildCombine},
		Constant:  {custom: true, build: buildConstant},
		ModelRef:  {custom: true, build: buildModelRef},
		StringSet: {wireTags: []string{"SS"}, set: true, build: buildSet(String)},
		NumberSet: {wireTags: []string{"NS"}, set: true, build: buildSet(Number)},
		BinarySet: {wireTags: []string{"BS"}, set: true, build: buildSet(Binary)},
		DateSet:   {wireTags: []string{"NS"}, set: true, custom: true, build: buildSet(Date)},
	}
}

// Names lists every concrete type name in the catalog.
func Names() []Name {
	return []Name{String, Number, Boolean, Binary, Null, Map, List, Date, Combine, Constant, ModelRef,
		StringSet, NumberSet, BinarySet, DateSet}
}

// Describe resolves spec into a Descriptor.
func Describe(spec Spec) (*Descriptor, error) {
	name := spec.Name
	if name == SetType {
		if spec.Settings.Element == nil {
			return nil, fmt.Errorf("set type requires an element type")
		}
		var err error
		name, err = setName(spec.Settings.Element.Name)
		if err != nil {
			return nil, err
		}
	}
	e, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown attribute type %q", spec.Name)
	}
	d := &Descriptor{
		Name:        name,
		WireTags:    e.wireTags,
		IsSet:       e.set,
		IsAggregate: e.aggregate,
		Custom:      e.custom,
		Settings:    spec.Settings,
	}
	if err := e.build(d); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

// Lookup returns the unparameterized descriptor for name.
func Lookup(name Name) (*Descriptor, error) {
	return Describe(Of(name))
}

// MustDescribe is Describe for package-level declarations; it panics on error.
func MustDescribe(spec Spec) *Descriptor {
	d, err := Describe(spec)
	if err != nil {
		panic(err)
	}
	return d
}

func setName(element Name) (Name, error) {
	switch element {
	case String:
		return StringSet, nil
	case Number:
		return NumberSet, nil
	case Binary:
		return BinarySet, nil
	case Date:
		return DateSet, nil
	}
	return "", fmt.Errorf("sets of %s are not supported", element)
}

func scalar(is func(any) bool) func(d *Descriptor) error {
	return func(d *Descriptor) error {
		d.Match = func(v any) Form {
			if is(v) {
				return FormMain
			}
			return FormNone
		}
		return nil
	}
}

func isMap(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

func buildCombine(d *Descriptor) error {
	if len(d.Settings.Attributes) == 0 {
		return fmt.Errorf("combine type requires at least one source attribute")
	}
	if d.Settings.Separator == "" {
		d.Settings.Separator = ","
	}
	return scalar(func(v any) bool { _, ok := v.(string); return ok })(d)
}

func buildConstant(d *Descriptor) error {
	value := d.Settings.Value
	switch {
	case value == nil:
		return fmt.Errorf("constant type requires a value")
	case IsNumber(value):
		d.WireTags = []string{"N"}
	default:
		switch value.(type) {
		case string:
			d.WireTags = []string{"S"}
		case bool:
			d.WireTags = []string{"BOOL"}
		default:
			return fmt.Errorf("constant value of type %T is not supported", value)
		}
	}
	d.Match = func(v any) Form {
		if Equal(v, value) {
			return FormMain
		}
		return FormNone
	}
	return nil
}

func buildModelRef(d *Descriptor) error {
	ref := d.Settings.Ref
	if ref == nil {
		return fmt.Errorf("model reference requires a referenced schema")
	}
	keyType, err := Describe(Of(ref.HashKeyType()))
	if err != nil {
		return err
	}
	d.WireTags = keyType.WireTags
	d.strictDecode = true
	keyOf := func(v any) (any, bool) {
		var values map[string]any
		switch t := v.(type) {
		case map[string]any:
			values = t
		case Valuer:
			values = t.Values()
		default:
			return nil, false
		}
		key, ok := values[ref.HashKey()]
		return key, ok && keyType.Is(key, ToWire)
	}
	d.Match = func(v any) Form {
		if keyType.Is(v, ToWire) {
			return FormUnderlying
		}
		if _, ok := keyOf(v); ok {
			return FormMain
		}
		return FormNone
	}
	d.Converter = &Converter{
		ToWire: func(v any) (any, error) {
			key, ok := keyOf(v)
			if !ok {
				return nil, fmt.Errorf("referenced value has no %q key", ref.HashKey())
			}
			return key, nil
		},
		FromWire: func(v any) (any, error) { return v, nil },
	}
	return nil
}

func buildSet(element Name) func(d *Descriptor) error {
	return func(d *Descriptor) error {
		spec := Of(element)
		if d.Settings.Element != nil {
			spec = *d.Settings.Element
		}
		spec.Name = element
		el, err := Describe(spec)
		if err != nil {
			return err
		}
		d.Element = el
		members := func(v any) ([]any, bool) {
			switch t := v.(type) {
			case Set:
				return t, true
			case []any:
				return t, true
			case []string, []int, []int64, []float64, [][]byte:
				return Normalize(t).([]any), true
			}
			return nil, false
		}
		d.Match = func(v any) Form {
			items, ok := members(v)
			if !ok {
				return FormNone
			}
			form := FormMain
			for _, item := range items {
				f := el.Match(item)
				if f == FormNone {
					return FormNone
				}
				if el.Custom && f == FormUnderlying {
					form = FormUnderlying
				}
			}
			return form
		}
		convert := func(items []any, fn func(any) (any, error), want Form) (Set, error) {
			out := make(Set, 0, len(items))
			for _, item := range items {
				if fn != nil && el.Match(item) != want {
					c, err := fn(item)
					if err != nil {
						return nil, err
					}
					item = c
				}
				if !out.Has(item) {
					out = append(out, item)
				}
			}
			return out, nil
		}
		d.Encode = func(v any) (any, error) {
			items, ok := members(v)
			if !ok {
				return nil, fmt.Errorf("value of type %T is not a set", v)
			}
			var fn func(any) (any, error)
			if el.Converter != nil {
				fn = el.Converter.ToWire
			}
			return convert(items, fn, FormUnderlying)
		}
		d.Decode = func(v any) (any, error) {
			items, ok := members(v)
			if !ok {
				return nil, fmt.Errorf("value of type %T is not a set", v)
			}
			var fn func(any) (any, error)
			if el.Converter != nil {
				fn = el.Converter.FromWire
			}
			return convert(items, fn, FormMain)
		}
		return nil
	}
}
