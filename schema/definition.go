/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import "github.com/suparena/shapestore/attrtype"

// Definition is the declaration of one level of a schema, keyed by attribute name.
type Definition map[string]AttributeDefinition

// ModifierFunc transforms a value on its way in (Set) or out (Get). previous
// is the value from the record's original snapshot, or nil.
type ModifierFunc func(value, previous any) any

// TypeSpec is one candidate type of an attribute. Map candidates may carry
// their own nested schema, List candidates their own element declaration.
type TypeSpec struct {
	attrtype.Spec
	Schema   Definition
	Elements []AttributeDefinition
}

// AttributeDefinition declares one attribute.
type AttributeDefinition struct {
	// Type lists the candidate types in declaration order. When empty the
	// type is inferred: Map if Schema is set, List if Elements is set.
	Type []TypeSpec

	// Schema is the nested declaration shared by Map candidates that do not
	// declare their own.
	Schema Definition

	// Elements declares the element of a List. At most one is allowed.
	Elements []AttributeDefinition

	// Default is a literal or a func() any provider.
	Default      any
	ForceDefault bool

	// Validate is a *regexp.Regexp, a func(any) bool, or a literal the value
	// must equal.
	Validate any

	Required bool
	Enum     []any
	Get      ModifierFunc
	Set      ModifierFunc
	Index    []IndexDefinition
	HashKey  bool
	RangeKey bool
}

// IndexDefinition declares a secondary index on the attribute it is attached to.
type IndexDefinition struct {
	// Name defaults to <attribute>GlobalIndex or <attribute>LocalIndex.
	Name string
	// Local indexes use the table hash key and this attribute as range key.
	// Global indexes use this attribute as hash key.
	Local bool
	// RangeKey is the range key of a global index.
	RangeKey string
	// Projection lists projected attributes; nil projects everything.
	Projection []string
}

// T returns a TypeSpec for a bare type name.
func T(name attrtype.Name) TypeSpec {
	return TypeSpec{Spec: attrtype.Of(name)}
}

// Typed returns a TypeSpec for a parameterized type.
func Typed(spec attrtype.Spec) TypeSpec {
	return TypeSpec{Spec: spec}
}

// MapOf returns a Map TypeSpec with its own nested schema.
func MapOf(def Definition) TypeSpec {
	return TypeSpec{Spec: attrtype.Of(attrtype.Map), Schema: def}
}

// ListOf returns a List TypeSpec whose elements follow element.
func ListOf(element AttributeDefinition) TypeSpec {
	return TypeSpec{Spec: attrtype.Of(attrtype.List), Elements: []AttributeDefinition{element}}
}

// Types is shorthand for a candidate list of bare type names.
func Types(names ...attrtype.Name) []TypeSpec {
	out := make([]TypeSpec, len(names))
	for i, n := range names {
		out[i] = T(n)
	}
	return out
}

// Of is shorthand for an attribute with the given candidate types.
func Of(specs ...TypeSpec) AttributeDefinition {
	return AttributeDefinition{Type: specs}
}

// KeyRef is a Referent describing a referenced entity by its hash key only.
type KeyRef struct {
	Key  string
	Type attrtype.Name
}

func (k KeyRef) HashKey() string { return k.Key }

func (k KeyRef) HashKeyType() attrtype.Name {
	if k.Type == "" {
		return attrtype.String
	}
	return k.Type
}
