/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attrtype

import (
	"fmt"
	"strings"
)

// Name is the canonical name of a base value type.
type Name string

const (
	String   Name = "String"
	Number   Name = "Number"
	Boolean  Name = "Boolean"
	Binary   Name = "Binary"
	Null     Name = "Null"
	Map      Name = "Map"
	List     Name = "List"
	Date     Name = "Date"
	Combine  Name = "Combine"
	Constant Name = "Constant"
	ModelRef Name = "Model"

	// SetType is only valid in declarations; it is normalized to one of the
	// concrete set names below using the element type.
	SetType   Name = "Set"
	StringSet Name = "StringSet"
	NumberSet Name = "NumberSet"
	BinarySet Name = "BinarySet"
	DateSet   Name = "DateSet"
)

var aliases = map[string]Name{
	"string":    String,
	"number":    Number,
	"boolean":   Boolean,
	"bool":      Boolean,
	"binary":    Binary,
	"buffer":    Binary,
	"null":      Null,
	"map":       Map,
	"object":    Map,
	"list":      List,
	"array":     List,
	"date":      Date,
	"combine":   Combine,
	"constant":  Constant,
	"model":     ModelRef,
	"set":       SetType,
	"stringset": StringSet,
	"numberset": NumberSet,
	"binaryset": BinarySet,
	"dateset":   DateSet,
}

// Parse resolves a type identifier, accepting common aliases in any case.
func Parse(s string) (Name, error) {
	if n, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return n, nil
	}
	return "", fmt.Errorf("unknown attribute type %q", s)
}

// Direction selects which side of the store boundary a value is travelling to.
type Direction int

const (
	ToWire Direction = iota
	FromWire
)

func (d Direction) String() string {
	if d == FromWire {
		return "fromWire"
	}
	return "toWire"
}

// DateStorage selects how a Date is stored.
type DateStorage string

const (
	StorageMilliseconds DateStorage = "milliseconds"
	StorageSeconds      DateStorage = "seconds"
	StorageISO          DateStorage = "iso"
)

// Referent is the part of a referenced schema a model reference needs.
type Referent interface {
	HashKey() string
	HashKeyType() Name
}

// Settings parameterize derived and custom types. Only the fields relevant
// to the type are read.
type Settings struct {
	// Date
	Storage DateStorage
	// Constant
	Value any
	// Combine
	Attributes []string
	Separator  string
	// Model reference
	Ref Referent
	// Set element
	Element *Spec
}

// Spec is a type identifier, optionally parameterized.
type Spec struct {
	Name     Name
	Settings Settings
}

// Of returns a bare Spec for name.
func Of(name Name) Spec {
	return Spec{Name: name}
}

// DateOf returns a Date spec stored with the given unit.
func DateOf(storage DateStorage) Spec {
	return Spec{Name: Date, Settings: Settings{Storage: storage}}
}

// ConstantOf returns a Constant spec fixed to value.
func ConstantOf(value any) Spec {
	return Spec{Name: Constant, Settings: Settings{Value: value}}
}

// CombineOf returns a Combine spec joining attributes with separator.
func CombineOf(separator string, attributes ...string) Spec {
	return Spec{Name: Combine, Settings: Settings{Attributes: attributes, Separator: separator}}
}

// SetOf returns a Set spec of element.
func SetOf(element Spec) Spec {
	return Spec{Name: SetType, Settings: Settings{Element: &element}}
}

// RefOf returns a model reference spec.
func RefOf(ref Referent) Spec {
	return Spec{Name: ModelRef, Settings: Settings{Ref: ref}}
}

// omitted is the type of the omission sentinel.
type omitted struct{}

func (omitted) String() string { return "<omit>" }

// Omit marks an attribute as explicitly removed, as opposed to merely absent.
var Omit any = omitted{}

// IsOmit reports whether v is the omission sentinel.
func IsOmit(v any) bool {
	_, ok := v.(omitted)
	return ok
}
