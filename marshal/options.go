/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package marshal

import (
	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/resolver"
)

// Required selects how the required pass runs.
type Required int

const (
	RequiredOff Required = iota
	// RequiredAll checks every required path whose parent is present.
	RequiredAll
	// RequiredNested checks only non-root paths, for partial payloads.
	RequiredNested
)

// Modifiers selects which declared modifier runs.
type Modifiers int

const (
	ModifiersNone Modifiers = iota
	ModifiersSet
	ModifiersGet
)

// Options toggles the passes of Transform. Enabled passes always run in the
// order the fields are declared.
type Options struct {
	Direction attrtype.Direction

	TypeCheck     bool
	Defaults      bool
	ForceDefaults bool
	CustomTypes   bool
	Encode        bool
	Combine       bool
	Modifiers     Modifiers
	Validate      bool
	Required      Required
	Enum          bool

	// Original is the frozen snapshot handed to modifiers as previous values.
	Original map[string]any

	// Resolver overrides resolver.Default.
	Resolver *resolver.Resolver
}

// SaveOptions runs every pass toward the store.
func SaveOptions() Options {
	return Options{
		Direction:   attrtype.ToWire,
		TypeCheck:   true,
		Defaults:    true,
		CustomTypes: true,
		Encode:      true,
		Combine:     true,
		Modifiers:   ModifiersSet,
		Validate:    true,
		Required:    RequiredAll,
		Enum:        true,
	}
}

// LoadOptions decodes an item read from the store.
func LoadOptions() Options {
	return Options{
		Direction:   attrtype.FromWire,
		TypeCheck:   true,
		CustomTypes: true,
		Encode:      true,
		Modifiers:   ModifiersGet,
	}
}

// KeyOptions converts key values for requests without checking anything else.
func KeyOptions() Options {
	return Options{
		Direction:   attrtype.ToWire,
		TypeCheck:   true,
		CustomTypes: true,
		Encode:      true,
	}
}

func (o Options) resolver() *resolver.Resolver {
	if o.Resolver != nil {
		return o.Resolver
	}
	return resolver.Default
}
