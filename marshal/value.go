/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package marshal

import (
	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/errors"
	"github.com/suparena/shapestore/schema"
)

// Value runs the value passes of opts over a single value found at path.
// Undeclared paths are returned unchanged.
// Defaults and combine look at the whole record and do not run. The required
// pass only checks paths below path.
func Value(s *schema.Schema, path string, v any, opts Options) (any, error) {
	v = attrtype.Normalize(v)
	if v == nil || attrtype.IsOmit(v) {
		return v, nil
	}
	a := s.Attribute(path)
	if a == nil {
		return v, nil
	}
	if opts.TypeCheck {
		res := opts.resolver().ResolveAttribute(a, v, opts.Direction)
		if !res.Valid {
			return nil, errors.NewTypeMismatchError(path, a.TypeNames(), attrtype.KindOf(v))
		}
	}

	// Assign builds maps for list positions, which the prune pass would reject.
	values := make(map[string]any)
	Assign(values, path, v)
	for _, seg := range schema.Split(path) {
		if schema.IsIndex(seg) {
			opts.TypeCheck = false
		}
	}
	opts.Defaults = false
	opts.ForceDefaults = false
	opts.Combine = false
	out, err := transform(s, values, opts, path)
	if err != nil {
		return nil, err
	}
	converted, _ := Lookup(out, path)
	return converted, nil
}
