/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package marshal

import (
	"sort"
	"strconv"
	"strings"

	"github.com/suparena/shapestore/attrtype"
)

// Lookup returns the value at a dotted path of values.
func Lookup(values map[string]any, path string) (any, bool) {
	if values == nil || path == "" {
		return nil, false
	}
	var cur any = values
	for _, seg := range strings.Split(path, ".") {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(c) {
				return nil, false
			}
			cur = c[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Assign writes v at path, creating intermediate maps. It reports false when
// an intermediate value is not a container.
func Assign(values map[string]any, path string, v any) bool {
	segs := strings.Split(path, ".")
	var cur any = values
	for i, seg := range segs {
		last := i == len(segs)-1
		switch c := cur.(type) {
		case map[string]any:
			if last {
				c[seg] = v
				return true
			}
			next, ok := c[seg]
			if !ok || next == nil {
				next = make(map[string]any)
				c[seg] = next
			}
			cur = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(c) {
				return false
			}
			if last {
				c[idx] = v
				return true
			}
			cur = c[idx]
		default:
			return false
		}
	}
	return false
}

// Remove deletes path from values. List positions are not removed.
func Remove(values map[string]any, path string) {
	parent, key := "", path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		parent, key = path[:i], path[i+1:]
	}
	var container any = values
	if parent != "" {
		var ok bool
		if container, ok = Lookup(values, parent); !ok {
			return
		}
	}
	if m, ok := container.(map[string]any); ok {
		delete(m, key)
	}
}

// Present enumerates every path present in values, parents before children.
// Sets are leaves.
func Present(values map[string]any) []string {
	var out []string
	presentMap(values, "", &out)
	return out
}

func presentMap(m map[string]any, prefix string, out *[]string) {
	for _, k := range sortedKeys(m) {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		*out = append(*out, path)
		presentValue(m[k], path, out)
	}
}

func presentValue(v any, path string, out *[]string) {
	switch t := v.(type) {
	case map[string]any:
		presentMap(t, path, out)
	case []any:
		for i, e := range t {
			p := path + "." + strconv.Itoa(i)
			*out = append(*out, p)
			presentValue(e, p, out)
		}
	}
}

// Clone deep-copies a record, normalizing typed collections.
func Clone(values map[string]any) map[string]any {
	if values == nil {
		return map[string]any{}
	}
	return attrtype.Normalize(values).(map[string]any)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
