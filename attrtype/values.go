/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attrtype

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/go-openapi/strfmt"
)

// Set is an unordered collection of distinct scalar values. It is the
// in-memory form of the store's homogeneous string, number and binary sets.
type Set []any

// NewSet builds a Set from values, dropping duplicates and keeping first-seen order.
func NewSet(values ...any) Set {
	s := make(Set, 0, len(values))
	for _, v := range values {
		if !s.Has(v) {
			s = append(s, v)
		}
	}
	return s
}

// Has reports whether v is a member of s.
func (s Set) Has(v any) bool {
	for _, e := range s {
		if Equal(e, v) {
			return true
		}
	}
	return false
}

// Valuer is implemented by entity-like values that expose their attribute map.
type Valuer interface {
	Values() map[string]any
}

// Normalize converts common typed Go collections into the []any and
// map[string]any trees the rest of the library walks.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	case []string:
		return toAnySlice(t)
	case []int:
		return toAnySlice(t)
	case []int64:
		return toAnySlice(t)
	case []float64:
		return toAnySlice(t)
	case []bool:
		return toAnySlice(t)
	case [][]byte:
		return toAnySlice(t)
	case Set:
		out := make(Set, len(t))
		copy(out, t)
		return out
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	case *strfmt.DateTime:
		if t == nil {
			return nil
		}
		return *t
	case *string:
		if t == nil {
			return nil
		}
		return *t
	}
	return v
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, e := range in {
		out[i] = e
	}
	return out
}

// IsNumber reports whether v is a Go numeric value.
func IsNumber(v any) bool {
	_, ok := ToFloat(v)
	return ok
}

// ToFloat converts any Go numeric value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// FormatNumber renders a number the way it is written into the store.
func FormatNumber(v any) string {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case json.Number:
		return n.String()
	}
	f, ok := ToFloat(v)
	if !ok {
		return fmt.Sprint(v)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// KindOf names the runtime shape of v using type names where one applies.
func KindOf(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []byte:
		return "binary"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case Set:
		return "set"
	case time.Time, strfmt.DateTime:
		return "date"
	case Valuer:
		return "object"
	default:
		if IsOmit(t) {
			return "undefined"
		}
		if IsNumber(t) {
			return "number"
		}
	}
	return fmt.Sprintf("%T", v)
}

// Equal compares two attribute values, treating numbers of any Go kind as equal
// when numerically equal.
func Equal(a, b any) bool {
	if fa, ok := ToFloat(a); ok {
		fb, ok := ToFloat(b)
		return ok && fa == fb
	}
	switch ta := a.(type) {
	case string:
		tb, ok := b.(string)
		return ok && ta == tb
	case bool:
		tb, ok := b.(bool)
		return ok && ta == tb
	case []byte:
		tb, ok := b.([]byte)
		return ok && bytes.Equal(ta, tb)
	case nil:
		return b == nil
	case time.Time:
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}

// IsEmpty reports whether v carries no value for combine and default purposes.
func IsEmpty(v any) bool {
	return v == nil || IsOmit(v)
}
