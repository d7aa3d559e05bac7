/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package placeholder allocates expression attribute name and value
// placeholders from a single request-scoped counter.
package placeholder

import (
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Default prefixes for attribute name and value placeholders.
const (
	NamePrefix  = "#a"
	ValuePrefix = ":v"
)

// Allocator hands out placeholders from one monotonically increasing counter.
// It is request scoped and must not be shared between unrelated compilations.
type Allocator struct {
	namePrefix  string
	valuePrefix string
	next        int
	byName      map[string]string
	names       map[string]string
	values      map[string]types.AttributeValue
}

// New returns an Allocator with the default prefixes, counting from start.
func New(start int) *Allocator {
	return WithPrefixes(start, NamePrefix, ValuePrefix)
}

// WithPrefixes returns an Allocator with custom prefixes, counting from start.
func WithPrefixes(start int, namePrefix, valuePrefix string) *Allocator {
	return &Allocator{
		namePrefix:  namePrefix,
		valuePrefix: valuePrefix,
		next:        start,
		byName:      make(map[string]string),
		names:       make(map[string]string),
		values:      make(map[string]types.AttributeValue),
	}
}

// Next is the counter value the next allocation will use.
func (a *Allocator) Next() int { return a.next }

// Name returns the placeholder for one attribute name segment, reusing the
// placeholder already allocated for the same name.
func (a *Allocator) Name(name string) string {
	if p, ok := a.byName[name]; ok {
		return p
	}
	p := a.namePrefix + strconv.Itoa(a.next)
	a.next++
	a.byName[name] = p
	a.names[p] = name
	return p
}

// Path renders a dotted attribute path with one placeholder per name segment.
// List positions render as [n].
func (a *Allocator) Path(path string) string {
	var b strings.Builder
	for i, seg := range strings.Split(path, ".") {
		if isIndex(seg) && i > 0 {
			b.WriteString("[" + seg + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(a.Name(seg))
	}
	return b.String()
}

// PathNames returns the name placeholders Path allocated for path.
func (a *Allocator) PathNames(path string) []string {
	var out []string
	for i, seg := range strings.Split(path, ".") {
		if isIndex(seg) && i > 0 {
			continue
		}
		out = append(out, a.Name(seg))
	}
	return out
}

// Value allocates a placeholder for v.
func (a *Allocator) Value(v types.AttributeValue) string {
	p := a.valuePrefix + strconv.Itoa(a.next)
	a.next++
	a.values[p] = v
	return p
}

// Pair allocates two placeholders sharing one counter step, as used by BETWEEN.
func (a *Allocator) Pair(lo, hi types.AttributeValue) (string, string) {
	base := a.valuePrefix + strconv.Itoa(a.next)
	a.next++
	p1, p2 := base+"_1", base+"_2"
	a.values[p1] = lo
	a.values[p2] = hi
	return p1, p2
}

// Names returns placeholder to attribute name mappings.
func (a *Allocator) Names() map[string]string {
	out := make(map[string]string, len(a.names))
	for k, v := range a.names {
		out[k] = v
	}
	return out
}

// Values returns placeholder to wire value mappings.
func (a *Allocator) Values() map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// Merge copies src into dst, for combining compiled expressions that share a
// counter.
func Merge[V any](dst, src map[string]V) map[string]V {
	if dst == nil && len(src) > 0 {
		dst = make(map[string]V, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func isIndex(seg string) bool {
	if seg == "" {
		return false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
