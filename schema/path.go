/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"strconv"
	"strings"
)

// Attribute returns the declaration at path, or nil when the path is not
// declared. Multi-typed parents are searched in declaration order.
func (s *Schema) Attribute(path string) *Attribute {
	return s.AttributeFor(path, nil)
}

// AttributeFor returns the declaration at path, following the candidate
// chosen for each parent path in choices when one is recorded.
func (s *Schema) AttributeFor(path string, choices map[string]int) *Attribute {
	if path == "" {
		return nil
	}
	segs := strings.Split(path, ".")
	a := s.attrs[segs[0]]
	current := segs[0]
	for _, seg := range segs[1:] {
		if a == nil {
			return nil
		}
		a = a.child(seg, candidateChoice(choices, current))
		current += "." + seg
	}
	return a
}

// Declared reports whether path resolves to a declaration.
func (s *Schema) Declared(path string) bool {
	return s.Attribute(path) != nil
}

func candidateChoice(choices map[string]int, path string) int {
	if choices == nil {
		return -1
	}
	if i, ok := choices[path]; ok {
		return i
	}
	return -1
}

func (a *Attribute) child(seg string, choice int) *Attribute {
	candidates := a.Candidates
	if choice >= 0 && choice < len(candidates) {
		candidates = candidates[choice : choice+1]
	}
	index := IsIndex(seg)
	for _, c := range candidates {
		if index {
			if c.Element != nil {
				return c.Element
			}
			continue
		}
		if sub, ok := c.Schema[seg]; ok {
			return sub
		}
	}
	return nil
}

// IsIndex reports whether seg is a list position.
func IsIndex(seg string) bool {
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

// Split breaks a path into its segments.
func Split(path string) []string {
	return strings.Split(path, ".")
}

// Parent returns the parent path, or "" for a root attribute.
func Parent(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[:i]
}

// Attributes enumerates declared attribute paths for record, parents before
// children. Map attributes contribute their declared nested paths whether or
// not they are present; List attributes are expanded to one path per element
// present in record.
func (s *Schema) Attributes(record map[string]any, choices map[string]int) []string {
	e := &enumerator{choices: choices, seen: make(map[string]bool)}
	e.walk(s.attrs, "", record)
	return e.out
}

type enumerator struct {
	choices map[string]int
	seen    map[string]bool
	out     []string
}

func (e *enumerator) add(path string) {
	if !e.seen[path] {
		e.seen[path] = true
		e.out = append(e.out, path)
	}
}

func (e *enumerator) walk(attrs map[string]*Attribute, prefix string, values map[string]any) {
	for _, name := range sortedKeys(attrs) {
		path := join(prefix, name)
		e.add(path)
		var v any
		if values != nil {
			v = values[name]
		}
		e.expand(attrs[name], path, v)
	}
}

func (e *enumerator) expand(a *Attribute, path string, v any) {
	candidates := a.Candidates
	if i := candidateChoice(e.choices, path); i >= 0 && i < len(candidates) {
		candidates = candidates[i : i+1]
	}
	for _, c := range candidates {
		if c.Schema != nil {
			nested, _ := v.(map[string]any)
			e.walk(c.Schema, path, nested)
		}
		if c.Element != nil {
			list, _ := v.([]any)
			for i, item := range list {
				p := path + "." + strconv.Itoa(i)
				e.add(p)
				e.expand(c.Element, p, item)
			}
		}
	}
}

// AllowsUnknown reports whether an undeclared path survives pruning. Paths
// that are ancestors of an allowed pattern are kept so their children can be
// checked individually.
func (s *Schema) AllowsUnknown(path string) bool {
	if s.settings.SaveUnknownAll {
		return true
	}
	segs := Split(path)
	for _, pattern := range s.settings.SaveUnknown {
		p := Split(pattern)
		if matchSegments(p, segs) || prefixOf(p, segs) {
			return true
		}
	}
	return false
}

func matchSegments(pattern, path []string) bool {
	switch {
	case len(pattern) == 0:
		return len(path) == 0
	case pattern[0] == "**":
		if len(pattern) == 1 {
			return len(path) > 0
		}
		for i := 1; i <= len(path); i++ {
			if matchSegments(pattern[1:], path[i:]) {
				return true
			}
		}
		return false
	case len(path) == 0:
		return false
	case pattern[0] == "*" || pattern[0] == path[0]:
		return matchSegments(pattern[1:], path[1:])
	}
	return false
}

// prefixOf reports whether path could be the ancestor of a path matching pattern.
func prefixOf(pattern, path []string) bool {
	for i, seg := range path {
		if i >= len(pattern) {
			return false
		}
		switch pattern[i] {
		case "**":
			return true
		case "*", seg:
		default:
			return false
		}
	}
	return len(pattern) > len(path)
}
