/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package resolver

import (
	"sort"
	"strconv"

	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/schema"
)

// Result is the outcome of resolving one value against one attribute.
type Result struct {
	// Attribute is nil when the path is not declared.
	Attribute   *schema.Attribute
	Descriptors []*attrtype.Descriptor
	// Matched is the index of the chosen candidate, or -1.
	Matched int
	// Candidates lists every candidate index whose membership accepts the value.
	Candidates []int
	Valid      bool
	// Omitted is set when the value is the omission sentinel.
	Omitted bool
}

// Declared reports whether the resolved path is part of the schema.
func (r Result) Declared() bool {
	return r.Attribute != nil
}

// Descriptor returns the matched descriptor, or nil.
func (r Result) Descriptor() *attrtype.Descriptor {
	if r.Matched < 0 {
		return nil
	}
	return r.Descriptors[r.Matched]
}

// Candidate returns the matched candidate.
func (r Result) Candidate() (schema.Candidate, bool) {
	if r.Matched < 0 {
		return schema.Candidate{}, false
	}
	return r.Attribute.Candidates[r.Matched], true
}

// Resolver resolves values against schema attributes. The zero value is not
// usable; use Default or New.
type Resolver struct {
	Strategy Strategy
}

// Default ranks ambiguous aggregates with MinThenSum.
var Default = New(MinThenSum)

// New returns a Resolver ranking ambiguous aggregates with strategy.
func New(strategy Strategy) *Resolver {
	return &Resolver{Strategy: strategy}
}

// Resolve resolves value at path with the Default resolver.
func Resolve(s *schema.Schema, path string, value any, dir attrtype.Direction, choices map[string]int) Result {
	return Default.Resolve(s, path, value, dir, choices)
}

// Resolve resolves value at path. choices holds the candidates already chosen
// for parent paths, as returned by TypePaths; it may be nil.
func (r *Resolver) Resolve(s *schema.Schema, path string, value any, dir attrtype.Direction, choices map[string]int) Result {
	a := s.AttributeFor(path, choices)
	if a == nil {
		return Result{Matched: -1}
	}
	return r.ResolveAttribute(a, value, dir)
}

// ResolveAttribute resolves value against a's candidates.
func (r *Resolver) ResolveAttribute(a *schema.Attribute, value any, dir attrtype.Direction) Result {
	res := Result{Attribute: a, Descriptors: a.Descriptors(), Matched: -1}
	if attrtype.IsOmit(value) {
		res.Omitted = true
		return res
	}
	for i, c := range a.Candidates {
		if c.Descriptor.Is(value, dir) {
			res.Candidates = append(res.Candidates, i)
		}
	}
	if len(res.Candidates) == 0 {
		return res
	}
	res.Valid = true
	res.Matched = res.Candidates[0]
	if len(res.Candidates) > 1 && isAggregate(value) {
		sub := make([][]float64, len(res.Candidates))
		for j, i := range res.Candidates {
			sub[j] = r.subScores(a.Candidates[i], value, dir)
		}
		res.Matched = res.Candidates[Rank(sub, r.Strategy)[0]]
	}
	return res
}

func isAggregate(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}

// subScores scores each sub-key of value against candidate c.
func (r *Resolver) subScores(c schema.Candidate, value any, dir attrtype.Direction) []float64 {
	switch v := value.(type) {
	case map[string]any:
		keys := sortedKeys(v)
		out := make([]float64, 0, len(keys))
		for _, k := range keys {
			if attrtype.IsOmit(v[k]) {
				continue
			}
			out = append(out, r.score(c.Schema[k], v[k], dir))
		}
		return out
	case []any:
		out := make([]float64, 0, len(v))
		for _, e := range v {
			out = append(out, r.score(c.Element, e, dir))
		}
		return out
	}
	return nil
}

func (r *Resolver) score(a *schema.Attribute, v any, dir attrtype.Direction) float64 {
	if a == nil {
		return ScoreUndeclared
	}
	if r.ResolveAttribute(a, v, dir).Valid {
		return ScoreMatch
	}
	return ScoreMismatch
}

// TypePaths resolves every present, declared path of record and returns the
// chosen candidate index per concrete path. Only values matching a Map or
// List candidate are descended into.
func TypePaths(s *schema.Schema, record map[string]any, dir attrtype.Direction) map[string]int {
	return Default.TypePaths(s, record, dir)
}

// TypePaths is the method form of the package-level TypePaths.
func (r *Resolver) TypePaths(s *schema.Schema, record map[string]any, dir attrtype.Direction) map[string]int {
	choices := make(map[string]int)
	for _, k := range sortedKeys(record) {
		r.visit(s, k, record[k], dir, choices)
	}
	return choices
}

func (r *Resolver) visit(s *schema.Schema, path string, v any, dir attrtype.Direction, choices map[string]int) {
	res := r.Resolve(s, path, v, dir, choices)
	if !res.Valid {
		return
	}
	choices[path] = res.Matched
	switch res.Descriptor().Name {
	case attrtype.Map:
		m := v.(map[string]any)
		for _, k := range sortedKeys(m) {
			r.visit(s, path+"."+k, m[k], dir, choices)
		}
	case attrtype.List:
		for i, e := range v.([]any) {
			r.visit(s, path+"."+strconv.Itoa(i), e, dir, choices)
		}
	}
}

// BestSchema returns the index of the schema whose top-level declarations fit
// values best, or -1 when schemas is empty.
func BestSchema(schemas []*schema.Schema, values map[string]any, dir attrtype.Direction) int {
	return Default.BestSchema(schemas, values, dir)
}

// BestSchema is the method form of the package-level BestSchema.
func (r *Resolver) BestSchema(schemas []*schema.Schema, values map[string]any, dir attrtype.Direction) int {
	if len(schemas) == 0 {
		return -1
	}
	keys := sortedKeys(values)
	sub := make([][]float64, len(schemas))
	for i, s := range schemas {
		scores := make([]float64, 0, len(keys))
		for _, k := range keys {
			if attrtype.IsOmit(values[k]) {
				continue
			}
			scores = append(scores, r.score(s.Attribute(k), values[k], dir))
		}
		sub[i] = scores
	}
	return Rank(sub, r.Strategy)[0]
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
