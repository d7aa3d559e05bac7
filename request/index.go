/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package request

import (
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/shapestore/condition"
	"github.com/suparena/shapestore/errors"
	"github.com/suparena/shapestore/placeholder"
	"github.com/suparena/shapestore/schema"
)

// Reserved placeholder prefixes for promoted key conditions.
const (
	hashNamePrefix   = "#qha"
	hashValuePrefix  = ":qhv"
	rangeNamePrefix  = "#qra"
	rangeValuePrefix = ":qrv"
)

// Chart maps each attribute compared at the top level of a condition to its
// comparator. Clauses inside groups are not charted.
type Chart map[string]condition.Operator

// ChartOf charts the top-level clause tokens. The first clause on an
// attribute wins.
func ChartOf(tokens []condition.Token) Chart {
	chart := make(Chart)
	for _, t := range tokens {
		if t.Kind != condition.TokenClause {
			continue
		}
		if _, ok := chart[t.Attr]; !ok {
			chart[t.Attr] = t.Op
		}
	}
	return chart
}

// Attributes returns the charted attribute names, sorted.
func (c Chart) Attributes() []string {
	out := make([]string, 0, len(c))
	for attr := range c {
		out = append(out, attr)
	}
	sort.Strings(out)
	return out
}

// SelectIndex picks the index serving a query with chart. Only indexes whose
// hash key is compared for equality qualify; among them an index whose range
// key is also charted wins, then the table index, then the first remaining.
func SelectIndex(indexes []schema.IndexDescriptor, chart Chart) (schema.IndexDescriptor, error) {
	var candidates []schema.IndexDescriptor
	for _, idx := range indexes {
		if chart[idx.HashKey] == condition.EQ {
			candidates = append(candidates, idx)
		}
	}
	if len(candidates) == 0 {
		return schema.IndexDescriptor{}, errors.NewUnindexableQueryError(chart.Attributes()...)
	}
	for _, idx := range candidates {
		if idx.RangeKey == "" {
			continue
		}
		if _, ok := chart[idx.RangeKey]; ok {
			return idx, nil
		}
	}
	for _, idx := range candidates {
		if idx.IsTableIndex {
			return idx, nil
		}
	}
	return candidates[0], nil
}

// KeyCondition is the key condition split out of a query filter.
type KeyCondition struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
	// Filter holds the tokens left in the filter.
	Filter []condition.Token
}

// Promote moves the clauses on the hash key and, when possible, the range
// key of idx out of tokens into a key condition. It fails when the hash key
// clause cannot be promoted.
func Promote(tokens []condition.Token, idx schema.IndexDescriptor) (KeyCondition, error) {
	kc := KeyCondition{
		Names:  make(map[string]string),
		Values: make(map[string]types.AttributeValue),
	}
	rest, hash, ok := promote(tokens, idx.HashKey, true)
	if !ok {
		return KeyCondition{}, errors.NewUnindexableQueryError(idx.HashKey)
	}
	ha := placeholder.WithPrefixes(0, hashNamePrefix, hashValuePrefix)
	hash = hash.Rebind(ha)
	kc.Expression = hash.Text
	kc.Names = placeholder.Merge(kc.Names, ha.Names())
	kc.Values = placeholder.Merge(kc.Values, ha.Values())

	if idx.RangeKey != "" {
		if next, rng, ok := promote(rest, idx.RangeKey, false); ok {
			ra := placeholder.WithPrefixes(0, rangeNamePrefix, rangeValuePrefix)
			rng = rng.Rebind(ra)
			kc.Expression += " AND " + rng.Text
			kc.Names = placeholder.Merge(kc.Names, ra.Names())
			kc.Values = placeholder.Merge(kc.Values, ra.Values())
			rest = next
		}
	}
	kc.Filter = rest
	return kc, nil
}

// promote removes the single top-level clause on attr when it is a valid key
// condition joined to the rest by AND only.
func promote(tokens []condition.Token, attr string, hash bool) ([]condition.Token, condition.Token, bool) {
	at := -1
	for i, t := range tokens {
		if t.Kind == condition.TokenOr {
			return tokens, condition.Token{}, false
		}
		if t.Kind == condition.TokenClause && t.Attr == attr {
			if at >= 0 {
				return tokens, condition.Token{}, false
			}
			at = i
		}
	}
	if at < 0 || !tokens[at].KeyEligible(hash) {
		return tokens, condition.Token{}, false
	}
	rest := make([]condition.Token, 0, len(tokens)-1)
	rest = append(rest, tokens[:at]...)
	rest = append(rest, tokens[at+1:]...)
	return condition.Trim(rest), tokens[at], true
}
