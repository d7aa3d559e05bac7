/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/schema"
)

func multiSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(schema.Definition{
		"id": {Type: schema.Types(attrtype.String), HashKey: true},
		"contact": {Type: []schema.TypeSpec{
			schema.MapOf(schema.Definition{
				"email": {Type: schema.Types(attrtype.String)},
			}),
			schema.MapOf(schema.Definition{
				"email": {Type: schema.Types(attrtype.String)},
				"phone": {Type: schema.Types(attrtype.String)},
			}),
		}},
		"value": {Type: schema.Types(attrtype.String, attrtype.Number)},
		"born":  {Type: schema.Types(attrtype.Date)},
	})
	require.NoError(t, err)
	return s
}

func TestMinThenSum(t *testing.T) {
	assert.Equal(t, Score{Primary: 1}, MinThenSum(nil))
	assert.Equal(t, Score{Primary: 0.5, Secondary: 1.5}, MinThenSum([]float64{1, 0.5}))
	assert.Equal(t, Score{Primary: 0, Secondary: 2}, MinThenSum([]float64{1, 1, 0}))
}

func TestRank(t *testing.T) {
	// min wins over sum
	assert.Equal(t, []int{1, 0}, Rank([][]float64{{1, 1, 1, 0}, {0.5}}, MinThenSum))
	// equal min, higher sum wins
	assert.Equal(t, []int{1, 0}, Rank([][]float64{{1, 0.5}, {1, 1, 0.5}}, MinThenSum))
	// full tie keeps declaration order
	assert.Equal(t, []int{0, 1}, Rank([][]float64{{1}, {1}}, MinThenSum))
}

func TestRankWithCustomStrategy(t *testing.T) {
	sumOnly := func(sub []float64) Score {
		total := 0.0
		for _, v := range sub {
			total += v
		}
		return Score{Primary: total}
	}
	assert.Equal(t, []int{0, 1}, Rank([][]float64{{1, 1, 1, 0}, {0.5}}, sumOnly))
}

func TestResolveSingleType(t *testing.T) {
	s := multiSchema(t)
	now := time.Now()

	res := Resolve(s, "born", now, attrtype.ToWire, nil)
	assert.True(t, res.Valid)
	assert.Equal(t, 0, res.Matched)

	res = Resolve(s, "born", now, attrtype.FromWire, nil)
	assert.True(t, res.Valid)

	res = Resolve(s, "born", now.UnixMilli(), attrtype.FromWire, nil)
	assert.True(t, res.Valid)

	res = Resolve(s, "born", "yesterday", attrtype.ToWire, nil)
	assert.False(t, res.Valid)
	assert.True(t, res.Declared())
	assert.Equal(t, -1, res.Matched)
}

func TestResolveUndeclaredAndOmit(t *testing.T) {
	s := multiSchema(t)

	res := Resolve(s, "unknown", "x", attrtype.ToWire, nil)
	assert.False(t, res.Declared())
	assert.False(t, res.Valid)

	res = Resolve(s, "value", attrtype.Omit, attrtype.ToWire, nil)
	assert.True(t, res.Omitted)
	assert.False(t, res.Valid)
	assert.Empty(t, res.Candidates)
}

func TestResolveScalarUnion(t *testing.T) {
	s := multiSchema(t)

	res := Resolve(s, "value", 3, attrtype.ToWire, nil)
	require.True(t, res.Valid)
	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, []int{1}, res.Candidates)
	assert.Equal(t, attrtype.Number, res.Descriptor().Name)
}

func TestResolveAggregateScoring(t *testing.T) {
	s := multiSchema(t)

	// Both candidates accept; only the second declares phone.
	withPhone := map[string]any{"email": "a@b", "phone": "123"}
	res := Resolve(s, "contact", withPhone, attrtype.ToWire, nil)
	require.True(t, res.Valid)
	assert.Equal(t, []int{0, 1}, res.Candidates)
	assert.Equal(t, 1, res.Matched)

	// Equal scores: first declared wins.
	emailOnly := map[string]any{"email": "a@b"}
	res = Resolve(s, "contact", emailOnly, attrtype.ToWire, nil)
	assert.Equal(t, 0, res.Matched)

	// A mismatching field in the second candidate disqualifies it.
	badPhone := map[string]any{"email": "a@b", "phone": 5}
	res = Resolve(s, "contact", badPhone, attrtype.ToWire, nil)
	assert.Equal(t, 0, res.Matched)

	// Stable across calls.
	for i := 0; i < 5; i++ {
		assert.Equal(t, 1, Resolve(s, "contact", withPhone, attrtype.ToWire, nil).Matched)
	}
}

func TestTypePaths(t *testing.T) {
	s := multiSchema(t)
	record := map[string]any{
		"id":      "u1",
		"contact": map[string]any{"email": "a@b", "phone": "1"},
		"value":   2,
		"extra":   true,
	}
	choices := TypePaths(s, record, attrtype.ToWire)
	assert.Equal(t, map[string]int{
		"id":            0,
		"contact":       1,
		"contact.email": 0,
		"contact.phone": 0,
		"value":         1,
	}, choices)

	phone := s.AttributeFor("contact.phone", choices)
	assert.NotNil(t, phone)
}

func TestBestSchema(t *testing.T) {
	users := schema.MustNew(schema.Definition{
		"id":    {Type: schema.Types(attrtype.String), HashKey: true},
		"email": {Type: schema.Types(attrtype.String)},
	})
	orders := schema.MustNew(schema.Definition{
		"id":    {Type: schema.Types(attrtype.String), HashKey: true},
		"total": {Type: schema.Types(attrtype.Number)},
	})
	schemas := []*schema.Schema{users, orders}

	assert.Equal(t, 1, BestSchema(schemas, map[string]any{"id": "o1", "total": 3}, attrtype.ToWire))
	assert.Equal(t, 0, BestSchema(schemas, map[string]any{"id": "u1", "email": "x"}, attrtype.ToWire))
	assert.Equal(t, 0, BestSchema(schemas, map[string]any{"id": "u1"}, attrtype.ToWire))
	assert.Equal(t, -1, BestSchema(nil, map[string]any{}, attrtype.ToWire))
}
