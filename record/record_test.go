/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package record

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/schema"
)

func orderSchema() *schema.Schema {
	return schema.MustNew(schema.Definition{
		"customer": {Type: schema.Types(attrtype.String), HashKey: true},
		"placed":   {Type: schema.Types(attrtype.Date), RangeKey: true},
		"total":    {Type: schema.Types(attrtype.Number)},
	})
}

type order map[string]any

func (o order) Values() map[string]any { return o }

func TestNewLocal(t *testing.T) {
	s := orderSchema()
	r, err := New(s, map[string]any{"customer": "c1", "total": 10})
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, r.Source())
	assert.False(t, r.Persisted())

	r.Set("total", 12)
	v, _ := r.Get("total")
	assert.Equal(t, 12, v)
	assert.Equal(t, 10, r.Original()["total"])

	r.MarkPersisted()
	assert.True(t, r.Persisted())
}

func TestNewFromValuer(t *testing.T) {
	r, err := New(orderSchema(), order{"customer": "c1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"customer": "c1"}, r.Values())
}

func TestNewFromWireItem(t *testing.T) {
	s := orderSchema()
	r, err := New(s, map[string]types.AttributeValue{
		"customer": &types.AttributeValueMemberS{Value: "c1"},
		"placed":   &types.AttributeValueMemberN{Value: "1700000000000"},
		"total":    &types.AttributeValueMemberN{Value: "9.5"},
	})
	require.NoError(t, err)
	assert.Equal(t, SourceStore, r.Source())
	assert.True(t, r.Persisted())
	assert.Equal(t, 9.5, r.Values()["total"])
	assert.True(t, time.UnixMilli(1700000000000).Equal(r.Values()["placed"].(time.Time)))
}

func TestNewFromJSONShapedItem(t *testing.T) {
	r, err := New(orderSchema(), map[string]any{
		"customer": map[string]any{"S": "c1"},
		"total":    map[string]any{"N": "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, SourceStore, r.Source())
	assert.Equal(t, int64(3), r.Values()["total"])
}

func TestConformAndKey(t *testing.T) {
	s := orderSchema()
	placed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r, err := New(s, map[string]any{"customer": "c1", "placed": placed, "junk": 1})
	require.NoError(t, err)

	r.Conform(map[string]any{"customer": "c1", "placed": placed})
	assert.NotContains(t, r.Values(), "junk")
	assert.Equal(t, map[string]any{"customer": "c1", "placed": placed}, r.Key())

	item, err := r.Item()
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "1704067200000"}, item["placed"])
}

func TestUnsupportedInput(t *testing.T) {
	_, err := New(orderSchema(), 42)
	require.Error(t, err)
}
