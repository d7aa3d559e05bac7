/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package wire

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/shapestore/attrtype"
)

func TestMarshalScalars(t *testing.T) {
	tests := []struct {
		in   any
		want types.AttributeValue
	}{
		{"x", &types.AttributeValueMemberS{Value: "x"}},
		{42, &types.AttributeValueMemberN{Value: "42"}},
		{1.25, &types.AttributeValueMemberN{Value: "1.25"}},
		{true, &types.AttributeValueMemberBOOL{Value: true}},
		{nil, &types.AttributeValueMemberNULL{Value: true}},
		{[]byte("hi"), &types.AttributeValueMemberB{Value: []byte("hi")}},
	}
	for _, tt := range tests {
		got, err := Marshal(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestMarshalSets(t *testing.T) {
	ss, err := Marshal(attrtype.NewSet("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberSS{Value: []string{"a", "b"}}, ss)

	ns, err := Marshal(attrtype.NewSet(1, 2.5))
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberNS{Value: []string{"1", "2.5"}}, ns)

	empty, err := Marshal(attrtype.Set{})
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = Marshal(attrtype.Set{"a", 1})
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	record := map[string]any{
		"id":     "u1",
		"age":    int64(30),
		"score":  1.5,
		"active": true,
		"none":   nil,
		"blob":   []byte{1, 2},
		"tags":   attrtype.Set{"a", "b"},
		"nums":   attrtype.Set{int64(1), int64(2)},
		"list":   []any{"x", int64(1)},
		"nested": map[string]any{"city": "Oslo"},
	}
	item, err := MarshalMap(record)
	require.NoError(t, err)
	assert.Equal(t, "M", Tag(item["nested"]))
	assert.Equal(t, "NS", Tag(item["nums"]))

	back, err := UnmarshalMap(item)
	require.NoError(t, err)
	assert.Equal(t, record, back)
}

func TestMarshalMapSkipsOmitAndEmptySets(t *testing.T) {
	item, err := MarshalMap(map[string]any{
		"id":   "u1",
		"gone": attrtype.Omit,
		"tags": attrtype.Set{},
	})
	require.NoError(t, err)
	assert.Len(t, item, 1)
	assert.Contains(t, item, "id")
}

func TestJSONShaped(t *testing.T) {
	raw := map[string]any{
		"id":   map[string]any{"S": "u1"},
		"age":  map[string]any{"N": "42"},
		"tags": map[string]any{"SS": []any{"a"}},
		"addr": map[string]any{"M": map[string]any{"city": map[string]any{"S": "Oslo"}}},
		"blob": map[string]any{"B": "AQI="},
	}
	assert.True(t, IsJSONShaped(raw))
	assert.False(t, IsJSONShaped(map[string]any{"id": "u1"}))
	assert.False(t, IsJSONShaped(map[string]any{"id": map[string]any{"X": 1}}))
	assert.False(t, IsJSONShaped(map[string]any{}))

	item, err := FromJSON(raw)
	require.NoError(t, err)
	values, err := UnmarshalMap(item)
	require.NoError(t, err)
	assert.Equal(t, "u1", values["id"])
	assert.Equal(t, int64(42), values["age"])
	assert.Equal(t, attrtype.Set{"a"}, values["tags"])
	assert.Equal(t, map[string]any{"city": "Oslo"}, values["addr"])
	assert.Equal(t, []byte{1, 2}, values["blob"])
}
