/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package condition

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/shapestore/errors"
	"github.com/suparena/shapestore/placeholder"
)

func TestTwoClauseAnd(t *testing.T) {
	compiled, next, err := Where("a").Eq(1).And().Filter("b").Eq(2).Compile(0, nil)
	require.NoError(t, err)
	assert.Equal(t, "#a0 = :v1 AND #a2 = :v3", compiled.Expression)
	assert.Equal(t, map[string]string{"#a0": "a", "#a2": "b"}, compiled.Names)
	assert.Equal(t, map[string]types.AttributeValue{
		":v1": &types.AttributeValueMemberN{Value: "1"},
		":v3": &types.AttributeValueMemberN{Value: "2"},
	}, compiled.Values)
	assert.Equal(t, 4, next)
	require.Len(t, compiled.Tokens, 3)
	assert.Equal(t, TokenAnd, compiled.Tokens[1].Kind)
}

func TestImplicitAnd(t *testing.T) {
	compiled, _, err := Where("a").Eq(1).Where("b").Eq(2).Compile(0, nil)
	require.NoError(t, err)
	assert.Equal(t, "#a0 = :v1 AND #a2 = :v3", compiled.Expression)
}

func TestStartCounter(t *testing.T) {
	compiled, next, err := Where("a").Eq("x").Compile(7, nil)
	require.NoError(t, err)
	assert.Equal(t, "#a7 = :v8", compiled.Expression)
	assert.Equal(t, 9, next)
}

func TestReusesNamePlaceholder(t *testing.T) {
	compiled, _, err := Where("age").Gt(1).And().Where("age").Lt(5).Compile(0, nil)
	require.NoError(t, err)
	assert.Equal(t, "#a0 > :v1 AND #a0 < :v2", compiled.Expression)
	assert.Len(t, compiled.Names, 1)
}

func TestComparatorWithoutAttribute(t *testing.T) {
	c := New().Eq(1)
	_, _, err := c.Compile(0, nil)
	require.Error(t, err)
	assert.True(t, errors.IsBuilderState(err))
	assert.Equal(t, "condition builder: comparator called in state NoAttributeSelected", err.Error())

	// a comparator consumes the selection
	_, _, err = Where("a").Eq(1).Eq(2).Compile(0, nil)
	assert.True(t, errors.IsBuilderState(err))
}

func TestNot(t *testing.T) {
	tests := []struct {
		cond *Condition
		want string
	}{
		{Where("a").Not().Eq(1), "#a0 <> :v1"},
		{Where("a").Not().Lt(1), "#a0 >= :v1"},
		{Where("a").Not().Gt(1), "#a0 <= :v1"},
		{Where("a").Not().Exists(), "attribute_not_exists(#a0)"},
		{New().Not().Where("a").Contains("x"), "NOT contains(#a0, :v1)"},
		{Where("a").Not().Not().Eq(1), "#a0 = :v1"},
	}
	for _, tt := range tests {
		compiled, _, err := tt.cond.Compile(0, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, compiled.Expression)
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		cond *Condition
		want string
	}{
		{Where("a").Between(1, 5), "#a0 BETWEEN :v1_1 AND :v1_2"},
		{Where("a").BeginsWith("pre"), "begins_with(#a0, :v1)"},
		{Where("a").Exists(), "attribute_exists(#a0)"},
		{Where("a").In("x", "y"), "#a0 IN (:v1, :v2)"},
		{Where("a").AttributeType("S"), "attribute_type(#a0, :v1)"},
		{Where("a").Ne(nil), "#a0 <> :v1"},
		{Where("a.b.0").Eq(1), "#a0.#a1[0] = :v2"},
	}
	for _, tt := range tests {
		compiled, _, err := tt.cond.Compile(0, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, compiled.Expression)
	}
}

func TestGroups(t *testing.T) {
	cond := Where("a").Eq(1).And().Group(func(c *Condition) {
		c.Where("b").Eq(2).Or().Where("c").Eq(3)
	})
	compiled, next, err := cond.Compile(0, nil)
	require.NoError(t, err)
	assert.Equal(t, "#a0 = :v1 AND (#a2 = :v3 OR #a4 = :v5)", compiled.Expression)
	assert.Equal(t, 6, next)
	require.Len(t, compiled.Tokens, 3)
	group := compiled.Tokens[2]
	assert.Equal(t, TokenGroup, group.Kind)
	assert.Equal(t, []string{"#a2", "#a4"}, group.Names)
	assert.Equal(t, []string{":v3", ":v5"}, group.Values)
	assert.Len(t, compiled.Names, 3)

	bad := Where("a").Eq(1).Parenthesis(New().Eq(2))
	_, _, err = bad.Compile(0, nil)
	assert.True(t, errors.IsBuilderState(err))
}

func TestGroupRequiresComparator(t *testing.T) {
	c := Where("a").Eq(1).And().Parenthesis(Where("b"))
	require.Error(t, c.Err())
	assert.True(t, errors.IsBuilderState(c.Err()))
	assert.Equal(t, "condition builder: group called in state AttributeSelected", c.Err().Error())

	_, _, err := Where("a").Eq(1).Group(func(sub *Condition) {
		sub.Where("b").Eq(2).Or().Where("c")
	}).Compile(0, nil)
	assert.True(t, errors.IsBuilderState(err))

	var none *Condition
	assert.NoError(t, none.Err())
}

func TestCombinatorTrimming(t *testing.T) {
	compiled, _, err := New().And().Where("a").Eq(1).Or().Compile(0, nil)
	require.NoError(t, err)
	assert.Equal(t, "#a0 = :v1", compiled.Expression)

	compiled, _, err = Where("a").Eq(1).And().Or().Where("b").Eq(2).Compile(0, nil)
	require.NoError(t, err)
	assert.Equal(t, "#a0 = :v1 OR #a2 = :v3", compiled.Expression)

	empty, next, err := New().Compile(3, nil)
	require.NoError(t, err)
	assert.True(t, empty.Empty())
	assert.Equal(t, 3, next)
}

func TestInRequiresValues(t *testing.T) {
	_, _, err := Where("a").In().Compile(0, nil)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestKeyEligibilityAndRebind(t *testing.T) {
	compiled, _, err := Where("id").Eq(5).And().Where("name").Contains("x").And().Where("at").Between(1, 2).Compile(0, nil)
	require.NoError(t, err)
	id, name, at := compiled.Tokens[0], compiled.Tokens[2], compiled.Tokens[4]

	assert.True(t, id.KeyEligible(true))
	assert.False(t, name.KeyEligible(false))
	assert.True(t, name.Function())
	assert.False(t, at.KeyEligible(true))
	assert.True(t, at.KeyEligible(false))

	a := placeholder.WithPrefixes(0, "#qha", ":qhv")
	rebound := id.Rebind(a)
	assert.Equal(t, "#qha0 = :qhv1", rebound.Text)
	assert.Equal(t, map[string]string{"#qha0": "id"}, a.Names())
	assert.Equal(t, &types.AttributeValueMemberN{Value: "5"}, a.Values()[":qhv1"])
}

func TestEncoder(t *testing.T) {
	enc := func(attr string, v any) (types.AttributeValue, error) {
		return &types.AttributeValueMemberS{Value: attr + ":" + v.(string)}, nil
	}
	compiled, _, err := Where("k").Eq("x").Compile(0, enc)
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "k:x"}, compiled.Values[":v1"])
}
