/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package update

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/condition"
	"github.com/suparena/shapestore/errors"
	"github.com/suparena/shapestore/schema"
)

func personSchema(t *testing.T, opts ...schema.Option) *schema.Schema {
	t.Helper()
	s, err := schema.New(schema.Definition{
		"id":       {Type: schema.Types(attrtype.String), HashKey: true},
		"age":      {Type: schema.Types(attrtype.Number), Validate: func(v any) bool { f, _ := attrtype.ToFloat(v); return f >= 0 }},
		"name":     {Type: schema.Types(attrtype.String)},
		"nickname": {Type: schema.Types(attrtype.String)},
		"visits":   {Type: schema.Types(attrtype.Number)},
		"tags":     {Type: schema.Types(attrtype.StringSet)},
		"log":      schema.Of(schema.ListOf(schema.AttributeDefinition{Type: schema.Types(attrtype.String)})),
		"role":     {Type: schema.Types(attrtype.String), Default: "user"},
		"email":    {Type: schema.Types(attrtype.String), Required: true},
		"status":   {Type: schema.Types(attrtype.String), Enum: []any{"active", "inactive"}},
		"first":    {Type: schema.Types(attrtype.String)},
		"last":     {Type: schema.Types(attrtype.String)},
		"full":     schema.Of(schema.Typed(attrtype.CombineOf(" ", "first", "last"))),
	}, opts...)
	require.NoError(t, err)
	return s
}

func TestSingleSet(t *testing.T) {
	compiled, err := Compile(personSchema(t), map[string]any{"age": 5})
	require.NoError(t, err)
	assert.Equal(t, "SET #a0 = :v1", compiled.Expression)
	assert.Equal(t, map[string]string{"#a0": "age"}, compiled.Names)
	assert.Equal(t, map[string]types.AttributeValue{":v1": &types.AttributeValueMemberN{Value: "5"}}, compiled.Values)
	assert.Equal(t, 2, compiled.Next)
	assert.Equal(t, []Clause{{Kind: Set, Path: "age", Text: "#a0 = :v1"}}, compiled.Clauses)
}

func TestOmitRemovesExisting(t *testing.T) {
	s := personSchema(t)

	compiled, err := Compile(s, map[string]any{"age": attrtype.Omit}, WithExisting(map[string]any{"id": "1", "age": 3}))
	require.NoError(t, err)
	assert.Equal(t, "REMOVE #a0", compiled.Expression)
	assert.Empty(t, compiled.Values)

	compiled, err = Compile(s, map[string]any{"age": attrtype.Omit})
	require.NoError(t, err)
	assert.Equal(t, "REMOVE #a0", compiled.Expression)

	_, err = Compile(s, map[string]any{"age": attrtype.Omit}, WithExisting(map[string]any{"id": "1"}))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestGroupedPayload(t *testing.T) {
	compiled, err := Compile(personSchema(t), map[string]any{
		"$SET":    map[string]any{"name": "Ada"},
		"$ADD":    map[string]any{"visits": 1},
		"$REMOVE": []string{"nickname"},
		"$DELETE": map[string]any{"tags": attrtype.NewSet("old")},
	})
	require.NoError(t, err)
	assert.Equal(t, "SET #a0 = :v1 ADD #a2 :v3 REMOVE #a4 DELETE #a5 :v6", compiled.Expression)
	assert.Equal(t, &types.AttributeValueMemberSS{Value: []string{"old"}}, compiled.Values[":v6"])
	assert.Equal(t, 7, compiled.Next)
}

func TestStartCounter(t *testing.T) {
	compiled, err := Compile(personSchema(t), map[string]any{"name": "Ada"}, WithStart(5))
	require.NoError(t, err)
	assert.Equal(t, "SET #a5 = :v6", compiled.Expression)
	assert.Equal(t, 7, compiled.Next)
}

func TestListAppend(t *testing.T) {
	compiled, err := Compile(personSchema(t), map[string]any{"$ADD": map[string]any{"log": []string{"x"}}})
	require.NoError(t, err)
	assert.Equal(t, "SET #a0 = list_append(#a0, :v1)", compiled.Expression)
}

func TestRemoveDefaultsAndRequired(t *testing.T) {
	s := personSchema(t)

	compiled, err := Compile(s, map[string]any{"$REMOVE": []string{"role"}})
	require.NoError(t, err)
	assert.Equal(t, "SET #a0 = :v1", compiled.Expression)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "user"}, compiled.Values[":v1"])

	_, err = Compile(s, map[string]any{"$REMOVE": []string{"email"}})
	require.Error(t, err)
	assert.Equal(t, errors.KindRequired, errors.KindOf(err))
}

func TestCombineAllOrNone(t *testing.T) {
	s := personSchema(t)

	_, err := Compile(s, map[string]any{"first": "Ada"})
	require.Error(t, err)
	assert.Equal(t, errors.KindCombine, errors.KindOf(err))

	compiled, err := Compile(s, map[string]any{"first": "Ada", "last": "Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "SET #a0 = :v1, #a2 = :v3, #a4 = :v5", compiled.Expression)
	assert.Equal(t, "full", compiled.Names["#a4"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "Ada Lovelace"}, compiled.Values[":v5"])
}

func TestSetChecks(t *testing.T) {
	s := personSchema(t)

	_, err := Compile(s, map[string]any{"age": -1})
	assert.Equal(t, errors.KindValidator, errors.KindOf(err))

	_, err = Compile(s, map[string]any{"status": "gone"})
	assert.Equal(t, errors.KindEnum, errors.KindOf(err))

	_, err = Compile(s, map[string]any{"age": "old"})
	assert.True(t, errors.IsTypeMismatch(err))

	_, err = Compile(s, map[string]any{"id": "2"})
	assert.True(t, errors.IsValidationError(err))

	_, err = Compile(s, map[string]any{"$PUSH": map[string]any{"age": 1}})
	assert.True(t, errors.IsValidationError(err))

	compiled, err := Compile(s, map[string]any{"junk": 1, "age": 2})
	require.NoError(t, err)
	assert.Equal(t, "SET #a0 = :v1", compiled.Expression)
}

func TestForcedDefaultAndTimestamps(t *testing.T) {
	s, err := schema.New(schema.Definition{
		"id":      {Type: schema.Types(attrtype.String), HashKey: true},
		"name":    {Type: schema.Types(attrtype.String)},
		"version": {Type: schema.Types(attrtype.Number), Default: 2, ForceDefault: true},
	}, schema.WithTimestamps("createdAt", "updatedAt"))
	require.NoError(t, err)

	now := time.UnixMilli(1700000000000)
	compiled, err := Compile(s, map[string]any{"name": "x"}, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	assert.Equal(t, "SET #a0 = :v1, #a2 = :v3, #a4 = :v5", compiled.Expression)
	assert.Equal(t, map[string]string{"#a0": "name", "#a2": "updatedAt", "#a4": "version"}, compiled.Names)
	assert.Equal(t, &types.AttributeValueMemberN{Value: "1700000000000"}, compiled.Values[":v3"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "2"}, compiled.Values[":v5"])
}

func TestParamsContinueCounter(t *testing.T) {
	compiled, err := Compile(personSchema(t), map[string]any{"age": 5})
	require.NoError(t, err)

	key := map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "1"}}
	params, err := compiled.Params("people", key, condition.Where("age").Lt(10), nil)
	require.NoError(t, err)
	assert.Equal(t, "SET #a0 = :v1", params.UpdateExpression)
	assert.Equal(t, "#a2 < :v3", *params.ConditionExpression)
	assert.Equal(t, map[string]string{"#a0": "age", "#a2": "age"}, params.Names)
	assert.Len(t, params.Values, 2)

	input := params.UpdateItemInput()
	assert.Equal(t, types.ReturnValueAllNew, input.ReturnValues)

	params, err = compiled.Params("people", key, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, params.ConditionExpression)
}

func TestParamsRejectBrokenCondition(t *testing.T) {
	compiled, err := Compile(personSchema(t), map[string]any{"age": 5})
	require.NoError(t, err)

	key := map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: "1"}}
	params, err := compiled.Params("people", key, condition.New().Eq(1), nil)
	require.Error(t, err)
	assert.True(t, errors.IsBuilderState(err))
	assert.Nil(t, params)
}
