/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/errors"
)

func userDefinition() Definition {
	return Definition{
		"id":     {Type: Types(attrtype.String), HashKey: true},
		"status": {Type: Types(attrtype.String), Index: []IndexDefinition{{Name: "byStatus", RangeKey: "createdAt"}}},
		"email":  {Type: Types(attrtype.String), Index: []IndexDefinition{{Local: true}}},
		"address": {Schema: Definition{
			"city": {Type: Types(attrtype.String)},
			"zip":  {Type: Types(attrtype.String)},
		}},
		"items": {Elements: []AttributeDefinition{{Schema: Definition{
			"sku": {Type: Types(attrtype.String)},
		}}}},
	}
}

func TestNewSchema(t *testing.T) {
	s, err := New(userDefinition(), WithTimestamps("createdAt", "updatedAt"))
	require.NoError(t, err)

	assert.Equal(t, "id", s.HashKey())
	assert.Equal(t, "", s.RangeKey())
	assert.Equal(t, attrtype.String, s.HashKeyType())
	assert.Equal(t, []string{"address", "createdAt", "email", "id", "items", "status", "updatedAt"}, s.TopLevel())

	created := s.Attribute("createdAt")
	require.NotNil(t, created)
	assert.Equal(t, attrtype.Date, created.Candidates[0].Descriptor.Name)

	assert.NotNil(t, s.Attribute("address.city"))
	assert.NotNil(t, s.Attribute("items.3.sku"))
	assert.Nil(t, s.Attribute("items.x"))
	assert.Nil(t, s.Attribute("address.country"))
	assert.Nil(t, s.Attribute("nope"))
}

func TestIndexes(t *testing.T) {
	s, err := New(userDefinition(), WithTimestamps("createdAt", "updatedAt"))
	require.NoError(t, err)

	assert.Equal(t, []IndexDescriptor{
		{IsTableIndex: true, Global: true, HashKey: "id"},
		{Name: "emailLocalIndex", HashKey: "id", RangeKey: "email"},
		{Name: "byStatus", Global: true, HashKey: "status", RangeKey: "createdAt"},
	}, s.Indexes())

	idx, ok := s.Index("byStatus")
	require.True(t, ok)
	assert.Equal(t, "status", idx.HashKey)
}

func TestDeclarationErrors(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{"no hash key", Definition{"a": {Type: Types(attrtype.String)}}},
		{"dotted name", Definition{"id": {Type: Types(attrtype.String), HashKey: true}, "a.b": {Type: Types(attrtype.String)}}},
		{"two hash keys", Definition{
			"id":  {Type: Types(attrtype.String), HashKey: true},
			"id2": {Type: Types(attrtype.String), HashKey: true},
		}},
		{"hash and range", Definition{"id": {Type: Types(attrtype.String), HashKey: true, RangeKey: true}}},
		{"nested key", Definition{
			"id":  {Type: Types(attrtype.String), HashKey: true},
			"sub": {Schema: Definition{"k": {Type: Types(attrtype.String), RangeKey: true}}},
		}},
		{"multi element list", Definition{
			"id":   {Type: Types(attrtype.String), HashKey: true},
			"list": {Elements: []AttributeDefinition{{Type: Types(attrtype.String)}, {Type: Types(attrtype.Number)}}},
		}},
		{"duplicate index", Definition{
			"id": {Type: Types(attrtype.String), HashKey: true},
			"a":  {Type: Types(attrtype.String), Index: []IndexDefinition{{Name: "dup"}}},
			"b":  {Type: Types(attrtype.String), Index: []IndexDefinition{{Name: "dup"}}},
		}},
		{"unknown type", Definition{"id": {Type: []TypeSpec{T("Widget")}, HashKey: true}}},
		{"no type", Definition{"id": {HashKey: true}}},
		{"combine source", Definition{
			"id":   {Type: Types(attrtype.String), HashKey: true},
			"full": {Type: []TypeSpec{Typed(attrtype.CombineOf(" ", "first"))}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.def)
			require.Error(t, err)
			assert.True(t, errors.IsSchemaDeclaration(err), "got %v", err)
		})
	}
}

func TestAttributesExpandsLists(t *testing.T) {
	s := MustNew(userDefinition(), WithTimestamps("createdAt", "updatedAt"))
	record := map[string]any{
		"id":    "u1",
		"items": []any{map[string]any{"sku": "a"}, map[string]any{"sku": "b"}},
	}
	assert.Equal(t, []string{
		"address", "address.city", "address.zip",
		"createdAt", "email", "id",
		"items", "items.0", "items.0.sku", "items.1", "items.1.sku",
		"status", "updatedAt",
	}, s.Attributes(record, nil))
}

func TestIndexRangeKeyMustBeDeclared(t *testing.T) {
	// createdAt only exists once timestamps are enabled
	_, err := New(userDefinition())
	require.Error(t, err)
	assert.True(t, errors.IsSchemaDeclaration(err))
}

func TestAttributeForFollowsChoices(t *testing.T) {
	s := MustNew(Definition{
		"id": {Type: Types(attrtype.String), HashKey: true},
		"data": {Type: []TypeSpec{
			MapOf(Definition{"name": {Type: Types(attrtype.String)}}),
			MapOf(Definition{"name": {Type: Types(attrtype.Number)}}),
		}},
	})
	first := s.AttributeFor("data.name", nil)
	require.NotNil(t, first)
	assert.Equal(t, attrtype.String, first.Candidates[0].Descriptor.Name)

	second := s.AttributeFor("data.name", map[string]int{"data": 1})
	require.NotNil(t, second)
	assert.Equal(t, attrtype.Number, second.Candidates[0].Descriptor.Name)
}

func TestAllowsUnknown(t *testing.T) {
	s := MustNew(Definition{"id": {Type: Types(attrtype.String), HashKey: true}},
		WithSaveUnknown("meta.**", "tags.*"))

	assert.True(t, s.AllowsUnknown("meta"))
	assert.True(t, s.AllowsUnknown("meta.a"))
	assert.True(t, s.AllowsUnknown("meta.a.b"))
	assert.True(t, s.AllowsUnknown("tags.x"))
	assert.False(t, s.AllowsUnknown("tags.x.y"))
	assert.False(t, s.AllowsUnknown("other"))

	all := MustNew(Definition{"id": {Type: Types(attrtype.String), HashKey: true}}, WithSaveUnknown())
	assert.True(t, all.AllowsUnknown("anything.at.all"))
}

func TestValidatorsAndDefaults(t *testing.T) {
	s := MustNew(Definition{
		"id":    {Type: Types(attrtype.String), HashKey: true},
		"email": {Type: Types(attrtype.String), Validate: regexp.MustCompile(`@`)},
		"age":   {Type: Types(attrtype.Number), Validate: func(v any) bool { f, _ := attrtype.ToFloat(v); return f >= 0 }},
		"kind":  {Type: Types(attrtype.String), Validate: "user", Default: func() any { return "user" }},
	})
	assert.True(t, s.Attribute("email").Valid("a@b"))
	assert.False(t, s.Attribute("email").Valid("ab"))
	assert.False(t, s.Attribute("age").Valid(-1))
	assert.True(t, s.Attribute("kind").Valid("user"))
	assert.False(t, s.Attribute("kind").Valid("admin"))
	assert.Equal(t, "user", s.Attribute("kind").DefaultValue())
	assert.True(t, s.Attribute("id").Valid("anything"))
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
name: user
settings:
  timestamps: {createdAt: createdAt, updatedAt: updatedAt}
  saveUnknown: ["meta.**"]
attributes:
  id: {type: String, hashKey: true}
  email:
    type: String
    validate: "^[^@]+@[^@]+$"
    required: true
  status:
    type: String
    default: active
    enum: [active, disabled]
    index:
      - name: byStatus
        rangeKey: createdAt
  tags: {type: {name: Set, element: String}}
  born: {type: {name: Date, storage: seconds}}
  full: {type: {name: Combine, attributes: [email, status], separator: "#"}}
  data: {type: [String, Number]}
  parent: {type: {name: Model, hashKey: id}}
  address:
    type: Map
    schema:
      city: {type: String}
`)
	s, name, err := ParseYAMLFile(data)
	require.NoError(t, err)
	assert.Equal(t, "user", name)
	assert.Equal(t, "id", s.HashKey())
	assert.True(t, s.Attribute("email").Required)
	assert.False(t, s.Attribute("email").Valid("nope"))
	assert.Equal(t, attrtype.StringSet, s.Attribute("tags").Candidates[0].Descriptor.Name)
	assert.Equal(t, attrtype.StorageSeconds, s.Attribute("born").Candidates[0].Descriptor.Settings.Storage)
	assert.Equal(t, []string{"String", "Number"}, s.Attribute("data").TypeNames())
	assert.NotNil(t, s.Attribute("address.city"))
	assert.NotNil(t, s.Attribute("updatedAt"))
	assert.True(t, s.AllowsUnknown("meta.x"))

	_, ok := s.Index("byStatus")
	assert.True(t, ok)

	_, err = ParseYAML([]byte(`attributes: {id: {type: Widget, hashKey: true}}`))
	require.Error(t, err)
	assert.True(t, errors.IsSchemaDeclaration(err))
}
