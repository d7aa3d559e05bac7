/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package placeholder

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
)

func TestAllocator(t *testing.T) {
	a := New(0)
	assert.Equal(t, "#a0", a.Name("id"))
	assert.Equal(t, "#a0", a.Name("id"))
	assert.Equal(t, ":v1", a.Value(&types.AttributeValueMemberS{Value: "x"}))
	assert.Equal(t, "#a2.#a3[4].#a0", a.Path("address.lines.4.id"))

	lo, hi := a.Pair(&types.AttributeValueMemberN{Value: "1"}, &types.AttributeValueMemberN{Value: "2"})
	assert.Equal(t, ":v4_1", lo)
	assert.Equal(t, ":v4_2", hi)
	assert.Equal(t, 5, a.Next())

	assert.Equal(t, map[string]string{"#a0": "id", "#a2": "address", "#a3": "lines"}, a.Names())
	assert.Len(t, a.Values(), 3)
}

func TestPrefixes(t *testing.T) {
	a := WithPrefixes(0, "#qha", ":qhv")
	assert.Equal(t, "#qha0", a.Path("id"))
	assert.Equal(t, ":qhv1", a.Value(&types.AttributeValueMemberS{Value: "x"}))
}

func TestMerge(t *testing.T) {
	var dst map[string]string
	dst = Merge(dst, map[string]string{"#a0": "id"})
	dst = Merge(dst, map[string]string{"#a1": "name"})
	assert.Equal(t, map[string]string{"#a0": "id", "#a1": "name"}, dst)
	assert.Nil(t, Merge[string](nil, nil))
}
