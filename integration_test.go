//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package shapestore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/shapestore"
	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/condition"
	"github.com/suparena/shapestore/config"
	"github.com/suparena/shapestore/datastore/ddb"
	"github.com/suparena/shapestore/errors"
	"github.com/suparena/shapestore/registry"
	"github.com/suparena/shapestore/schema"
	"github.com/suparena/shapestore/storagemodels"
)

// The integration table has a string hash key "id" and no range key.
func setupLiveModel(t *testing.T) *shapestore.Model {
	t.Helper()
	cfg, err := config.Load("test")
	if err != nil {
		t.Skipf("Skipping integration test: %v", err)
	}
	store, err := ddb.Open(context.Background(), cfg)
	require.NoError(t, err)

	s := schema.MustNew(schema.Definition{
		"id":     {Type: schema.Types(attrtype.String), HashKey: true},
		"email":  {Type: schema.Types(attrtype.String), Required: true},
		"tags":   {Type: schema.Types(attrtype.StringSet)},
		"visits": {Type: schema.Types(attrtype.Number)},
	}, schema.WithTimestamps("createdAt", "updatedAt"))

	model, err := shapestore.NewModel("integration-user", store, shapestore.Options{
		Table:           cfg.DynamoDB.TableName,
		ConsistentReads: true,
		Registry:        registry.New(),
	}, s)
	require.NoError(t, err)
	return model
}

func TestIntegrationLifecycle(t *testing.T) {
	model := setupLiveModel(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	id := "shapestore-" + time.Now().Format("20060102150405.000")
	key := map[string]any{"id": id}
	defer model.Delete(ctx, key, nil)

	rec, err := model.New(map[string]any{"id": id, "email": "it@example.com", "tags": attrtype.NewSet("a", "b")})
	require.NoError(t, err)
	require.NoError(t, model.Create(ctx, rec))
	assert.True(t, errors.IsAlreadyExists(model.Create(ctx, rec)))

	updated, err := model.Update(ctx, key, map[string]any{
		"$ADD":    map[string]any{"visits": 2},
		"$DELETE": map[string]any{"tags": attrtype.NewSet("a")},
	}, condition.Where("email").Eq("it@example.com"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Values()["visits"])

	got, err := model.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "it@example.com", got.Values()["email"])

	ch, err := model.Stream(ctx, condition.Where("id").Eq(id), nil, storagemodels.WithPageSize(10))
	require.NoError(t, err)
	count := 0
	for res := range ch {
		require.NoError(t, res.Error)
		count++
	}
	assert.Equal(t, 1, count)

	require.NoError(t, model.Delete(ctx, key, nil))
	_, err = model.Get(ctx, key)
	assert.True(t, errors.IsNotFound(err))
}
