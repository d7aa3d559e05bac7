/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/shapestore/datastore/mock"
	"github.com/suparena/shapestore/errors"
	"github.com/suparena/shapestore/storagemodels"
)

func s(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }
func n(v string) types.AttributeValue { return &types.AttributeValueMemberN{Value: v} }

func score(user, game, points string) storagemodels.Item {
	return storagemodels.Item{"user": s(user), "game": s(game), "points": n(points)}
}

func newScores(t *testing.T) *mock.DataStore {
	t.Helper()
	store := mock.New("user", "game")
	require.NoError(t, store.SetItems(
		score("ada", "chess", "30"),
		score("ada", "go", "10"),
		score("ada", "poker", "20"),
		score("bob", "chess", "5"),
	))
	return store
}

func TestBasicOperations(t *testing.T) {
	ctx := context.Background()
	store := mock.New("id", "")
	item := storagemodels.Item{"id": s("1"), "name": s("Ada")}
	notExists := &storagemodels.PutParams{
		Placeholders:        storagemodels.Placeholders{Names: map[string]string{"#a0": "id"}},
		TableName:           "t",
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(#a0)"),
	}

	require.NoError(t, store.PutItem(ctx, notExists))
	err := store.PutItem(ctx, notExists)
	assert.True(t, errors.IsConditionFailed(err))

	got, err := store.GetItem(ctx, &storagemodels.GetParams{Key: storagemodels.Item{"id": s("1")}})
	require.NoError(t, err)
	assert.Equal(t, item, got)

	require.NoError(t, store.DeleteItem(ctx, &storagemodels.DeleteParams{Key: storagemodels.Item{"id": s("1")}}))
	got, err = store.GetItem(ctx, &storagemodels.GetParams{Key: storagemodels.Item{"id": s("1")}})
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, store.Count())

	_, err = store.GetItem(ctx, &storagemodels.GetParams{Key: storagemodels.Item{"name": s("x")}})
	assert.True(t, errors.IsValidationError(err))

	ops := make([]string, 0)
	for _, c := range store.Calls() {
		ops = append(ops, c.Operation)
	}
	assert.Equal(t, []string{"PutItem", "PutItem", "GetItem", "DeleteItem", "GetItem", "GetItem"}, ops)
}

func TestUpdateItem(t *testing.T) {
	ctx := context.Background()
	store := mock.New("id", "")
	require.NoError(t, store.SetItems(storagemodels.Item{
		"id":       s("1"),
		"visits":   n("2"),
		"nickname": s("ace"),
		"tags":     &types.AttributeValueMemberSS{Value: []string{"a", "b"}},
		"log":      &types.AttributeValueMemberL{Value: []types.AttributeValue{s("x")}},
		"address":  &types.AttributeValueMemberM{Value: storagemodels.Item{"city": s("Paris")}},
	}))

	got, err := store.UpdateItem(ctx, &storagemodels.UpdateParams{
		Placeholders: storagemodels.Placeholders{
			Names: map[string]string{"#a0": "name", "#a2": "log", "#a4": "address", "#a5": "city", "#a7": "visits", "#a9": "nickname", "#a10": "tags"},
			Values: map[string]types.AttributeValue{
				":v1":  s("Ada"),
				":v3":  &types.AttributeValueMemberL{Value: []types.AttributeValue{s("y")}},
				":v6":  s("London"),
				":v8":  n("3"),
				":v11": &types.AttributeValueMemberSS{Value: []string{"a"}},
			},
		},
		Key:              storagemodels.Item{"id": s("1")},
		UpdateExpression: "SET #a0 = :v1, #a2 = list_append(#a2, :v3), #a4.#a5 = :v6 ADD #a7 :v8 REMOVE #a9 DELETE #a10 :v11",
	})
	require.NoError(t, err)
	assert.Equal(t, storagemodels.Item{
		"id":      s("1"),
		"name":    s("Ada"),
		"visits":  n("5"),
		"tags":    &types.AttributeValueMemberSS{Value: []string{"b"}},
		"log":     &types.AttributeValueMemberL{Value: []types.AttributeValue{s("x"), s("y")}},
		"address": &types.AttributeValueMemberM{Value: storagemodels.Item{"city": s("London")}},
	}, got)

	created, err := store.UpdateItem(ctx, &storagemodels.UpdateParams{
		Placeholders: storagemodels.Placeholders{
			Names:  map[string]string{"#a0": "name"},
			Values: map[string]types.AttributeValue{":v1": s("Bob")},
		},
		Key:              storagemodels.Item{"id": s("2")},
		UpdateExpression: "SET #a0 = :v1",
	})
	require.NoError(t, err)
	assert.Equal(t, storagemodels.Item{"id": s("2"), "name": s("Bob")}, created)

	_, err = store.UpdateItem(ctx, &storagemodels.UpdateParams{
		Placeholders: storagemodels.Placeholders{
			Names:  map[string]string{"#a0": "name", "#a2": "name"},
			Values: map[string]types.AttributeValue{":v1": s("Eve"), ":v3": s("Nobody")},
		},
		Key:                 storagemodels.Item{"id": s("2")},
		UpdateExpression:    "SET #a0 = :v1",
		ConditionExpression: aws.String("#a2 = :v3"),
	})
	assert.True(t, errors.IsConditionFailed(err))
}

func TestQuery(t *testing.T) {
	store := newScores(t)
	params := &storagemodels.QueryParams{
		Placeholders: storagemodels.Placeholders{
			Names:  map[string]string{"#qha0": "user", "#qra0": "game", "#a0": "points"},
			Values: map[string]types.AttributeValue{":qhv1": s("ada"), ":qrv1": s("d"), ":v1": n("15")},
		},
		KeyConditionExpression: "#qha0 = :qhv1",
		FilterExpression:       aws.String("#a0 > :v1"),
	}

	page, err := store.Query(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, []storagemodels.Item{score("ada", "chess", "30"), score("ada", "poker", "20")}, page.Items)
	assert.Equal(t, int32(2), page.Count)
	assert.Equal(t, int32(3), page.ScannedCount)

	params.KeyConditionExpression = "#qha0 = :qhv1 AND #qra0 > :qrv1"
	params.FilterExpression = nil
	params.ScanIndexForward = aws.Bool(false)
	params.Limit = aws.Int32(1)
	page, err = store.Query(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, []storagemodels.Item{score("ada", "poker", "20")}, page.Items)
	assert.Equal(t, storagemodels.Item{"user": s("ada"), "game": s("poker")}, page.LastEvaluatedKey)

	params.ExclusiveStartKey = page.LastEvaluatedKey
	page, err = store.Query(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, []storagemodels.Item{score("ada", "go", "10")}, page.Items)
	assert.Nil(t, page.LastEvaluatedKey)
}

func TestScan(t *testing.T) {
	store := newScores(t)
	params := &storagemodels.ScanParams{
		Placeholders: storagemodels.Placeholders{
			Names:  map[string]string{"#a0": "game", "#a2": "points"},
			Values: map[string]types.AttributeValue{":v1": s("chess"), ":v3_1": n("1"), ":v3_2": n("12")},
		},
		FilterExpression: aws.String("#a0 = :v1 OR (#a2 BETWEEN :v3_1 AND :v3_2)"),
	}

	page, err := store.Scan(context.Background(), params)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, int32(4), page.ScannedCount)

	params.FilterExpression = aws.String("NOT #a0 IN (:v1)")
	params.Select = types.SelectCount
	page, err = store.Scan(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, int32(2), page.Count)
	assert.Empty(t, page.Items)

	total := 0
	for seg := int32(0); seg < 2; seg++ {
		page, err := store.Scan(context.Background(), &storagemodels.ScanParams{Segment: aws.Int32(seg), TotalSegments: aws.Int32(2)})
		require.NoError(t, err)
		total += len(page.Items)
	}
	assert.Equal(t, 4, total)

	_, err = store.Scan(context.Background(), &storagemodels.ScanParams{FilterExpression: aws.String("size(#a0) > :v1"), Placeholders: params.Placeholders})
	assert.True(t, errors.IsValidationError(err))
}

func TestStream(t *testing.T) {
	store := newScores(t)
	params := &storagemodels.QueryParams{
		Placeholders: storagemodels.Placeholders{
			Names:  map[string]string{"#qha0": "user"},
			Values: map[string]types.AttributeValue{":qhv1": s("ada")},
		},
		KeyConditionExpression: "#qha0 = :qhv1",
	}

	var games []string
	var pages []int
	for res := range store.Stream(context.Background(), params, storagemodels.WithPageSize(2)) {
		require.NoError(t, res.Error)
		games = append(games, res.Item["game"].(*types.AttributeValueMemberS).Value)
		pages = append(pages, res.Meta.PageNumber)
	}
	assert.Equal(t, []string{"chess", "go", "poker"}, games)
	assert.Equal(t, []int{1, 1, 2}, pages)
}

func TestErrorSimulation(t *testing.T) {
	ctx := context.Background()
	boom := stderrors.New("boom")
	store := mock.New("id", "").WithPutError(boom).WithUpdateError(boom).WithDeleteError(boom).WithGetError(boom).
		WithQueryFunc(func(context.Context, *storagemodels.QueryParams) (*storagemodels.Page, error) {
			return nil, boom
		})

	assert.ErrorIs(t, store.PutItem(ctx, &storagemodels.PutParams{}), boom)
	_, err := store.UpdateItem(ctx, &storagemodels.UpdateParams{})
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.DeleteItem(ctx, &storagemodels.DeleteParams{}), boom)
	_, err = store.GetItem(ctx, &storagemodels.GetParams{})
	assert.ErrorIs(t, err, boom)

	var results []storagemodels.StreamResult[storagemodels.Item]
	for res := range store.Stream(ctx, &storagemodels.QueryParams{}) {
		results = append(results, res)
	}
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Error, boom)
}
