/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/shapestore/datastore"
	"github.com/suparena/shapestore/errors"
	"github.com/suparena/shapestore/storagemodels"
)

// Call records one request received by the mock.
type Call struct {
	Operation string
	Params    any
}

// DataStore is an in-memory datastore.DataStore for tests. It evaluates the
// compiled expressions itself, so requests behave as they would on a table
// whose primary key is hashKey and rangeKey.
type DataStore struct {
	mu       sync.RWMutex
	hashKey  string
	rangeKey string
	data     map[string]storagemodels.Item
	indexes  map[string]index
	calls    []Call

	queryFunc   func(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.Page, error)
	scanFunc    func(ctx context.Context, params *storagemodels.ScanParams) (*storagemodels.Page, error)
	streamFunc  func(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[storagemodels.Item]
	getError    error
	putError    error
	deleteError error
	updateError error
}

var _ datastore.DataStore = (*DataStore)(nil)

type index struct {
	hashKey  string
	rangeKey string
}

// New creates a mock table keyed by hashKey and, when not empty, rangeKey.
func New(hashKey, rangeKey string) *DataStore {
	return &DataStore{
		hashKey:  hashKey,
		rangeKey: rangeKey,
		data:     make(map[string]storagemodels.Item),
		indexes:  make(map[string]index),
	}
}

// WithIndex declares a secondary index so queries on it are ordered by its
// range key.
func (m *DataStore) WithIndex(name, hashKey, rangeKey string) *DataStore {
	m.indexes[name] = index{hashKey: hashKey, rangeKey: rangeKey}
	return m
}

// WithQueryFunc sets a custom query function for testing
func (m *DataStore) WithQueryFunc(f func(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.Page, error)) *DataStore {
	m.queryFunc = f
	return m
}

// WithScanFunc sets a custom scan function for testing
func (m *DataStore) WithScanFunc(f func(ctx context.Context, params *storagemodels.ScanParams) (*storagemodels.Page, error)) *DataStore {
	m.scanFunc = f
	return m
}

// WithStreamFunc sets a custom stream function for testing
func (m *DataStore) WithStreamFunc(f func(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[storagemodels.Item]) *DataStore {
	m.streamFunc = f
	return m
}

// WithGetError makes GetItem return an error
func (m *DataStore) WithGetError(err error) *DataStore {
	m.getError = err
	return m
}

// WithPutError makes PutItem return an error
func (m *DataStore) WithPutError(err error) *DataStore {
	m.putError = err
	return m
}

// WithDeleteError makes DeleteItem return an error
func (m *DataStore) WithDeleteError(err error) *DataStore {
	m.deleteError = err
	return m
}

// WithUpdateError makes UpdateItem return an error
func (m *DataStore) WithUpdateError(err error) *DataStore {
	m.updateError = err
	return m
}

func (m *DataStore) record(op string, params any) {
	m.calls = append(m.calls, Call{Operation: op, Params: params})
}

// GetItem returns a copy of the stored item, or nil.
func (m *DataStore) GetItem(ctx context.Context, params *storagemodels.GetParams) (storagemodels.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetItem", params)
	if m.getError != nil {
		return nil, m.getError
	}

	key, err := m.key(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return project(clone(item), params.ProjectionExpression, params.Names), nil
}

// PutItem stores the item when its condition holds.
func (m *DataStore) PutItem(ctx context.Context, params *storagemodels.PutParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("PutItem", params)
	if m.putError != nil {
		return m.putError
	}

	key, err := m.key(params.Item)
	if err != nil {
		return err
	}
	if err := m.check("put", params.ConditionExpression, params.Placeholders, m.data[key]); err != nil {
		return err
	}
	m.data[key] = clone(params.Item)
	return nil
}

// UpdateItem applies the update expression, creating the item when missing,
// and returns the new item.
func (m *DataStore) UpdateItem(ctx context.Context, params *storagemodels.UpdateParams) (storagemodels.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateItem", params)
	if m.updateError != nil {
		return nil, m.updateError
	}

	key, err := m.key(params.Key)
	if err != nil {
		return nil, err
	}
	current := m.data[key]
	if err := m.check("update", params.ConditionExpression, params.Placeholders, current); err != nil {
		return nil, err
	}

	next := clone(current)
	if next == nil {
		next = clone(params.Key)
	}
	if err := newExpression(params.Placeholders).apply(params.UpdateExpression, next); err != nil {
		return nil, errors.NewValidationError("UpdateExpression", err.Error())
	}
	m.data[key] = next
	return clone(next), nil
}

// DeleteItem removes the item when its condition holds. Deleting a missing
// item succeeds, as it does on DynamoDB.
func (m *DataStore) DeleteItem(ctx context.Context, params *storagemodels.DeleteParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteItem", params)
	if m.deleteError != nil {
		return m.deleteError
	}

	key, err := m.key(params.Key)
	if err != nil {
		return err
	}
	if err := m.check("delete", params.ConditionExpression, params.Placeholders, m.data[key]); err != nil {
		return err
	}
	delete(m.data, key)
	return nil
}

// Query evaluates the key condition and the filter over every stored item.
// Results are ordered by the range key of the queried index.
func (m *DataStore) Query(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.Page, error) {
	m.mu.Lock()
	m.record("Query", params)
	m.mu.Unlock()
	if m.queryFunc != nil {
		return m.queryFunc(ctx, params)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	expr := newExpression(params.Placeholders)
	matches, err := m.match(expr, params.KeyConditionExpression)
	if err != nil {
		return nil, err
	}
	m.order(matches, m.sortKey(params), params.ScanIndexForward == nil || *params.ScanIndexForward)
	return m.page(matches, expr, params.FilterExpression, params.ExclusiveStartKey, params.Limit,
		params.Select, params.ProjectionExpression, params.Names)
}

// Scan evaluates the filter over every stored item. Segments split the
// stored items by position.
func (m *DataStore) Scan(ctx context.Context, params *storagemodels.ScanParams) (*storagemodels.Page, error) {
	m.mu.Lock()
	m.record("Scan", params)
	m.mu.Unlock()
	if m.scanFunc != nil {
		return m.scanFunc(ctx, params)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	expr := newExpression(params.Placeholders)
	matches, err := m.match(expr, "")
	if err != nil {
		return nil, err
	}
	m.order(matches, "", true)
	if params.Segment != nil && params.TotalSegments != nil {
		var seg []storagemodels.Item
		for i, item := range matches {
			if int32(i)%*params.TotalSegments == *params.Segment {
				seg = append(seg, item)
			}
		}
		matches = seg
	}
	return m.page(matches, expr, params.FilterExpression, params.ExclusiveStartKey, params.Limit,
		params.Select, params.ProjectionExpression, params.Names)
}

// Stream pages through Query.
func (m *DataStore) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[storagemodels.Item] {
	if m.streamFunc != nil {
		return m.streamFunc(ctx, params, opts...)
	}

	options := storagemodels.ApplyStreamOptions(opts...)
	resultChan := make(chan storagemodels.StreamResult[storagemodels.Item], max(options.BufferSize, 0))

	go func() {
		defer close(resultChan)

		query := *params
		if options.PageSize > 0 {
			query.Limit = aws.Int32(options.PageSize)
		}
		var index int64
		for pageNumber := 1; ; pageNumber++ {
			page, err := m.Query(ctx, &query)
			if err != nil {
				select {
				case <-ctx.Done():
				case resultChan <- storagemodels.StreamResult[storagemodels.Item]{Error: err}:
				}
				return
			}
			for _, item := range page.Items {
				select {
				case <-ctx.Done():
					return
				case resultChan <- storagemodels.StreamResult[storagemodels.Item]{
					Item: item,
					Raw:  clone(item),
					Meta: storagemodels.StreamMeta{Index: index, PageNumber: pageNumber},
				}:
					index++
				}
			}
			if options.ProgressHandler != nil {
				options.ProgressHandler(storagemodels.StreamProgress{
					ItemsProcessed: index,
					PagesProcessed: pageNumber,
					LastKey:        page.LastEvaluatedKey,
				})
			}
			if len(page.LastEvaluatedKey) == 0 {
				return
			}
			query.ExclusiveStartKey = page.LastEvaluatedKey
		}
	}()

	return resultChan
}

func (m *DataStore) check(op string, condition *string, p storagemodels.Placeholders, current storagemodels.Item) error {
	if condition == nil {
		return nil
	}
	ok, err := newExpression(p).eval(*condition, current)
	if err != nil {
		return errors.NewValidationError("ConditionExpression", err.Error())
	}
	if !ok {
		return errors.NewConditionFailedError(op, *condition)
	}
	return nil
}

func (m *DataStore) match(expr expression, keyCondition string) ([]storagemodels.Item, error) {
	var out []storagemodels.Item
	for _, item := range m.data {
		ok, err := expr.eval(keyCondition, item)
		if err != nil {
			return nil, errors.NewValidationError("KeyConditionExpression", err.Error())
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, nil
}

// order sorts by the given range attribute, then by primary key.
func (m *DataStore) order(items []storagemodels.Item, rangeAttr string, ascending bool) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if rangeAttr != "" {
			if c, ok := compare(a[rangeAttr], b[rangeAttr]); ok && c != 0 {
				return (c < 0) == ascending
			}
		}
		ka, _ := m.key(a)
		kb, _ := m.key(b)
		return (ka < kb) == ascending
	})
}

// page applies the start key, the limit and then the filter, the way DynamoDB
// evaluates a page.
func (m *DataStore) page(items []storagemodels.Item, expr expression, filter *string, start storagemodels.Item,
	limit *int32, sel types.Select, projection *string, names map[string]string) (*storagemodels.Page, error) {
	if len(start) > 0 {
		startKey, err := m.key(start)
		if err != nil {
			return nil, err
		}
		for i, item := range items {
			if k, _ := m.key(item); k == startKey {
				items = items[i+1:]
				break
			}
		}
	}

	out := &storagemodels.Page{}
	if limit != nil && int(*limit) < len(items) {
		items = items[:*limit]
		out.LastEvaluatedKey = m.keyOf(items[len(items)-1])
	}
	out.ScannedCount = int32(len(items))

	for _, item := range items {
		if filter != nil {
			ok, err := expr.eval(*filter, item)
			if err != nil {
				return nil, errors.NewValidationError("FilterExpression", err.Error())
			}
			if !ok {
				continue
			}
		}
		out.Count++
		if sel != types.SelectCount {
			out.Items = append(out.Items, project(clone(item), projection, names))
		}
	}
	return out, nil
}

// sortKey is the range key of the queried index, or of the key condition
// when the index is unknown.
func (m *DataStore) sortKey(params *storagemodels.QueryParams) string {
	if params.IndexName == nil {
		return m.rangeKey
	}
	if idx, ok := m.indexes[*params.IndexName]; ok {
		return idx.rangeKey
	}
	return rangeName(params)
}

func rangeName(params *storagemodels.QueryParams) string {
	for placeholder, name := range params.Names {
		if strings.HasPrefix(placeholder, "#qra") {
			return name
		}
	}
	return ""
}

func project(item storagemodels.Item, projection *string, names map[string]string) storagemodels.Item {
	if projection == nil || item == nil {
		return item
	}
	out := make(storagemodels.Item)
	for _, p := range strings.Split(*projection, ",") {
		p = strings.TrimSpace(p)
		name, ok := names[p]
		if !ok {
			name = p
		}
		if v, ok := item[name]; ok {
			out[name] = v
		}
	}
	return out
}

func (m *DataStore) keyOf(item storagemodels.Item) storagemodels.Item {
	key := storagemodels.Item{m.hashKey: item[m.hashKey]}
	if m.rangeKey != "" {
		key[m.rangeKey] = item[m.rangeKey]
	}
	return key
}

func (m *DataStore) key(item storagemodels.Item) (string, error) {
	hash, ok := scalar(item[m.hashKey])
	if !ok {
		return "", errors.NewValidationError(m.hashKey, fmt.Sprintf("missing key attribute %s", m.hashKey))
	}
	if m.rangeKey == "" {
		return hash, nil
	}
	rng, ok := scalar(item[m.rangeKey])
	if !ok {
		return "", errors.NewValidationError(m.rangeKey, fmt.Sprintf("missing key attribute %s", m.rangeKey))
	}
	return hash + "|" + rng, nil
}

func scalar(v types.AttributeValue) (string, bool) {
	switch t := v.(type) {
	case *types.AttributeValueMemberS:
		return "S:" + t.Value, true
	case *types.AttributeValueMemberN:
		return "N:" + t.Value, true
	case *types.AttributeValueMemberB:
		return fmt.Sprintf("B:%x", t.Value), true
	}
	return "", false
}

// Helper methods for testing

// Calls returns the requests received so far.
func (m *DataStore) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Call(nil), m.calls...)
}

// SetItems replaces the stored items.
func (m *DataStore) SetItems(items ...storagemodels.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data := make(map[string]storagemodels.Item, len(items))
	for _, item := range items {
		key, err := m.key(item)
		if err != nil {
			return err
		}
		data[key] = clone(item)
	}
	m.data = data
	return nil
}

// Items returns a copy of the stored items in primary key order.
func (m *DataStore) Items() []storagemodels.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]storagemodels.Item, 0, len(m.data))
	for _, item := range m.data {
		out = append(out, clone(item))
	}
	m.order(out, "", true)
	return out
}

// Count returns the number of stored items
func (m *DataStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Clear removes all data
func (m *DataStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]storagemodels.Item)
	m.calls = nil
}

// clone deep-copies documents so stored items never alias caller values.
func clone(item storagemodels.Item) storagemodels.Item {
	if item == nil {
		return nil
	}
	out := make(storagemodels.Item, len(item))
	for k, v := range item {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v types.AttributeValue) types.AttributeValue {
	switch t := v.(type) {
	case *types.AttributeValueMemberM:
		return &types.AttributeValueMemberM{Value: clone(t.Value)}
	case *types.AttributeValueMemberL:
		list := make([]types.AttributeValue, len(t.Value))
		for i, e := range t.Value {
			list[i] = cloneValue(e)
		}
		return &types.AttributeValueMemberL{Value: list}
	case *types.AttributeValueMemberSS:
		return &types.AttributeValueMemberSS{Value: append([]string(nil), t.Value...)}
	case *types.AttributeValueMemberNS:
		return &types.AttributeValueMemberNS{Value: append([]string(nil), t.Value...)}
	}
	return v
}
