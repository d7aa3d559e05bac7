/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package shapestore

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/condition"
	"github.com/suparena/shapestore/datastore"
	"github.com/suparena/shapestore/errors"
	"github.com/suparena/shapestore/marshal"
	"github.com/suparena/shapestore/record"
	"github.com/suparena/shapestore/registry"
	"github.com/suparena/shapestore/request"
	"github.com/suparena/shapestore/resolver"
	"github.com/suparena/shapestore/schema"
	"github.com/suparena/shapestore/storagemodels"
	"github.com/suparena/shapestore/update"
	"github.com/suparena/shapestore/wire"
)

// Options configures a Model.
type Options struct {
	// Table defaults to the model name.
	Table string
	// ConsistentReads makes Get and table-index queries strongly consistent.
	ConsistentReads bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Registry defaults to registry.Default.
	Registry *registry.Registry
	// Clock stamps timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// Model binds one or more schemas of an entity kind to a table.
type Model struct {
	name       string
	table      string
	store      datastore.DataStore
	schemas    []*schema.Schema
	indexes    []schema.IndexDescriptor
	registry   *registry.Registry
	logger     *slog.Logger
	consistent bool
	now        func() time.Time
}

// Page is one page of decoded query or scan results.
type Page struct {
	Records          []*record.Record
	Count            int32
	ScannedCount     int32
	LastEvaluatedKey storagemodels.Item
}

type (
	GetOption   func(*request.Get)
	QueryOption func(*request.Query)
	ScanOption  func(*request.Scan)
)

// NewModel registers the schemas of name and their indexes, and binds them
// to store. The first schema supplies the key for key-only operations; every
// schema must agree on the key attributes.
func NewModel(name string, store datastore.DataStore, opts Options, schemas ...*schema.Schema) (*Model, error) {
	if len(schemas) == 0 {
		return nil, errors.NewValidationError("schemas", fmt.Sprintf("model %s needs at least one schema", name))
	}
	m := &Model{
		name:       name,
		table:      opts.Table,
		store:      store,
		schemas:    schemas,
		registry:   opts.Registry,
		logger:     opts.Logger,
		consistent: opts.ConsistentReads,
		now:        opts.Clock,
	}
	if m.table == "" {
		m.table = name
	}
	if m.registry == nil {
		m.registry = registry.Default
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}

	if err := m.registry.RegisterIndexes(m.table, schemas...); err != nil {
		return nil, err
	}
	if err := m.registry.RegisterModel(name, schemas...); err != nil {
		return nil, err
	}
	m.indexes, _ = m.registry.Indexes(m.table)
	m.logger = m.logger.With(slog.String("model", name), slog.String("table", m.table))
	return m, nil
}

// Name returns the entity kind.
func (m *Model) Name() string { return m.name }

// Table returns the table name.
func (m *Model) Table() string { return m.table }

// Schemas returns the model's schemas.
func (m *Model) Schemas() []*schema.Schema { return append([]*schema.Schema(nil), m.schemas...) }

func (m *Model) keySchema() *schema.Schema { return m.schemas[0] }

// New builds a pending record with the schema that fits input best.
func (m *Model) New(input any) (*record.Record, error) {
	values, ok := input.(map[string]any)
	if v, isValuer := input.(attrtype.Valuer); isValuer {
		values, ok = v.Values(), true
	}
	s := m.keySchema()
	if ok && len(m.schemas) > 1 && !wire.IsJSONShaped(values) {
		s = m.schemas[resolver.BestSchema(m.schemas, values, attrtype.ToWire)]
	}
	return record.New(s, input)
}

// Get reads the item with key. A missing item is an errors.ErrNotFound.
func (m *Model) Get(ctx context.Context, key map[string]any, opts ...GetOption) (*record.Record, error) {
	get := request.NewGet(m.table, m.keySchema(), key)
	if m.consistent {
		get.Consistent()
	}
	for _, opt := range opts {
		opt(get)
	}
	params, err := get.Compile()
	if err != nil {
		return nil, err
	}
	m.logger.Debug("get", slog.Any("key", key))

	item, err := m.store.GetItem(ctx, params)
	if err != nil {
		return nil, m.failed("get", err)
	}
	if item == nil {
		return nil, errors.NewNotFoundError(m.name, keyString(key))
	}
	return m.decode(item)
}

// Create stores a new record. An item with the same key makes it fail with
// errors.ErrAlreadyExists.
func (m *Model) Create(ctx context.Context, rec *record.Record) error {
	m.stamp(rec)
	item, err := rec.Item()
	if err != nil {
		return err
	}
	params, err := request.NewPut(m.table, rec.Schema(), item).Overwrite(false).Compile()
	if err != nil {
		return err
	}
	m.logger.Debug("create", slog.String("condition", deref(params.ConditionExpression)))

	if err := m.store.PutItem(ctx, params); err != nil {
		if errors.IsConditionFailed(err) {
			return errors.NewAlreadyExistsError(m.name, keyString(rec.Key()))
		}
		return m.failed("create", err)
	}
	return m.persisted(rec, item)
}

// Save stores rec, replacing any item with the same key. cond may be nil.
func (m *Model) Save(ctx context.Context, rec *record.Record, cond *condition.Condition) error {
	m.stamp(rec)
	item, err := rec.Item()
	if err != nil {
		return err
	}
	params, err := request.NewPut(m.table, rec.Schema(), item).Condition(cond).Compile()
	if err != nil {
		return err
	}
	m.logger.Debug("save", slog.String("condition", deref(params.ConditionExpression)))

	if err := m.store.PutItem(ctx, params); err != nil {
		return m.failed("save", err)
	}
	return m.persisted(rec, item)
}

// Update applies payload to the item with key and returns the updated record.
// cond may be nil. When payload omits attributes the current item is read
// first, so only attributes it actually has are removed.
func (m *Model) Update(ctx context.Context, key map[string]any, payload map[string]any, cond *condition.Condition) (*record.Record, error) {
	s := m.keySchema()
	wireKey, err := request.Key(s, key)
	if err != nil {
		return nil, err
	}
	compileOpts := []update.Option{update.WithClock(m.now)}
	if hasOmit(payload) {
		existing, err := m.existing(ctx, key)
		if err != nil {
			return nil, err
		}
		compileOpts = append(compileOpts, update.WithExisting(existing))
	}
	compiled, err := update.Compile(s, payload, compileOpts...)
	if err != nil {
		return nil, err
	}
	params, err := compiled.Params(m.table, wireKey, cond, request.Encoder(s))
	if err != nil {
		return nil, err
	}
	m.logger.Debug("update",
		slog.String("update", params.UpdateExpression),
		slog.String("condition", deref(params.ConditionExpression)))

	item, err := m.store.UpdateItem(ctx, params)
	if err != nil {
		return nil, m.failed("update", err)
	}
	return m.decode(item)
}

// Delete removes the item with key. cond may be nil.
func (m *Model) Delete(ctx context.Context, key map[string]any, cond *condition.Condition) error {
	params, err := request.NewDelete(m.table, m.keySchema(), key).Condition(cond).Compile()
	if err != nil {
		return err
	}
	m.logger.Debug("delete", slog.Any("key", key), slog.String("condition", deref(params.ConditionExpression)))

	if err := m.store.DeleteItem(ctx, params); err != nil {
		return m.failed("delete", err)
	}
	return nil
}

// Query reads one page of items matching cond through the best index.
func (m *Model) Query(ctx context.Context, cond *condition.Condition, opts ...QueryOption) (*Page, error) {
	params, err := m.compileQuery(cond, opts)
	if err != nil {
		return nil, err
	}
	page, err := m.store.Query(ctx, params)
	if err != nil {
		return nil, m.failed("query", err)
	}
	return m.page(page)
}

// Scan reads one page of items matching cond, which may be nil.
func (m *Model) Scan(ctx context.Context, cond *condition.Condition, opts ...ScanOption) (*Page, error) {
	scan := request.NewScan(m.table, m.keySchema(), cond)
	if m.consistent {
		scan.Consistent()
	}
	for _, opt := range opts {
		opt(scan)
	}
	params, err := scan.Compile()
	if err != nil {
		return nil, err
	}
	m.logger.Debug("scan", slog.String("filter", deref(params.FilterExpression)))

	page, err := m.store.Scan(ctx, params)
	if err != nil {
		return nil, m.failed("scan", err)
	}
	return m.page(page)
}

// Stream decodes every item matching cond in the background. Items that fail
// to decode are delivered with their error and the stream continues.
func (m *Model) Stream(ctx context.Context, cond *condition.Condition, opts []QueryOption, streamOpts ...storagemodels.StreamOption) (<-chan storagemodels.StreamResult[*record.Record], error) {
	params, err := m.compileQuery(cond, opts)
	if err != nil {
		return nil, err
	}
	options := storagemodels.ApplyStreamOptions(streamOpts...)
	out := make(chan storagemodels.StreamResult[*record.Record], max(options.BufferSize, 0))
	in := m.store.Stream(ctx, params, streamOpts...)

	go func() {
		defer close(out)
		for res := range in {
			decoded := storagemodels.StreamResult[*record.Record]{Raw: res.Raw, Error: res.Error, Meta: res.Meta}
			if res.Error == nil {
				decoded.Item, decoded.Error = m.decode(res.Item)
			}
			select {
			case <-ctx.Done():
				// drain so the producer can exit
				for range in {
				}
				return
			case out <- decoded:
			}
		}
	}()
	return out, nil
}

// existing returns the current values of the item with key, empty when the
// item does not exist.
func (m *Model) existing(ctx context.Context, key map[string]any) (map[string]any, error) {
	params, err := request.NewGet(m.table, m.keySchema(), key).Consistent().Compile()
	if err != nil {
		return nil, err
	}
	item, err := m.store.GetItem(ctx, params)
	if err != nil {
		return nil, m.failed("update", err)
	}
	if item == nil {
		return map[string]any{}, nil
	}
	rec, err := m.decode(item)
	if err != nil {
		return nil, err
	}
	return rec.Values(), nil
}

func hasOmit(values map[string]any) bool {
	for _, v := range values {
		if attrtype.IsOmit(v) {
			return true
		}
		if nested, ok := v.(map[string]any); ok && hasOmit(nested) {
			return true
		}
	}
	return false
}

func (m *Model) compileQuery(cond *condition.Condition, opts []QueryOption) (*storagemodels.QueryParams, error) {
	query := request.NewQuery(m.table, m.keySchema(), cond).Indexes(m.indexes)
	if m.consistent {
		query.Consistent()
	}
	for _, opt := range opts {
		opt(query)
	}
	params, err := query.Compile()
	if err != nil {
		return nil, err
	}
	m.logger.Debug("query",
		slog.String("index", deref(params.IndexName)),
		slog.String("key", params.KeyConditionExpression),
		slog.String("filter", deref(params.FilterExpression)))
	return params, nil
}

func (m *Model) page(page *storagemodels.Page) (*Page, error) {
	out := &Page{Count: page.Count, ScannedCount: page.ScannedCount, LastEvaluatedKey: page.LastEvaluatedKey}
	for _, item := range page.Items {
		rec, err := m.decode(item)
		if err != nil {
			return nil, err
		}
		out.Records = append(out.Records, rec)
	}
	return out, nil
}

func (m *Model) decode(item storagemodels.Item) (*record.Record, error) {
	rec, err := m.registry.Decode(m.name, item)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s item: %w", m.name, err)
	}
	return rec, nil
}

// stamp sets the updated-at timestamp, and the created-at one when missing.
func (m *Model) stamp(rec *record.Record) {
	ts := rec.Schema().Settings().Timestamps
	now := m.now()
	if ts.CreatedAt != "" {
		if v, ok := rec.Get(ts.CreatedAt); !ok || v == nil {
			rec.Set(ts.CreatedAt, now)
		}
	}
	if ts.UpdatedAt != "" {
		rec.Set(ts.UpdatedAt, now)
	}
}

// persisted conforms rec to what was stored.
func (m *Model) persisted(rec *record.Record, item storagemodels.Item) error {
	values, err := marshal.FromItem(rec.Schema(), item, marshal.LoadOptions())
	if err != nil {
		return err
	}
	rec.Conform(values)
	rec.MarkPersisted()
	return nil
}

func (m *Model) failed(op string, err error) error {
	if !errors.IsConditionFailed(err) {
		m.logger.Error(op+" failed", slog.Any("error", err))
	}
	return err
}

func keyString(key map[string]any) string {
	parts := make([]string, 0, len(key))
	for k, v := range key {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
