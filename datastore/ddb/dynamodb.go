/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/shapestore/datastore"
	"github.com/suparena/shapestore/errors"
	"github.com/suparena/shapestore/storagemodels"
)

// Store implements datastore.DataStore on top of DynamoDB.
type Store struct {
	client         API
	logger         *slog.Logger
	streamDefaults []storagemodels.StreamOption
}

var _ datastore.DataStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithStreamOptions sets stream options applied before the per-call ones.
func WithStreamOptions(opts ...storagemodels.StreamOption) Option {
	return func(s *Store) {
		s.streamDefaults = append(s.streamDefaults, opts...)
	}
}

// New wraps client.
func New(client API, opts ...Option) *Store {
	s := &Store{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetItem reads one item. A missing item is returned as nil without error.
func (d *Store) GetItem(ctx context.Context, params *storagemodels.GetParams) (storagemodels.Item, error) {
	out, err := d.client.GetItem(ctx, params.GetItemInput())
	if err != nil {
		return nil, fmt.Errorf("get item from %s: %w", params.TableName, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

func (d *Store) PutItem(ctx context.Context, params *storagemodels.PutParams) error {
	_, err := d.client.PutItem(ctx, params.PutItemInput())
	if err != nil {
		return d.writeError("put", params.TableName, params.ConditionExpression, err)
	}
	return nil
}

// UpdateItem applies the update and returns the attributes DynamoDB returned,
// the whole new item by default.
func (d *Store) UpdateItem(ctx context.Context, params *storagemodels.UpdateParams) (storagemodels.Item, error) {
	out, err := d.client.UpdateItem(ctx, params.UpdateItemInput())
	if err != nil {
		return nil, d.writeError("update", params.TableName, params.ConditionExpression, err)
	}
	return out.Attributes, nil
}

func (d *Store) DeleteItem(ctx context.Context, params *storagemodels.DeleteParams) error {
	_, err := d.client.DeleteItem(ctx, params.DeleteItemInput())
	if err != nil {
		return d.writeError("delete", params.TableName, params.ConditionExpression, err)
	}
	return nil
}

// Query fetches a single page.
func (d *Store) Query(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.Page, error) {
	out, err := d.client.Query(ctx, params.QueryInput())
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	d.logger.Debug("query page",
		slog.String("table", params.TableName),
		slog.String("index", aws.ToString(params.IndexName)),
		slog.Int("count", int(out.Count)),
		slog.Any("lastKey", keyValues(out.LastEvaluatedKey)))
	return &storagemodels.Page{
		Items:            out.Items,
		Count:            out.Count,
		ScannedCount:     out.ScannedCount,
		LastEvaluatedKey: out.LastEvaluatedKey,
	}, nil
}

// Scan fetches a single page.
func (d *Store) Scan(ctx context.Context, params *storagemodels.ScanParams) (*storagemodels.Page, error) {
	out, err := d.client.Scan(ctx, params.ScanInput())
	if err != nil {
		return nil, fmt.Errorf("scan error: %w", err)
	}
	d.logger.Debug("scan page",
		slog.String("table", params.TableName),
		slog.Int("count", int(out.Count)),
		slog.Int("scanned", int(out.ScannedCount)),
		slog.Any("lastKey", keyValues(out.LastEvaluatedKey)))
	return &storagemodels.Page{
		Items:            out.Items,
		Count:            out.Count,
		ScannedCount:     out.ScannedCount,
		LastEvaluatedKey: out.LastEvaluatedKey,
	}, nil
}

// writeError maps a failed conditional write to errors.ErrConditionFailed.
func (d *Store) writeError(op, table string, condition *string, err error) error {
	var ccf *types.ConditionalCheckFailedException
	if stderrors.As(err, &ccf) {
		d.logger.Debug("conditional write rejected",
			slog.String("operation", op),
			slog.String("table", table),
			slog.String("condition", aws.ToString(condition)))
		return fmt.Errorf("%w: %w", errors.NewConditionFailedError(op, aws.ToString(condition)), err)
	}
	return fmt.Errorf("%s item in %s: %w", op, table, err)
}

// keyValues decodes a pagination key for logging.
func keyValues(key storagemodels.Item) map[string]any {
	if len(key) == 0 {
		return nil
	}
	var out map[string]any
	if err := attributevalue.UnmarshalMap(key, &out); err != nil {
		return nil
	}
	return out
}
