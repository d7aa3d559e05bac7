/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/shapestore/storagemodels"
)

// DataStore executes compiled requests against a table. Implementations map
// conditional check failures to errors.ErrConditionFailed.
type DataStore interface {
	// GetItem returns nil and no error when the item does not exist.
	GetItem(ctx context.Context, params *storagemodels.GetParams) (storagemodels.Item, error)

	PutItem(ctx context.Context, params *storagemodels.PutParams) error

	// UpdateItem returns the item as it is after the update.
	UpdateItem(ctx context.Context, params *storagemodels.UpdateParams) (storagemodels.Item, error)

	DeleteItem(ctx context.Context, params *storagemodels.DeleteParams) error

	Query(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.Page, error)

	Scan(ctx context.Context, params *storagemodels.ScanParams) (*storagemodels.Page, error)

	// Stream pages through every result of a query. The channel is closed when
	// the query is exhausted, fails, or ctx is done.
	Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[storagemodels.Item]
}
