/*
Package datastore defines the persistence boundary of shapestore.

A DataStore executes the parameters compiled by the request and update
packages and returns raw DynamoDB items:

	type DataStore interface {
	    GetItem(ctx context.Context, params *storagemodels.GetParams) (storagemodels.Item, error)
	    PutItem(ctx context.Context, params *storagemodels.PutParams) error
	    UpdateItem(ctx context.Context, params *storagemodels.UpdateParams) (storagemodels.Item, error)
	    DeleteItem(ctx context.Context, params *storagemodels.DeleteParams) error
	    Query(ctx context.Context, params *storagemodels.QueryParams) (*storagemodels.Page, error)
	    Scan(ctx context.Context, params *storagemodels.ScanParams) (*storagemodels.Page, error)
	    Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[storagemodels.Item]
	}

Implementations:
  - ddb: AWS DynamoDB through aws-sdk-go-v2
  - mock: in-memory store for tests

Schema handling stays above this layer; a DataStore never sees records.
*/
package datastore
