/*
Package ddb implements datastore.DataStore with aws-sdk-go-v2.

A Store forwards compiled parameters to DynamoDB unchanged. Conditional check
failures surface as errors.ErrConditionFailed:

	cfg, err := config.Load("")
	store, err := ddb.Open(ctx, cfg, ddb.WithLogger(logger))

	err = store.PutItem(ctx, params)
	if errors.IsConditionFailed(err) {
	    // the item already exists
	}

Streaming:
Stream pages through a query in the background, retrying throttled pages
with a linear backoff:

	results := store.Stream(ctx, params,
	    storagemodels.WithBufferSize(100),
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	    storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
	        logger.Info("stream progress", "items", p.ItemsProcessed)
	    }),
	)

Open applies the stream settings from config before any per-call option.
*/
package ddb
