/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/shapestore/storagemodels"
)

// Stream pages through every result of the query in the background.
func (d *Store) Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[storagemodels.Item] {
	options := storagemodels.ApplyStreamOptions(append(append([]storagemodels.StreamOption{}, d.streamDefaults...), opts...)...)
	if options.BufferSize < 0 {
		options.BufferSize = 0
	}

	resultCh := make(chan storagemodels.StreamResult[storagemodels.Item], options.BufferSize)
	go d.streamWorker(ctx, params, options, resultCh)
	return resultCh
}

// streamWorker handles the actual streaming logic
func (d *Store) streamWorker(
	ctx context.Context,
	params *storagemodels.QueryParams,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[storagemodels.Item],
) {
	defer close(resultCh)

	var itemIndex int64
	var pageNumber int
	var skipped []error
	startTime := time.Now()

	reportProgress := func(lastKey storagemodels.Item) {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.StreamProgress{
			ItemsProcessed: itemIndex,
			PagesProcessed: pageNumber,
			LastKey:        lastKey,
			Errors:         skipped,
			StartTime:      startTime,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(progress.ItemsProcessed) / elapsed
		}
		options.ProgressHandler(progress)
	}

	meta := func() storagemodels.StreamMeta {
		return storagemodels.StreamMeta{Index: itemIndex, PageNumber: pageNumber, Timestamp: time.Now()}
	}

	input := params.QueryInput()
	if options.PageSize > 0 {
		input.Limit = aws.Int32(options.PageSize)
	}

	for {
		if ctx.Err() != nil {
			return
		}

		out, err := d.queryWithRetry(ctx, input, options)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if options.ErrorHandler != nil && options.ErrorHandler(err) {
				d.logger.Warn("stream page failed, retrying",
					slog.String("table", params.TableName),
					slog.Int("page", pageNumber+1),
					slog.Any("error", err))
				skipped = append(skipped, err)
				continue
			}
			select {
			case <-ctx.Done():
			case resultCh <- storagemodels.StreamResult[storagemodels.Item]{Error: fmt.Errorf("query failed: %w", err), Meta: meta()}:
			}
			return
		}

		pageNumber++
		for _, item := range out.Items {
			result := storagemodels.StreamResult[storagemodels.Item]{
				Item: item,
				Raw:  copyItem(item),
				Meta: meta(),
			}
			select {
			case <-ctx.Done():
				return
			case resultCh <- result:
			}
			itemIndex++
		}

		reportProgress(out.LastEvaluatedKey)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	reportProgress(nil)
}

// queryWithRetry executes a query with configurable retry logic
func (d *Store) queryWithRetry(
	ctx context.Context,
	input *sdk.QueryInput,
	options storagemodels.StreamOptions,
) (*sdk.QueryOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		out, err := d.client.Query(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}

		if attempt < options.MaxRetries {
			backoff := time.Duration(attempt+1) * options.RetryBackoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("query failed after %d retries: %w", options.MaxRetries, lastErr)
}

func copyItem(item storagemodels.Item) storagemodels.Item {
	out := make(storagemodels.Item, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var throughput *types.ProvisionedThroughputExceededException
	var limit *types.RequestLimitExceeded
	var internal *types.InternalServerError
	if stderrors.As(err, &throughput) || stderrors.As(err, &limit) || stderrors.As(err, &internal) {
		return true
	}

	var retryable interface{ IsRetryable() bool }
	if stderrors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}
