/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/suparena/shapestore/config"
	"github.com/suparena/shapestore/storagemodels"
)

// API is the subset of the DynamoDB client used by Store.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	Scan(ctx context.Context, params *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
}

var _ API = (*sdk.Client)(nil)

// NewClient initializes a DynamoDB client from cfg. Static credentials are
// used when both keys are configured, otherwise the default chain applies.
func NewClient(ctx context.Context, cfg *config.Config) (*sdk.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWS.Region),
	}
	if cfg.AWS.HasStaticCredentials() {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKeyID, cfg.AWS.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	var clientOpts []func(*sdk.Options)
	if cfg.DynamoDB.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *sdk.Options) {
			o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
		})
	}
	return sdk.NewFromConfig(awsCfg, clientOpts...), nil
}

// Open builds a client from cfg and wraps it in a Store carrying the
// configured stream settings.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Store, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defaults := WithStreamOptions(
		storagemodels.WithPageSize(cfg.DynamoDB.StreamPageSize),
		storagemodels.WithMaxRetries(cfg.DynamoDB.StreamMaxRetries),
		storagemodels.WithRetryBackoff(cfg.DynamoDB.StreamRetryBackoff),
	)
	store := New(client, append([]Option{defaults}, opts...)...)
	store.logger.Info("dynamodb client initialized",
		slog.String("region", cfg.AWS.Region),
		slog.String("table", cfg.DynamoDB.TableName),
		slog.String("endpoint", cfg.DynamoDB.Endpoint))
	return store, nil
}
