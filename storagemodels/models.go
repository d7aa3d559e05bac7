/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is one record in wire form.
type Item = map[string]types.AttributeValue

// Placeholders carries the expression attribute names and values shared by
// every expression of one request.
type Placeholders struct {
	// Names maps name placeholders (#a0) to attribute names.
	Names map[string]string
	// Values maps value placeholders (:v1) to wire values.
	Values map[string]types.AttributeValue
}

func (p Placeholders) names() map[string]string {
	if len(p.Names) == 0 {
		return nil
	}
	return p.Names
}

func (p Placeholders) values() map[string]types.AttributeValue {
	if len(p.Values) == 0 {
		return nil
	}
	return p.Values
}

// QueryParams defines parameters for a DynamoDB Query operation.
// Used for both paged queries and streams.
type QueryParams struct {
	Placeholders

	// TableName is the DynamoDB table name.
	TableName string
	// KeyConditionExpression is the primary condition for the query.
	KeyConditionExpression string
	// FilterExpression is an optional filter expression.
	FilterExpression *string
	// ProjectionExpression limits the returned attributes.
	ProjectionExpression *string
	// IndexName is optional if you wish to query a secondary index.
	IndexName *string
	// Limit defines an optional limit per query page.
	Limit *int32
	// ExclusiveStartKey for pagination
	ExclusiveStartKey Item
	// ScanIndexForward specifies the order for index traversal.
	// If true (default), traversal is in ascending order.
	// If false, traversal is in descending order.
	ScanIndexForward *bool
	// ConsistentRead requests a strongly consistent read.
	ConsistentRead *bool
	// Select is COUNT when only the number of matches is wanted.
	Select types.Select
}

// QueryInput builds the SDK input.
func (p *QueryParams) QueryInput() *dynamodb.QueryInput {
	return &dynamodb.QueryInput{
		TableName:                 aws.String(p.TableName),
		KeyConditionExpression:    aws.String(p.KeyConditionExpression),
		FilterExpression:          p.FilterExpression,
		ProjectionExpression:      p.ProjectionExpression,
		ExpressionAttributeNames:  p.names(),
		ExpressionAttributeValues: p.values(),
		IndexName:                 p.IndexName,
		Limit:                     p.Limit,
		ExclusiveStartKey:         p.ExclusiveStartKey,
		ScanIndexForward:          p.ScanIndexForward,
		ConsistentRead:            p.ConsistentRead,
		Select:                    p.Select,
	}
}

// ScanParams defines parameters for a DynamoDB Scan operation.
type ScanParams struct {
	Placeholders

	TableName            string
	FilterExpression     *string
	ProjectionExpression *string
	IndexName            *string
	Limit                *int32
	ExclusiveStartKey    Item
	ConsistentRead       *bool
	Select               types.Select
	// Segment and TotalSegments are set for parallel scans.
	Segment       *int32
	TotalSegments *int32
}

// ScanInput builds the SDK input.
func (p *ScanParams) ScanInput() *dynamodb.ScanInput {
	return &dynamodb.ScanInput{
		TableName:                 aws.String(p.TableName),
		FilterExpression:          p.FilterExpression,
		ProjectionExpression:      p.ProjectionExpression,
		ExpressionAttributeNames:  p.names(),
		ExpressionAttributeValues: p.values(),
		IndexName:                 p.IndexName,
		Limit:                     p.Limit,
		ExclusiveStartKey:         p.ExclusiveStartKey,
		ConsistentRead:            p.ConsistentRead,
		Select:                    p.Select,
		Segment:                   p.Segment,
		TotalSegments:             p.TotalSegments,
	}
}

// GetParams reads one item by primary key.
type GetParams struct {
	Placeholders

	TableName            string
	Key                  Item
	ProjectionExpression *string
	ConsistentRead       *bool
}

// GetItemInput builds the SDK input.
func (p *GetParams) GetItemInput() *dynamodb.GetItemInput {
	return &dynamodb.GetItemInput{
		TableName:                aws.String(p.TableName),
		Key:                      p.Key,
		ProjectionExpression:     p.ProjectionExpression,
		ExpressionAttributeNames: p.names(),
		ConsistentRead:           p.ConsistentRead,
	}
}

// PutParams writes one item.
type PutParams struct {
	Placeholders

	TableName           string
	Item                Item
	ConditionExpression *string
}

// PutItemInput builds the SDK input.
func (p *PutParams) PutItemInput() *dynamodb.PutItemInput {
	return &dynamodb.PutItemInput{
		TableName:                 aws.String(p.TableName),
		Item:                      p.Item,
		ConditionExpression:       p.ConditionExpression,
		ExpressionAttributeNames:  p.names(),
		ExpressionAttributeValues: p.values(),
	}
}

// DeleteParams removes one item by primary key.
type DeleteParams struct {
	Placeholders

	TableName           string
	Key                 Item
	ConditionExpression *string
}

// DeleteItemInput builds the SDK input.
func (p *DeleteParams) DeleteItemInput() *dynamodb.DeleteItemInput {
	return &dynamodb.DeleteItemInput{
		TableName:                 aws.String(p.TableName),
		Key:                       p.Key,
		ConditionExpression:       p.ConditionExpression,
		ExpressionAttributeNames:  p.names(),
		ExpressionAttributeValues: p.values(),
	}
}

// UpdateParams applies an update expression to one item.
type UpdateParams struct {
	Placeholders

	TableName           string
	Key                 Item
	UpdateExpression    string
	ConditionExpression *string
	// ReturnValues defaults to ALL_NEW when empty.
	ReturnValues types.ReturnValue
}

// UpdateItemInput builds the SDK input.
func (p *UpdateParams) UpdateItemInput() *dynamodb.UpdateItemInput {
	rv := p.ReturnValues
	if rv == "" {
		rv = types.ReturnValueAllNew
	}
	return &dynamodb.UpdateItemInput{
		TableName:                 aws.String(p.TableName),
		Key:                       p.Key,
		UpdateExpression:          aws.String(p.UpdateExpression),
		ConditionExpression:       p.ConditionExpression,
		ExpressionAttributeNames:  p.names(),
		ExpressionAttributeValues: p.values(),
		ReturnValues:              rv,
	}
}

// Page is one page of query or scan results.
type Page struct {
	Items            []Item
	Count            int32
	ScannedCount     int32
	LastEvaluatedKey Item
}
