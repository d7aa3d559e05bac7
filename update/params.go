/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package update

import (
	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/suparena/shapestore/condition"
	"github.com/suparena/shapestore/placeholder"
	"github.com/suparena/shapestore/storagemodels"
	"github.com/suparena/shapestore/wire"
)

// Params assembles the update request for the item at key. cond may be nil;
// it is compiled from c.Next so its placeholders never collide with the
// update's.
func (c Compiled) Params(table string, key wire.Item, cond *condition.Condition, enc condition.Encoder) (*storagemodels.UpdateParams, error) {
	params := &storagemodels.UpdateParams{
		TableName:        table,
		Key:              key,
		UpdateExpression: c.Expression,
	}
	if err := cond.Err(); err != nil {
		return nil, err
	}
	params.Names = placeholder.Merge(nil, c.Names)
	params.Values = placeholder.Merge(nil, c.Values)
	if cond.Empty() {
		return params, nil
	}
	compiled, _, err := cond.Compile(c.Next, enc)
	if err != nil {
		return nil, err
	}
	params.ConditionExpression = aws.String(compiled.Expression)
	params.Names = placeholder.Merge(params.Names, compiled.Names)
	params.Values = placeholder.Merge(params.Values, compiled.Values)
	return params, nil
}
