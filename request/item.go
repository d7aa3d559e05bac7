/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package request

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/suparena/shapestore/condition"
	"github.com/suparena/shapestore/schema"
	"github.com/suparena/shapestore/storagemodels"
	"github.com/suparena/shapestore/wire"
)

// Get compiles a read of one item by primary key.
type Get struct {
	table      string
	schema     *schema.Schema
	key        map[string]any
	attributes []string
	consistent bool
}

// NewGet reads the item whose key attributes are taken from key.
func NewGet(table string, s *schema.Schema, key map[string]any) *Get {
	return &Get{table: table, schema: s, key: key}
}

func (g *Get) Attributes(attrs ...string) *Get {
	g.attributes = attrs
	return g
}

func (g *Get) Consistent() *Get {
	g.consistent = true
	return g
}

// Compile builds the get parameters.
func (g *Get) Compile() (*storagemodels.GetParams, error) {
	key, err := Key(g.schema, g.key)
	if err != nil {
		return nil, err
	}
	proj, names, err := projection(g.attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to build projection: %w", err)
	}
	params := &storagemodels.GetParams{
		TableName:            g.table,
		Key:                  key,
		ProjectionExpression: proj,
	}
	params.Names = names
	if g.consistent {
		params.ConsistentRead = aws.Bool(true)
	}
	return params, nil
}

// Put compiles a write of one already encoded item.
type Put struct {
	table     string
	schema    *schema.Schema
	item      wire.Item
	cond      *condition.Condition
	overwrite bool
}

// NewPut writes item, replacing any item with the same key.
func NewPut(table string, s *schema.Schema, item wire.Item) *Put {
	return &Put{table: table, schema: s, item: item, overwrite: true}
}

// Condition guards the write.
func (p *Put) Condition(cond *condition.Condition) *Put {
	p.cond = cond
	return p
}

// Overwrite(false) makes the write fail when an item with the key exists.
func (p *Put) Overwrite(overwrite bool) *Put {
	p.overwrite = overwrite
	return p
}

// Compile builds the put parameters.
func (p *Put) Compile() (*storagemodels.PutParams, error) {
	if err := p.cond.Err(); err != nil {
		return nil, err
	}
	cond := p.cond
	if !p.overwrite {
		guard := condition.Where(p.schema.HashKey()).Not().Exists()
		if !cond.Empty() {
			guard = condition.New().Parenthesis(cond).And().Where(p.schema.HashKey()).Not().Exists()
		}
		cond = guard
	}
	compiled, _, err := compiledCondition(cond, 0, p.schema)
	if err != nil {
		return nil, err
	}
	params := &storagemodels.PutParams{
		TableName: p.table,
		Item:      p.item,
	}
	if !compiled.Empty() {
		params.ConditionExpression = aws.String(compiled.Expression)
		params.Names = compiled.Names
		params.Values = compiled.Values
	}
	return params, nil
}

// Delete compiles a removal of one item by primary key.
type Delete struct {
	table  string
	schema *schema.Schema
	key    map[string]any
	cond   *condition.Condition
}

// NewDelete removes the item whose key attributes are taken from key.
func NewDelete(table string, s *schema.Schema, key map[string]any) *Delete {
	return &Delete{table: table, schema: s, key: key}
}

func (d *Delete) Condition(cond *condition.Condition) *Delete {
	d.cond = cond
	return d
}

// Compile builds the delete parameters.
func (d *Delete) Compile() (*storagemodels.DeleteParams, error) {
	key, err := Key(d.schema, d.key)
	if err != nil {
		return nil, err
	}
	compiled, _, err := compiledCondition(d.cond, 0, d.schema)
	if err != nil {
		return nil, err
	}
	params := &storagemodels.DeleteParams{
		TableName: d.table,
		Key:       key,
	}
	if !compiled.Empty() {
		params.ConditionExpression = aws.String(compiled.Expression)
		params.Names = compiled.Names
		params.Values = compiled.Values
	}
	return params, nil
}
