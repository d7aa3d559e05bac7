/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package request

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/shapestore/condition"
	"github.com/suparena/shapestore/errors"
	"github.com/suparena/shapestore/schema"
	"github.com/suparena/shapestore/storagemodels"
	"github.com/suparena/shapestore/wire"
)

// Sort orders query results by range key.
type Sort int

const (
	Ascending Sort = iota
	Descending
)

// settings are the request fields layered on after expressions compile.
type settings struct {
	limit      *int32
	startAt    wire.Item
	attributes []string
	consistent bool
	count      bool
}

func (s *settings) selectValue() types.Select {
	if s.count {
		return types.SelectCount
	}
	return ""
}

// Query compiles a condition into a query against the table or one of its
// secondary indexes.
type Query struct {
	settings
	table   string
	schema  *schema.Schema
	cond    *condition.Condition
	indexes []schema.IndexDescriptor
	using   string
	sort    Sort
}

// NewQuery starts a query on table. cond must compare the hash key of some
// index for equality.
func NewQuery(table string, s *schema.Schema, cond *condition.Condition) *Query {
	return &Query{table: table, schema: s, cond: cond}
}

// Limit caps the number of items evaluated per page.
func (q *Query) Limit(n int32) *Query {
	q.limit = aws.Int32(n)
	return q
}

// StartAt continues from a previous page's last evaluated key.
func (q *Query) StartAt(key wire.Item) *Query {
	q.startAt = key
	return q
}

// Attributes projects the returned attributes.
func (q *Query) Attributes(attrs ...string) *Query {
	q.attributes = attrs
	return q
}

// Consistent requests strongly consistent reads. It is ignored on global
// secondary indexes.
func (q *Query) Consistent() *Query {
	q.consistent = true
	return q
}

// Count returns only the number of matching items.
func (q *Query) Count() *Query {
	q.count = true
	return q
}

// Sort sets the range key order.
func (q *Query) Sort(dir Sort) *Query {
	q.sort = dir
	return q
}

// Using names the index to query instead of selecting one.
func (q *Query) Using(index string) *Query {
	q.using = index
	return q
}

// Indexes overrides the index catalog of the schema.
func (q *Query) Indexes(indexes []schema.IndexDescriptor) *Query {
	q.indexes = indexes
	return q
}

func (q *Query) catalog() []schema.IndexDescriptor {
	if q.indexes != nil {
		return q.indexes
	}
	return q.schema.Indexes()
}

func (q *Query) index(chart Chart) (schema.IndexDescriptor, error) {
	if q.using == "" {
		return SelectIndex(q.catalog(), chart)
	}
	for _, idx := range q.catalog() {
		if !idx.IsTableIndex && idx.Name == q.using {
			return idx, nil
		}
	}
	return schema.IndexDescriptor{}, errors.NewValidationError("index", fmt.Sprintf("unknown index %q", q.using))
}

// Compile builds the query parameters.
func (q *Query) Compile() (*storagemodels.QueryParams, error) {
	if err := q.cond.Err(); err != nil {
		return nil, err
	}
	if q.cond.Empty() {
		return nil, errors.NewUnindexableQueryError()
	}
	compiled, _, err := compiledCondition(q.cond, 0, q.schema)
	if err != nil {
		return nil, err
	}
	idx, err := q.index(ChartOf(compiled.Tokens))
	if err != nil {
		return nil, err
	}
	kc, err := Promote(compiled.Tokens, idx)
	if err != nil {
		return nil, err
	}

	names, values := referenced(compiled, kc.Filter)
	params := &storagemodels.QueryParams{
		TableName:              q.table,
		KeyConditionExpression: kc.Expression,
		Limit:                  q.limit,
		ExclusiveStartKey:      q.startAt,
		Select:                 q.selectValue(),
	}
	if !idx.IsTableIndex {
		params.IndexName = aws.String(idx.Name)
	}
	if len(kc.Filter) > 0 {
		params.FilterExpression = aws.String(condition.Join(kc.Filter))
	}
	if q.sort == Descending {
		params.ScanIndexForward = aws.Bool(false)
	}
	if q.consistent && (idx.IsTableIndex || !idx.Global) {
		params.ConsistentRead = aws.Bool(true)
	}
	if !q.count {
		proj, projNames, err := projection(q.attributes)
		if err != nil {
			return nil, fmt.Errorf("failed to build projection: %w", err)
		}
		params.ProjectionExpression = proj
		names = mergeNames(names, projNames)
	}
	params.Names = mergeNames(names, kc.Names)
	params.Values = mergeValues(values, kc.Values)
	return params, nil
}

// Scan compiles a condition into a filtered table scan.
type Scan struct {
	settings
	table   string
	schema  *schema.Schema
	cond    *condition.Condition
	segment *int32
	total   *int32
}

// NewScan starts a scan on table. cond may be nil.
func NewScan(table string, s *schema.Schema, cond *condition.Condition) *Scan {
	return &Scan{table: table, schema: s, cond: cond}
}

func (s *Scan) Limit(n int32) *Scan {
	s.limit = aws.Int32(n)
	return s
}

func (s *Scan) StartAt(key wire.Item) *Scan {
	s.startAt = key
	return s
}

func (s *Scan) Attributes(attrs ...string) *Scan {
	s.attributes = attrs
	return s
}

func (s *Scan) Consistent() *Scan {
	s.consistent = true
	return s
}

func (s *Scan) Count() *Scan {
	s.count = true
	return s
}

// Segment scans one segment of a parallel scan split into total segments.
func (s *Scan) Segment(segment, total int32) *Scan {
	s.segment = aws.Int32(segment)
	s.total = aws.Int32(total)
	return s
}

// Compile builds the scan parameters. The condition becomes the filter as is.
func (s *Scan) Compile() (*storagemodels.ScanParams, error) {
	if s.segment != nil && (*s.total <= 0 || *s.segment < 0 || *s.segment >= *s.total) {
		return nil, errors.NewValidationError("segment", fmt.Sprintf("segment %d is outside 0..%d", *s.segment, *s.total-1))
	}
	compiled, _, err := compiledCondition(s.cond, 0, s.schema)
	if err != nil {
		return nil, err
	}
	params := &storagemodels.ScanParams{
		TableName:         s.table,
		Limit:             s.limit,
		ExclusiveStartKey: s.startAt,
		Select:            s.selectValue(),
		Segment:           s.segment,
		TotalSegments:     s.total,
	}
	params.Names = compiled.Names
	params.Values = compiled.Values
	if !compiled.Empty() {
		params.FilterExpression = aws.String(compiled.Expression)
	}
	if s.consistent {
		params.ConsistentRead = aws.Bool(true)
	}
	if !s.count {
		proj, projNames, err := projection(s.attributes)
		if err != nil {
			return nil, fmt.Errorf("failed to build projection: %w", err)
		}
		params.ProjectionExpression = proj
		params.Names = mergeNames(params.Names, projNames)
	}
	return params, nil
}

// Parallel compiles n segment scans covering the table.
func (s *Scan) Parallel(n int) ([]*storagemodels.ScanParams, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("segments", "parallel scan needs at least one segment")
	}
	out := make([]*storagemodels.ScanParams, 0, n)
	for i := 0; i < n; i++ {
		seg := *s
		seg.Segment(int32(i), int32(n))
		params, err := seg.Compile()
		if err != nil {
			return nil, err
		}
		out = append(out, params)
	}
	return out, nil
}
