/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package request

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/shapestore/condition"
	"github.com/suparena/shapestore/errors"
	"github.com/suparena/shapestore/marshal"
	"github.com/suparena/shapestore/placeholder"
	"github.com/suparena/shapestore/schema"
	"github.com/suparena/shapestore/wire"
)

// Encoder returns a condition encoder that converts operands through the
// custom types declared for the compared attribute. Operands that do not fit
// the attribute, such as a set member passed to Contains, are sent as they are.
func Encoder(s *schema.Schema) condition.Encoder {
	return func(attr string, v any) (types.AttributeValue, error) {
		if s != nil {
			if converted, err := marshal.Value(s, attr, v, marshal.KeyOptions()); err == nil {
				v = converted
			}
		}
		return wire.Marshal(v)
	}
}

// Key encodes the hash and range key of values.
func Key(s *schema.Schema, values map[string]any) (wire.Item, error) {
	key := make(wire.Item, 2)
	for _, attr := range []string{s.HashKey(), s.RangeKey()} {
		if attr == "" {
			continue
		}
		v, ok := values[attr]
		if !ok || v == nil {
			return nil, errors.NewCheckError(errors.KindRequired, attr, attr+" is a key attribute but has no value")
		}
		converted, err := marshal.Value(s, attr, v, marshal.KeyOptions())
		if err != nil {
			return nil, err
		}
		av, err := wire.Marshal(converted)
		if err != nil {
			return nil, err
		}
		key[attr] = av
	}
	return key, nil
}

// compiledCondition compiles cond, which may be nil, from start.
func compiledCondition(cond *condition.Condition, start int, s *schema.Schema) (condition.Compiled, int, error) {
	if cond == nil {
		return condition.Compiled{}, start, nil
	}
	return cond.Compile(start, Encoder(s))
}

// referenced keeps the placeholders of compiled that tokens still use.
func referenced(compiled condition.Compiled, tokens []condition.Token) (map[string]string, map[string]types.AttributeValue) {
	names := make(map[string]string)
	values := make(map[string]types.AttributeValue)
	for _, t := range tokens {
		for _, n := range t.Names {
			names[n] = compiled.Names[n]
		}
		for _, v := range t.Values {
			values[v] = compiled.Values[v]
		}
	}
	return names, values
}

// projection compiles a projection expression for attrs.
func projection(attrs []string) (*string, map[string]string, error) {
	if len(attrs) == 0 {
		return nil, nil, nil
	}
	names := make([]expression.NameBuilder, len(attrs))
	for i, a := range attrs {
		names[i] = expression.Name(a)
	}
	expr, err := expression.NewBuilder().
		WithProjection(expression.NamesList(names[0], names[1:]...)).
		Build()
	if err != nil {
		return nil, nil, err
	}
	return expr.Projection(), expr.Names(), nil
}

func mergeNames(dst, src map[string]string) map[string]string {
	return placeholder.Merge(dst, src)
}

func mergeValues(dst, src map[string]types.AttributeValue) map[string]types.AttributeValue {
	return placeholder.Merge(dst, src)
}
