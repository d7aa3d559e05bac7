/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package wire

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/shapestore/attrtype"
)

// Item is one stored item in wire format.
type Item = map[string]types.AttributeValue

// Marshal converts a native value into its wire representation. Empty sets
// cannot be stored and yield (nil, nil); callers drop the attribute.
func Marshal(v any) (types.AttributeValue, error) {
	switch t := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case types.AttributeValue:
		return t, nil
	case string:
		return &types.AttributeValueMemberS{Value: t}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: t}, nil
	case []byte:
		return &types.AttributeValueMemberB{Value: t}, nil
	case attrtype.Set:
		return marshalSet(t)
	case []any:
		list := make([]types.AttributeValue, 0, len(t))
		for i, e := range t {
			av, err := Marshal(e)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			if av == nil {
				continue
			}
			list = append(list, av)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	case map[string]any:
		m, err := MarshalMap(t)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	}
	if attrtype.IsNumber(v) {
		return &types.AttributeValueMemberN{Value: attrtype.FormatNumber(v)}, nil
	}
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	return av, nil
}

// MarshalMap converts a native record into a wire item.
func MarshalMap(values map[string]any) (Item, error) {
	item := make(Item, len(values))
	for k, v := range values {
		if attrtype.IsOmit(v) {
			continue
		}
		av, err := Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		if av == nil {
			continue
		}
		item[k] = av
	}
	return item, nil
}

func marshalSet(s attrtype.Set) (types.AttributeValue, error) {
	if len(s) == 0 {
		return nil, nil
	}
	switch s[0].(type) {
	case string:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("string set contains %T", e)
			}
			out = append(out, str)
		}
		return &types.AttributeValueMemberSS{Value: out}, nil
	case []byte:
		out := make([][]byte, 0, len(s))
		for _, e := range s {
			b, ok := e.([]byte)
			if !ok {
				return nil, fmt.Errorf("binary set contains %T", e)
			}
			out = append(out, b)
		}
		return &types.AttributeValueMemberBS{Value: out}, nil
	}
	out := make([]string, 0, len(s))
	for _, e := range s {
		if !attrtype.IsNumber(e) {
			return nil, fmt.Errorf("number set contains %T", e)
		}
		out = append(out, attrtype.FormatNumber(e))
	}
	return &types.AttributeValueMemberNS{Value: out}, nil
}

// Unmarshal converts a wire value into its native representation.
func Unmarshal(av types.AttributeValue) (any, error) {
	switch t := av.(type) {
	case *types.AttributeValueMemberS:
		return t.Value, nil
	case *types.AttributeValueMemberN:
		return parseNumber(t.Value)
	case *types.AttributeValueMemberB:
		return t.Value, nil
	case *types.AttributeValueMemberBOOL:
		return t.Value, nil
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberSS:
		s := make(attrtype.Set, len(t.Value))
		for i, e := range t.Value {
			s[i] = e
		}
		return s, nil
	case *types.AttributeValueMemberNS:
		s := make(attrtype.Set, len(t.Value))
		for i, e := range t.Value {
			n, err := parseNumber(e)
			if err != nil {
				return nil, err
			}
			s[i] = n
		}
		return s, nil
	case *types.AttributeValueMemberBS:
		s := make(attrtype.Set, len(t.Value))
		for i, e := range t.Value {
			s[i] = e
		}
		return s, nil
	case *types.AttributeValueMemberL:
		list := make([]any, len(t.Value))
		for i, e := range t.Value {
			v, err := Unmarshal(e)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			list[i] = v
		}
		return list, nil
	case *types.AttributeValueMemberM:
		return UnmarshalMap(t.Value)
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported attribute value %T", av)
}

// UnmarshalMap converts a wire item into a native record.
func UnmarshalMap(item Item) (map[string]any, error) {
	out := make(map[string]any, len(item))
	for k, av := range item {
		v, err := Unmarshal(av)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

func parseNumber(s string) (any, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return f, nil
}

// Tag returns the wire type tag of av.
func Tag(av types.AttributeValue) string {
	switch av.(type) {
	case *types.AttributeValueMemberS:
		return "S"
	case *types.AttributeValueMemberN:
		return "N"
	case *types.AttributeValueMemberB:
		return "B"
	case *types.AttributeValueMemberBOOL:
		return "BOOL"
	case *types.AttributeValueMemberNULL:
		return "NULL"
	case *types.AttributeValueMemberSS:
		return "SS"
	case *types.AttributeValueMemberNS:
		return "NS"
	case *types.AttributeValueMemberBS:
		return "BS"
	case *types.AttributeValueMemberL:
		return "L"
	case *types.AttributeValueMemberM:
		return "M"
	}
	return ""
}

var tags = map[string]bool{
	"S": true, "N": true, "B": true, "BOOL": true, "NULL": true,
	"SS": true, "NS": true, "BS": true, "L": true, "M": true,
}

// IsJSONShaped reports whether every value of record is a single-key map
// keyed by a wire type tag, i.e. the record is a wire item decoded from JSON.
func IsJSONShaped(record map[string]any) bool {
	if len(record) == 0 {
		return false
	}
	for _, v := range record {
		m, ok := v.(map[string]any)
		if !ok || len(m) != 1 {
			return false
		}
		for tag := range m {
			if !tags[tag] {
				return false
			}
		}
	}
	return true
}

// FromJSON converts a JSON-shaped wire item ({"name": {"S": "x"}}) into a
// wire item.
func FromJSON(record map[string]any) (Item, error) {
	item := make(Item, len(record))
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		av, err := fromJSONValue(record[k])
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		item[k] = av
	}
	return item, nil
}

func fromJSONValue(v any) (types.AttributeValue, error) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return nil, fmt.Errorf("expected a single-key type map, got %T", v)
	}
	for tag, raw := range m {
		switch tag {
		case "S":
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("S value must be a string")
			}
			return &types.AttributeValueMemberS{Value: s}, nil
		case "N":
			return &types.AttributeValueMemberN{Value: numberText(raw)}, nil
		case "B":
			b, err := decodeBinary(raw)
			if err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberB{Value: b}, nil
		case "BOOL":
			b, ok := raw.(bool)
			if !ok {
				return nil, fmt.Errorf("BOOL value must be a boolean")
			}
			return &types.AttributeValueMemberBOOL{Value: b}, nil
		case "NULL":
			return &types.AttributeValueMemberNULL{Value: true}, nil
		case "SS", "NS", "BS":
			items, ok := raw.([]any)
			if !ok {
				return nil, fmt.Errorf("%s value must be a list", tag)
			}
			return jsonSet(tag, items)
		case "L":
			items, ok := raw.([]any)
			if !ok {
				return nil, fmt.Errorf("L value must be a list")
			}
			list := make([]types.AttributeValue, len(items))
			for i, e := range items {
				av, err := fromJSONValue(e)
				if err != nil {
					return nil, fmt.Errorf("list element %d: %w", i, err)
				}
				list[i] = av
			}
			return &types.AttributeValueMemberL{Value: list}, nil
		case "M":
			nested, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("M value must be a map")
			}
			item, err := FromJSON(nested)
			if err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberM{Value: item}, nil
		default:
			return nil, fmt.Errorf("unknown type tag %q", tag)
		}
	}
	return nil, nil
}

func jsonSet(tag string, items []any) (types.AttributeValue, error) {
	switch tag {
	case "BS":
		out := make([][]byte, len(items))
		for i, e := range items {
			b, err := decodeBinary(e)
			if err != nil {
				return nil, err
			}
			out[i] = b
		}
		return &types.AttributeValueMemberBS{Value: out}, nil
	case "NS":
		out := make([]string, len(items))
		for i, e := range items {
			out[i] = numberText(e)
		}
		return &types.AttributeValueMemberNS{Value: out}, nil
	}
	out := make([]string, len(items))
	for i, e := range items {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("SS element must be a string")
		}
		out[i] = s
	}
	return &types.AttributeValueMemberSS{Value: out}, nil
}

func numberText(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return attrtype.FormatNumber(v)
}

func decodeBinary(v any) ([]byte, error) {
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		b, err := base64.StdEncoding.DecodeString(t)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 binary: %w", err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("binary value must be base64 text, got %T", v)
}
