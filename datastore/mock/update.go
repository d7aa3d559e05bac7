/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/shapestore/storagemodels"
)

var (
	updateSection = regexp.MustCompile(`(?:^| )(SET|ADD|REMOVE|DELETE) `)
	setAction     = regexp.MustCompile(`(\S+) = (?:list_append\((\S+), (:\w+)\)|(:\w+))`)
	valueAction   = regexp.MustCompile(`(\S+) (:\w+)`)
)

// apply runs an update expression against item in place.
func (e expression) apply(text string, item storagemodels.Item) error {
	bounds := updateSection.FindAllStringSubmatchIndex(text, -1)
	if len(bounds) == 0 {
		return fmt.Errorf("mock: unsupported update expression %q", text)
	}
	for i, b := range bounds {
		end := len(text)
		if i+1 < len(bounds) {
			end = bounds[i+1][0]
		}
		keyword := text[b[2]:b[3]]
		body := text[b[1]:end]
		if err := e.section(keyword, body, item); err != nil {
			return err
		}
	}
	return nil
}

func (e expression) section(keyword, body string, item storagemodels.Item) error {
	switch keyword {
	case "SET":
		for _, m := range setAction.FindAllStringSubmatch(body, -1) {
			path, err := e.path(m[1])
			if err != nil {
				return err
			}
			if m[4] != "" {
				v, err := e.value(m[4])
				if err != nil {
					return err
				}
				if err := assign(item, path, v); err != nil {
					return err
				}
				continue
			}
			tail, err := e.value(m[3])
			if err != nil {
				return err
			}
			appended, err := listAppend(item, path, tail)
			if err != nil {
				return err
			}
			if err := assign(item, path, appended); err != nil {
				return err
			}
		}
	case "REMOVE":
		for _, p := range strings.Split(body, ",") {
			path, err := e.path(p)
			if err != nil {
				return err
			}
			unset(item, path)
		}
	case "ADD", "DELETE":
		for _, m := range valueAction.FindAllStringSubmatch(body, -1) {
			path, err := e.path(m[1])
			if err != nil {
				return err
			}
			v, err := e.value(m[2])
			if err != nil {
				return err
			}
			current, _ := lookup(item, path)
			var next types.AttributeValue
			if keyword == "ADD" {
				next, err = add(current, v)
			} else {
				next, err = remove(current, v)
			}
			if err != nil {
				return fmt.Errorf("mock: %s %s: %w", keyword, render(path), err)
			}
			if next == nil {
				unset(item, path)
				continue
			}
			if err := assign(item, path, next); err != nil {
				return err
			}
		}
	}
	return nil
}

func listAppend(item storagemodels.Item, path []segment, tail types.AttributeValue) (types.AttributeValue, error) {
	t, ok := tail.(*types.AttributeValueMemberL)
	if !ok {
		return nil, fmt.Errorf("mock: list_append needs a list operand")
	}
	current, exists := lookup(item, path)
	if !exists {
		return nil, fmt.Errorf("mock: the provided expression refers to an attribute that does not exist in the item")
	}
	head, ok := current.(*types.AttributeValueMemberL)
	if !ok {
		return nil, fmt.Errorf("mock: list_append on %s, which is not a list", render(path))
	}
	out := append(append([]types.AttributeValue{}, head.Value...), t.Value...)
	return &types.AttributeValueMemberL{Value: out}, nil
}

func add(current, v types.AttributeValue) (types.AttributeValue, error) {
	switch x := v.(type) {
	case *types.AttributeValueMemberN:
		if current == nil {
			return x, nil
		}
		c, ok := current.(*types.AttributeValueMemberN)
		if !ok {
			return nil, fmt.Errorf("type mismatch")
		}
		a, _ := new(big.Float).SetString(c.Value)
		b, _ := new(big.Float).SetString(x.Value)
		if a == nil || b == nil {
			return nil, fmt.Errorf("invalid number")
		}
		return &types.AttributeValueMemberN{Value: new(big.Float).Add(a, b).Text('f', -1)}, nil
	case *types.AttributeValueMemberSS:
		c, _ := current.(*types.AttributeValueMemberSS)
		if current != nil && c == nil {
			return nil, fmt.Errorf("type mismatch")
		}
		var base []string
		if c != nil {
			base = c.Value
		}
		return &types.AttributeValueMemberSS{Value: union(base, x.Value)}, nil
	case *types.AttributeValueMemberNS:
		c, _ := current.(*types.AttributeValueMemberNS)
		if current != nil && c == nil {
			return nil, fmt.Errorf("type mismatch")
		}
		var base []string
		if c != nil {
			base = c.Value
		}
		return &types.AttributeValueMemberNS{Value: union(base, x.Value)}, nil
	}
	return nil, fmt.Errorf("ADD supports numbers and sets")
}

func remove(current, v types.AttributeValue) (types.AttributeValue, error) {
	if current == nil {
		return nil, nil
	}
	switch x := v.(type) {
	case *types.AttributeValueMemberSS:
		c, ok := current.(*types.AttributeValueMemberSS)
		if !ok {
			return nil, fmt.Errorf("type mismatch")
		}
		if rest := difference(c.Value, x.Value); len(rest) > 0 {
			return &types.AttributeValueMemberSS{Value: rest}, nil
		}
		return nil, nil
	case *types.AttributeValueMemberNS:
		c, ok := current.(*types.AttributeValueMemberNS)
		if !ok {
			return nil, fmt.Errorf("type mismatch")
		}
		if rest := difference(c.Value, x.Value); len(rest) > 0 {
			return &types.AttributeValueMemberNS{Value: rest}, nil
		}
		return nil, nil
	}
	return nil, fmt.Errorf("DELETE supports sets only")
}

func union(a, b []string) []string {
	out := append([]string{}, a...)
	for _, v := range b {
		if indexOf(out, v) < 0 {
			out = append(out, v)
		}
	}
	return out
}

func difference(a, b []string) []string {
	var out []string
	for _, v := range a {
		if indexOf(b, v) < 0 {
			out = append(out, v)
		}
	}
	return out
}
