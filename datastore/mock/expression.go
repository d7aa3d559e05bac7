/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"bytes"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/shapestore/storagemodels"
)

// expression resolves the placeholders of one request against items.
type expression struct {
	names  map[string]string
	values map[string]types.AttributeValue
}

func newExpression(p storagemodels.Placeholders) expression {
	return expression{names: p.Names, values: p.Values}
}

type segment struct {
	name  string
	index int
	list  bool
}

var pathToken = regexp.MustCompile(`^(#\w+)((?:\[\d+\])*)$`)
var listIndex = regexp.MustCompile(`\[(\d+)\]`)

// path resolves a rendered path such as #a0.#a1[2].
func (e expression) path(text string) ([]segment, error) {
	var out []segment
	for _, part := range strings.Split(strings.TrimSpace(text), ".") {
		m := pathToken.FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("mock: unsupported path %q", text)
		}
		name, ok := e.names[m[1]]
		if !ok {
			return nil, fmt.Errorf("mock: undefined name placeholder %s", m[1])
		}
		out = append(out, segment{name: name})
		for _, idx := range listIndex.FindAllStringSubmatch(m[2], -1) {
			n, _ := strconv.Atoi(idx[1])
			out = append(out, segment{index: n, list: true})
		}
	}
	return out, nil
}

func (e expression) value(text string) (types.AttributeValue, error) {
	v, ok := e.values[strings.TrimSpace(text)]
	if !ok {
		return nil, fmt.Errorf("mock: undefined value placeholder %s", text)
	}
	return v, nil
}

func lookup(item storagemodels.Item, path []segment) (types.AttributeValue, bool) {
	var cur types.AttributeValue = &types.AttributeValueMemberM{Value: item}
	for _, seg := range path {
		switch t := cur.(type) {
		case *types.AttributeValueMemberM:
			if seg.list {
				return nil, false
			}
			next, ok := t.Value[seg.name]
			if !ok {
				return nil, false
			}
			cur = next
		case *types.AttributeValueMemberL:
			if !seg.list || seg.index >= len(t.Value) {
				return nil, false
			}
			cur = t.Value[seg.index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// assign sets v at path, creating the final map entry or list element.
func assign(item storagemodels.Item, path []segment, v types.AttributeValue) error {
	parent, ok := lookup(item, path[:len(path)-1])
	if !ok {
		return fmt.Errorf("mock: the document path %s does not exist", render(path[:len(path)-1]))
	}
	last := path[len(path)-1]
	switch t := parent.(type) {
	case *types.AttributeValueMemberM:
		if last.list {
			return fmt.Errorf("mock: %s is not a list", render(path[:len(path)-1]))
		}
		t.Value[last.name] = v
	case *types.AttributeValueMemberL:
		if !last.list {
			return fmt.Errorf("mock: %s is not a map", render(path[:len(path)-1]))
		}
		if last.index >= len(t.Value) {
			t.Value = append(t.Value, v)
		} else {
			t.Value[last.index] = v
		}
	default:
		return fmt.Errorf("mock: %s is not a document", render(path[:len(path)-1]))
	}
	return nil
}

func unset(item storagemodels.Item, path []segment) {
	parent, ok := lookup(item, path[:len(path)-1])
	if !ok {
		return
	}
	last := path[len(path)-1]
	switch t := parent.(type) {
	case *types.AttributeValueMemberM:
		delete(t.Value, last.name)
	case *types.AttributeValueMemberL:
		if last.list && last.index < len(t.Value) {
			t.Value = append(t.Value[:last.index], t.Value[last.index+1:]...)
		}
	}
}

func render(path []segment) string {
	var b strings.Builder
	for i, seg := range path {
		if seg.list {
			fmt.Fprintf(&b, "[%d]", seg.index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg.name)
	}
	return b.String()
}

// eval reports whether item satisfies a condition, key condition or filter
// expression. A nil item satisfies only negative clauses.
func (e expression) eval(text string, item storagemodels.Item) (bool, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return true, nil
	}
	if parts := splitTop(text, " OR "); len(parts) > 1 {
		for _, p := range parts {
			ok, err := e.eval(p, item)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	}
	if parts := splitTop(text, " AND "); len(parts) > 1 {
		for _, p := range parts {
			ok, err := e.eval(p, item)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
	if strings.HasPrefix(text, "NOT ") {
		ok, err := e.eval(text[len("NOT "):], item)
		return !ok, err
	}
	if wrapped(text) {
		return e.eval(text[1:len(text)-1], item)
	}
	return e.clause(text, item)
}

var (
	functionClause = regexp.MustCompile(`^(attribute_exists|attribute_not_exists|begins_with|contains|attribute_type)\(([^,)]+)(?:, (:\w+))?\)$`)
	betweenClause  = regexp.MustCompile(`^(\S+) BETWEEN (:\w+) AND (:\w+)$`)
	inClause       = regexp.MustCompile(`^(\S+) IN \(([^)]*)\)$`)
	compareClause  = regexp.MustCompile(`^(\S+) (=|<>|<=|>=|<|>) (:\w+)$`)
)

func (e expression) clause(text string, item storagemodels.Item) (bool, error) {
	if m := functionClause.FindStringSubmatch(text); m != nil {
		path, err := e.path(m[2])
		if err != nil {
			return false, err
		}
		actual, exists := lookup(item, path)
		switch m[1] {
		case "attribute_exists":
			return exists, nil
		case "attribute_not_exists":
			return !exists, nil
		}
		operand, err := e.value(m[3])
		if err != nil || !exists {
			return false, err
		}
		switch m[1] {
		case "begins_with":
			return beginsWith(actual, operand), nil
		case "contains":
			return contains(actual, operand), nil
		default:
			s, ok := operand.(*types.AttributeValueMemberS)
			return ok && typeName(actual) == s.Value, nil
		}
	}
	if m := betweenClause.FindStringSubmatch(text); m != nil {
		actual, lo, hi, err := e.operands(item, m[1], m[2], m[3])
		if err != nil || actual == nil {
			return false, err
		}
		c1, ok1 := compare(actual, lo)
		c2, ok2 := compare(actual, hi)
		return ok1 && ok2 && c1 >= 0 && c2 <= 0, nil
	}
	if m := inClause.FindStringSubmatch(text); m != nil {
		path, err := e.path(m[1])
		if err != nil {
			return false, err
		}
		actual, exists := lookup(item, path)
		for _, p := range strings.Split(m[2], ",") {
			v, err := e.value(p)
			if err != nil {
				return false, err
			}
			if c, ok := compare(actual, v); exists && ok && c == 0 {
				return true, nil
			}
		}
		return false, nil
	}
	if m := compareClause.FindStringSubmatch(text); m != nil {
		actual, operand, _, err := e.operands(item, m[1], m[3], "")
		if err != nil {
			return false, err
		}
		if actual == nil {
			return m[2] == "<>", nil
		}
		c, ok := compare(actual, operand)
		if !ok {
			return m[2] == "<>", nil
		}
		switch m[2] {
		case "=":
			return c == 0, nil
		case "<>":
			return c != 0, nil
		case "<":
			return c < 0, nil
		case "<=":
			return c <= 0, nil
		case ">":
			return c > 0, nil
		default:
			return c >= 0, nil
		}
	}
	return false, fmt.Errorf("mock: unsupported expression %q", text)
}

func (e expression) operands(item storagemodels.Item, pathText, a, b string) (types.AttributeValue, types.AttributeValue, types.AttributeValue, error) {
	path, err := e.path(pathText)
	if err != nil {
		return nil, nil, nil, err
	}
	first, err := e.value(a)
	if err != nil {
		return nil, nil, nil, err
	}
	var second types.AttributeValue
	if b != "" {
		if second, err = e.value(b); err != nil {
			return nil, nil, nil, err
		}
	}
	actual, _ := lookup(item, path)
	return actual, first, second, nil
}

// splitTop splits text on sep outside parentheses. A BETWEEN keeps its AND.
func splitTop(text, sep string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 && strings.HasPrefix(text[i:], sep) {
			parts = append(parts, text[start:i])
			start = i + len(sep)
			i += len(sep) - 1
		}
	}
	parts = append(parts, text[start:])
	if sep != " AND " {
		return parts
	}
	merged := parts[:0:0]
	for _, p := range parts {
		if n := len(merged); n > 0 && betweenOpen.MatchString(merged[n-1]) {
			merged[n-1] += sep + p
			continue
		}
		merged = append(merged, p)
	}
	return merged
}

var betweenOpen = regexp.MustCompile(`BETWEEN :\w+$`)

func wrapped(text string) bool {
	if !strings.HasPrefix(text, "(") || !strings.HasSuffix(text, ")") {
		return false
	}
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i < len(text)-1 {
				return false
			}
		}
	}
	return true
}

// compare orders two scalar values of the same type.
func compare(a, b types.AttributeValue) (int, bool) {
	switch x := a.(type) {
	case *types.AttributeValueMemberS:
		if y, ok := b.(*types.AttributeValueMemberS); ok {
			return strings.Compare(x.Value, y.Value), true
		}
	case *types.AttributeValueMemberN:
		if y, ok := b.(*types.AttributeValueMemberN); ok {
			fx, okx := new(big.Float).SetString(x.Value)
			fy, oky := new(big.Float).SetString(y.Value)
			if okx && oky {
				return fx.Cmp(fy), true
			}
		}
	case *types.AttributeValueMemberB:
		if y, ok := b.(*types.AttributeValueMemberB); ok {
			return bytes.Compare(x.Value, y.Value), true
		}
	case *types.AttributeValueMemberBOOL:
		if y, ok := b.(*types.AttributeValueMemberBOOL); ok && x.Value == y.Value {
			return 0, true
		}
	}
	return 0, false
}

func beginsWith(actual, prefix types.AttributeValue) bool {
	switch x := actual.(type) {
	case *types.AttributeValueMemberS:
		p, ok := prefix.(*types.AttributeValueMemberS)
		return ok && strings.HasPrefix(x.Value, p.Value)
	case *types.AttributeValueMemberB:
		p, ok := prefix.(*types.AttributeValueMemberB)
		return ok && bytes.HasPrefix(x.Value, p.Value)
	}
	return false
}

func contains(actual, operand types.AttributeValue) bool {
	switch x := actual.(type) {
	case *types.AttributeValueMemberS:
		p, ok := operand.(*types.AttributeValueMemberS)
		return ok && strings.Contains(x.Value, p.Value)
	case *types.AttributeValueMemberSS:
		p, ok := operand.(*types.AttributeValueMemberS)
		return ok && indexOf(x.Value, p.Value) >= 0
	case *types.AttributeValueMemberNS:
		p, ok := operand.(*types.AttributeValueMemberN)
		if !ok {
			return false
		}
		for _, n := range x.Value {
			if c, ok := compare(&types.AttributeValueMemberN{Value: n}, p); ok && c == 0 {
				return true
			}
		}
	case *types.AttributeValueMemberL:
		for _, e := range x.Value {
			if c, ok := compare(e, operand); ok && c == 0 {
				return true
			}
		}
	}
	return false
}

func typeName(v types.AttributeValue) string {
	switch v.(type) {
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

func indexOf(list []string, v string) int {
	for i, e := range list {
		if e == v {
			return i
		}
	}
	return -1
}
