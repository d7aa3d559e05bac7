/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package condition

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/shapestore/placeholder"
	"github.com/suparena/shapestore/wire"
)

// Encoder converts an operand compared against attr into its wire value.
type Encoder func(attr string, v any) (types.AttributeValue, error)

func defaultEncoder(_ string, v any) (types.AttributeValue, error) {
	return wire.Marshal(v)
}

// TokenKind classifies a compiled token.
type TokenKind int

const (
	TokenClause TokenKind = iota
	TokenAnd
	TokenOr
	TokenGroup
)

// Token is one element of a compiled expression. Clause tokens keep enough
// to be re-rendered under other placeholders.
type Token struct {
	Kind    TokenKind
	Text    string
	Attr    string
	Op      Operator
	Negated bool
	// Names and Values list the placeholders the token references.
	Names  []string
	Values []string

	operands []types.AttributeValue
}

// IsCombinator reports whether t is AND or OR.
func (t Token) IsCombinator() bool {
	return t.Kind == TokenAnd || t.Kind == TokenOr
}

// Function reports whether the clause is function-style (existence,
// containment, type or membership tests) or negated.
func (t Token) Function() bool {
	if t.Kind != TokenClause {
		return false
	}
	switch t.Op {
	case Contains, Exists, NotExists, AttributeType, In:
		return true
	}
	return t.Negated
}

// KeyEligible reports whether the clause can serve as a key condition. Hash
// keys accept only equality.
func (t Token) KeyEligible(hash bool) bool {
	if t.Kind != TokenClause || t.Function() {
		return false
	}
	switch t.Op {
	case EQ:
		return true
	case LT, LE, GT, GE, Between, BeginsWith:
		return !hash
	}
	return false
}

// Rebind renders the clause again, allocating fresh placeholders from a.
func (t Token) Rebind(a *placeholder.Allocator) Token {
	return render(a, t.Attr, t.Op, t.Negated, t.operands)
}

// Compiled is a compiled condition.
type Compiled struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
	Tokens     []Token
}

// Empty reports whether the compiled expression has no clauses.
func (c Compiled) Empty() bool {
	return c.Expression == ""
}

// Compile renders the condition with placeholders counted from start and
// returns the next free counter value. enc may be nil.
func (c *Condition) Compile(start int, enc Encoder) (Compiled, int, error) {
	if c.err != nil {
		return Compiled{}, start, c.err
	}
	if enc == nil {
		enc = defaultEncoder
	}
	a := placeholder.New(start)
	tokens, err := c.tokens(a, enc)
	if err != nil {
		return Compiled{}, start, err
	}
	return Compiled{
		Expression: Join(tokens),
		Names:      a.Names(),
		Values:     a.Values(),
		Tokens:     tokens,
	}, a.Next(), nil
}

func (c *Condition) tokens(a *placeholder.Allocator, enc Encoder) ([]Token, error) {
	var out []Token
	for _, cl := range c.clauses {
		switch cl.kind {
		case clauseAnd, clauseOr:
			kind, text := TokenAnd, "AND"
			if cl.kind == clauseOr {
				kind, text = TokenOr, "OR"
			}
			if len(out) == 0 {
				continue
			}
			if out[len(out)-1].IsCombinator() {
				out = out[:len(out)-1]
			}
			out = append(out, Token{Kind: kind, Text: text})
		case clauseComparator:
			out = implicitAnd(out)
			operands := make([]types.AttributeValue, len(cl.values))
			for i, v := range cl.values {
				av, err := enc(cl.attr, v)
				if err != nil {
					return nil, fmt.Errorf("condition on %s: %w", cl.attr, err)
				}
				if av == nil {
					return nil, fmt.Errorf("condition on %s: empty set operand", cl.attr)
				}
				operands[i] = av
			}
			out = append(out, render(a, cl.attr, cl.op, cl.negated, operands))
		case clauseGroup:
			sub, err := cl.group.tokens(a, enc)
			if err != nil {
				return nil, err
			}
			if len(sub) == 0 {
				continue
			}
			out = implicitAnd(out)
			g := Token{Kind: TokenGroup, Text: "(" + Join(sub) + ")"}
			for _, t := range sub {
				g.Names = append(g.Names, t.Names...)
				g.Values = append(g.Values, t.Values...)
			}
			out = append(out, g)
		}
	}
	return Trim(out), nil
}

func implicitAnd(out []Token) []Token {
	if len(out) > 0 && !out[len(out)-1].IsCombinator() {
		out = append(out, Token{Kind: TokenAnd, Text: "AND"})
	}
	return out
}

// Trim drops leading and trailing combinators and collapses adjacent ones.
func Trim(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.IsCombinator() && (len(out) == 0 || out[len(out)-1].IsCombinator()) {
			continue
		}
		out = append(out, t)
	}
	for len(out) > 0 && out[len(out)-1].IsCombinator() {
		out = out[:len(out)-1]
	}
	return out
}

// Join renders tokens as one expression.
func Join(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

var symbols = map[Operator]string{
	EQ: "=",
	NE: "<>",
	LT: "<",
	LE: "<=",
	GT: ">",
	GE: ">=",
}

func render(a *placeholder.Allocator, attr string, op Operator, negated bool, operands []types.AttributeValue) Token {
	name := a.Path(attr)
	t := Token{
		Kind:     TokenClause,
		Attr:     attr,
		Op:       op,
		Negated:  negated,
		Names:    a.PathNames(attr),
		operands: operands,
	}
	var text string
	switch op {
	case EQ, NE, LT, LE, GT, GE:
		v := a.Value(operands[0])
		t.Values = []string{v}
		text = fmt.Sprintf("%s %s %s", name, symbols[op], v)
	case Between:
		lo, hi := a.Pair(operands[0], operands[1])
		t.Values = []string{lo, hi}
		text = fmt.Sprintf("%s BETWEEN %s AND %s", name, lo, hi)
	case BeginsWith, Contains, AttributeType:
		v := a.Value(operands[0])
		t.Values = []string{v}
		fn := map[Operator]string{BeginsWith: "begins_with", Contains: "contains", AttributeType: "attribute_type"}[op]
		text = fmt.Sprintf("%s(%s, %s)", fn, name, v)
	case Exists:
		text = fmt.Sprintf("attribute_exists(%s)", name)
	case NotExists:
		text = fmt.Sprintf("attribute_not_exists(%s)", name)
	case In:
		for _, o := range operands {
			t.Values = append(t.Values, a.Value(o))
		}
		text = fmt.Sprintf("%s IN (%s)", name, strings.Join(t.Values, ", "))
	}
	if negated {
		text = "NOT " + text
	}
	t.Text = text
	return t
}
