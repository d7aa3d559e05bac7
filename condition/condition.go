/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package condition

import (
	"github.com/suparena/shapestore/errors"
)

// Operator is a comparator.
type Operator string

const (
	EQ            Operator = "EQ"
	NE            Operator = "NE"
	LT            Operator = "LT"
	LE            Operator = "LE"
	GT            Operator = "GT"
	GE            Operator = "GE"
	Between       Operator = "BETWEEN"
	BeginsWith    Operator = "BEGINS_WITH"
	Contains      Operator = "CONTAINS"
	Exists        Operator = "EXISTS"
	NotExists     Operator = "NOT_EXISTS"
	In            Operator = "IN"
	AttributeType Operator = "ATTRIBUTE_TYPE"
)

// inverse maps comparators that have a direct negation.
var inverse = map[Operator]Operator{
	EQ:        NE,
	NE:        EQ,
	LT:        GE,
	GE:        LT,
	LE:        GT,
	GT:        LE,
	Exists:    NotExists,
	NotExists: Exists,
}

// builder states
type state int

const (
	noAttributeSelected state = iota
	attributeSelected
)

func (s state) String() string {
	if s == attributeSelected {
		return "AttributeSelected"
	}
	return "NoAttributeSelected"
}

// builder calls
type call int

const (
	callWhere call = iota
	callComparator
	callAnd
	callOr
	callNot
	callGroup
)

var callNames = map[call]string{
	callWhere:      "where",
	callComparator: "comparator",
	callAnd:        "and",
	callOr:         "or",
	callNot:        "not",
	callGroup:      "group",
}

// transitions is the builder state machine. A missing entry is an illegal call.
var transitions = map[state]map[call]state{
	noAttributeSelected: {
		callWhere: attributeSelected,
		callAnd:   noAttributeSelected,
		callOr:    noAttributeSelected,
		callNot:   noAttributeSelected,
		callGroup: noAttributeSelected,
	},
	attributeSelected: {
		callWhere:      attributeSelected,
		callComparator: noAttributeSelected,
		callAnd:        attributeSelected,
		callOr:         attributeSelected,
		callNot:        attributeSelected,
		callGroup:      attributeSelected,
	},
}

type clauseKind int

const (
	clauseComparator clauseKind = iota
	clauseAnd
	clauseOr
	clauseGroup
)

type clause struct {
	kind    clauseKind
	attr    string
	op      Operator
	negated bool
	values  []any
	group   *Condition
}

// Condition is a fluent boolean expression builder. Builder errors are kept
// and reported by Compile; calls after the first error are ignored.
type Condition struct {
	state   state
	attr    string
	negate  bool
	clauses []clause
	err     error
}

// New returns an empty condition.
func New() *Condition {
	return &Condition{}
}

// Where starts a condition on attr.
func Where(attr string) *Condition {
	return New().Where(attr)
}

func (c *Condition) transition(k call) bool {
	if c.err != nil {
		return false
	}
	next, ok := transitions[c.state][k]
	if !ok {
		c.recordBuilderError(errors.NewBuilderStateError(callNames[k], c.state.String()))
		return false
	}
	c.state = next
	return true
}

// recordBuilderError keeps the first builder error.
func (c *Condition) recordBuilderError(err error) {
	if err != nil && c.err == nil {
		c.err = err
	}
}

// Err returns the first builder error, if any. A nil condition has none.
func (c *Condition) Err() error {
	if c == nil {
		return nil
	}
	return c.err
}

// Empty reports whether no clause has been added.
func (c *Condition) Empty() bool {
	return c == nil || len(c.clauses) == 0
}

// Where selects the attribute the next comparator applies to.
func (c *Condition) Where(attr string) *Condition {
	if c.transition(callWhere) {
		c.attr = attr
	}
	return c
}

// Filter is an alias of Where.
func (c *Condition) Filter(attr string) *Condition {
	return c.Where(attr)
}

// Attribute is an alias of Where.
func (c *Condition) Attribute(attr string) *Condition {
	return c.Where(attr)
}

// And joins the surrounding clauses with AND.
func (c *Condition) And() *Condition {
	if c.transition(callAnd) {
		c.clauses = append(c.clauses, clause{kind: clauseAnd})
	}
	return c
}

// Or joins the surrounding clauses with OR.
func (c *Condition) Or() *Condition {
	if c.transition(callOr) {
		c.clauses = append(c.clauses, clause{kind: clauseOr})
	}
	return c
}

// Not negates the next comparator.
func (c *Condition) Not() *Condition {
	if c.transition(callNot) {
		c.negate = !c.negate
	}
	return c
}

// Group builds a nested condition with fn and adds it in parentheses.
func (c *Condition) Group(fn func(sub *Condition)) *Condition {
	sub := New()
	fn(sub)
	return c.Parenthesis(sub)
}

// Parenthesis adds sub in parentheses. sub must not end with an attribute
// still waiting for its comparator.
func (c *Condition) Parenthesis(sub *Condition) *Condition {
	if sub != nil && sub.err != nil {
		c.recordBuilderError(sub.err)
		return c
	}
	if sub != nil && sub.state == attributeSelected {
		c.recordBuilderError(errors.NewBuilderStateError(callNames[callGroup], sub.state.String()))
		return c
	}
	if c.transition(callGroup) && !sub.Empty() {
		c.clauses = append(c.clauses, clause{kind: clauseGroup, group: sub})
	}
	return c
}

func (c *Condition) compare(op Operator, values ...any) *Condition {
	if !c.transition(callComparator) {
		return c
	}
	if op == In && len(values) == 0 {
		c.recordBuilderError(errors.NewValidationError(c.attr, "IN requires at least one value"))
		return c
	}
	negated := c.negate
	if negated {
		if inv, ok := inverse[op]; ok {
			op, negated = inv, false
		}
	}
	c.clauses = append(c.clauses, clause{kind: clauseComparator, attr: c.attr, op: op, negated: negated, values: values})
	c.attr = ""
	c.negate = false
	return c
}

// Eq compares for equality.
func (c *Condition) Eq(v any) *Condition { return c.compare(EQ, v) }

// Ne compares for inequality.
func (c *Condition) Ne(v any) *Condition { return c.compare(NE, v) }

func (c *Condition) Lt(v any) *Condition { return c.compare(LT, v) }
func (c *Condition) Le(v any) *Condition { return c.compare(LE, v) }
func (c *Condition) Gt(v any) *Condition { return c.compare(GT, v) }
func (c *Condition) Ge(v any) *Condition { return c.compare(GE, v) }

// Between matches lo <= value <= hi.
func (c *Condition) Between(lo, hi any) *Condition { return c.compare(Between, lo, hi) }

// BeginsWith matches a string or binary prefix.
func (c *Condition) BeginsWith(prefix any) *Condition { return c.compare(BeginsWith, prefix) }

// Contains matches a substring or a set/list member.
func (c *Condition) Contains(v any) *Condition { return c.compare(Contains, v) }

// Exists matches when the attribute is present.
func (c *Condition) Exists() *Condition { return c.compare(Exists) }

// In matches any of values.
func (c *Condition) In(values ...any) *Condition { return c.compare(In, values...) }

// AttributeType matches the stored type tag, e.g. "S" or "N".
func (c *Condition) AttributeType(tag string) *Condition { return c.compare(AttributeType, tag) }
