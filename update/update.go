/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package update

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/shapestore/attrtype"
	"github.com/suparena/shapestore/errors"
	"github.com/suparena/shapestore/marshal"
	"github.com/suparena/shapestore/placeholder"
	"github.com/suparena/shapestore/schema"
	"github.com/suparena/shapestore/wire"
)

// Kind is an update clause kind.
type Kind int

const (
	Set Kind = iota
	Add
	Remove
	Delete
)

var kinds = []Kind{Set, Add, Remove, Delete}

var keywords = map[Kind]string{
	Set:    "SET",
	Add:    "ADD",
	Remove: "REMOVE",
	Delete: "DELETE",
}

// Payload keys grouping a payload by kind. Keys outside these groups are sets.
const (
	SetKey    = "$SET"
	AddKey    = "$ADD"
	RemoveKey = "$REMOVE"
	DeleteKey = "$DELETE"
)

var groups = map[string]Kind{
	SetKey:    Set,
	AddKey:    Add,
	RemoveKey: Remove,
	DeleteKey: Delete,
}

func (k Kind) String() string {
	return keywords[k]
}

// Clause is one compiled update action.
type Clause struct {
	Kind Kind
	Path string
	Text string
}

// Compiled is a compiled update expression.
type Compiled struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
	Clauses    []Clause
	// Next is the first placeholder counter value not used by the update.
	Next int
}

// Option configures Compile.
type Option func(*compiler)

// WithExisting supplies the current values of the item being updated. An
// omitted attribute is removed only when it exists there. Without existing
// values every omitted attribute is removed.
func WithExisting(values map[string]any) Option {
	return func(c *compiler) {
		c.existing = values
	}
}

// WithStart starts placeholder allocation at n.
func WithStart(n int) Option {
	return func(c *compiler) {
		c.start = n
	}
}

// WithClock sets the clock used for the updated-at timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *compiler) {
		c.now = now
	}
}

type action struct {
	kind   Kind
	path   string
	value  any
	append bool
}

type compiler struct {
	schema   *schema.Schema
	existing map[string]any
	start    int
	now      func() time.Time
	actions  map[string]*action
	order    []string
}

// Compile turns payload into an update expression for items of s.
func Compile(s *schema.Schema, payload map[string]any, opts ...Option) (Compiled, error) {
	c := &compiler{
		schema:  s,
		now:     time.Now,
		actions: make(map[string]*action),
	}
	for _, opt := range opts {
		opt(c)
	}

	grouped, err := split(payload)
	if err != nil {
		return Compiled{}, err
	}
	if ts := s.Settings().Timestamps; ts.UpdatedAt != "" && !c.mentioned(grouped, ts.UpdatedAt) {
		grouped[Set][ts.UpdatedAt] = c.now()
	}

	for _, kind := range kinds {
		for _, path := range sortedKeys(grouped[kind]) {
			if err := c.explicit(kind, path, grouped[kind][path]); err != nil {
				return Compiled{}, err
			}
		}
	}
	if err := c.forcedDefaults(); err != nil {
		return Compiled{}, err
	}
	if err := c.combines(); err != nil {
		return Compiled{}, err
	}
	if len(c.order) == 0 {
		return Compiled{}, errors.NewValidationError("", "update has no changes")
	}
	return c.render()
}

// split groups payload by kind.
func split(payload map[string]any) (map[Kind]map[string]any, error) {
	grouped := make(map[Kind]map[string]any, len(kinds))
	for _, k := range kinds {
		grouped[k] = make(map[string]any)
	}
	for key, v := range payload {
		kind, ok := groups[key]
		if !ok {
			if strings.HasPrefix(key, "$") {
				return nil, errors.NewValidationError(key, "unknown update group")
			}
			grouped[Set][key] = v
			continue
		}
		if kind == Remove {
			paths, err := removePaths(v)
			if err != nil {
				return nil, err
			}
			for _, p := range paths {
				grouped[Remove][p] = nil
			}
			continue
		}
		m, ok := attrtype.Normalize(v).(map[string]any)
		if !ok {
			return nil, errors.NewValidationError(key, fmt.Sprintf("%s expects a map of attribute paths, got %T", key, v))
		}
		for p, pv := range m {
			grouped[kind][p] = pv
		}
	}
	return grouped, nil
}

func removePaths(v any) ([]string, error) {
	switch t := attrtype.Normalize(v).(type) {
	case string:
		return []string{t}, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			p, ok := e.(string)
			if !ok {
				return nil, errors.NewValidationError(RemoveKey, fmt.Sprintf("%s expects attribute paths, got %T", RemoveKey, e))
			}
			out = append(out, p)
		}
		return out, nil
	case map[string]any:
		return sortedKeys(t), nil
	}
	return nil, errors.NewValidationError(RemoveKey, fmt.Sprintf("%s expects a list of attribute paths, got %T", RemoveKey, v))
}

func (c *compiler) mentioned(grouped map[Kind]map[string]any, path string) bool {
	for _, m := range grouped {
		if _, ok := m[path]; ok {
			return true
		}
	}
	return false
}

// kindOptions are the value passes each kind runs.
func kindOptions(kind Kind) marshal.Options {
	opts := marshal.Options{
		Direction:   attrtype.ToWire,
		TypeCheck:   true,
		CustomTypes: true,
		Encode:      true,
	}
	if kind == Set {
		opts.Modifiers = marshal.ModifiersSet
		opts.Validate = true
		opts.Enum = true
		opts.Required = marshal.RequiredNested
	}
	return opts
}

func (c *compiler) explicit(kind Kind, path string, v any) error {
	if path == "" {
		return errors.NewValidationError(path, "empty attribute path")
	}
	if path == c.schema.HashKey() || path == c.schema.RangeKey() {
		return errors.NewValidationError(path, fmt.Sprintf("%s is a key attribute and cannot be updated", path))
	}
	a := c.schema.Attribute(path)
	if a == nil && !c.schema.AllowsUnknown(path) {
		return nil
	}

	if kind == Remove {
		return c.remove(path, a)
	}
	if attrtype.IsOmit(v) {
		return c.omit(path)
	}
	if a != nil && a.ForceDefault && a.HasDefault() && (kind == Set || kind == Add) {
		return c.setDefault(path, a)
	}

	converted, err := marshal.Value(c.schema, path, v, kindOptions(kind))
	if err != nil {
		return err
	}
	if attrtype.IsOmit(converted) {
		return c.omit(path)
	}
	if set, ok := converted.(attrtype.Set); ok && len(set) == 0 {
		if kind == Set {
			return c.omit(path)
		}
		return nil
	}
	act := &action{kind: kind, path: path, value: converted}
	if kind == Add && isList(c.schema, path, converted) {
		act.kind = Set
		act.append = true
	}
	c.put(act)
	return nil
}

func isList(s *schema.Schema, path string, v any) bool {
	a := s.Attribute(path)
	if a == nil {
		return false
	}
	for _, d := range a.Descriptors() {
		if d.Is(v, attrtype.ToWire) {
			return d.Name == attrtype.List
		}
	}
	return false
}

// remove handles an explicit removal. An attribute with a default is reset to
// it; a required attribute cannot be removed.
func (c *compiler) remove(path string, a *schema.Attribute) error {
	if a != nil && a.HasDefault() {
		return c.setDefault(path, a)
	}
	if a != nil && a.Required {
		return errors.NewCheckError(errors.KindRequired, path,
			fmt.Sprintf("%s is a required property but has no value when trying to save document", path))
	}
	c.put(&action{kind: Remove, path: path})
	return nil
}

func (c *compiler) omit(path string) error {
	if c.existing != nil {
		if _, ok := marshal.Lookup(c.existing, path); !ok {
			return nil
		}
	}
	c.put(&action{kind: Remove, path: path})
	return nil
}

func (c *compiler) setDefault(path string, a *schema.Attribute) error {
	converted, err := marshal.Value(c.schema, path, a.DefaultValue(), kindOptions(Set))
	if err != nil {
		return err
	}
	if converted == nil || attrtype.IsOmit(converted) {
		return c.omit(path)
	}
	c.put(&action{kind: Set, path: path, value: converted})
	return nil
}

func (c *compiler) put(act *action) {
	if _, ok := c.actions[act.path]; !ok {
		c.order = append(c.order, act.path)
	}
	c.actions[act.path] = act
}

// forcedDefaults sets every top-level attribute whose default always applies.
func (c *compiler) forcedDefaults() error {
	for _, name := range c.schema.TopLevel() {
		a := c.schema.Attribute(name)
		if !a.ForceDefault || !a.HasDefault() {
			continue
		}
		if _, ok := c.actions[name]; ok {
			continue
		}
		if err := c.setDefault(name, a); err != nil {
			return err
		}
	}
	return nil
}

// combines recomputes combine attributes whose sources this update touches.
// Either every source or none of them must be set or removed.
func (c *compiler) combines() error {
	for _, name := range c.schema.TopLevel() {
		d, ok := c.schema.Attribute(name).Combine()
		if !ok {
			continue
		}
		var touched, missing []string
		values := make(map[string]any)
		for _, src := range d.Settings.Attributes {
			act, ok := c.actions[src]
			if !ok || (act.kind != Set && act.kind != Remove) || act.append {
				missing = append(missing, src)
				continue
			}
			touched = append(touched, src)
			if act.kind == Set {
				marshal.Assign(values, src, act.value)
			}
		}
		if len(touched) == 0 {
			delete(c.actions, name)
			c.order = without(c.order, name)
			continue
		}
		if len(missing) > 0 {
			return errors.NewCheckError(errors.KindCombine, name,
				fmt.Sprintf("%s is combined from [%s] and needs all of them in the update, missing [%s]",
					name, strings.Join(d.Settings.Attributes, ", "), strings.Join(missing, ", ")))
		}
		if joined, ok := marshal.Join(values, d); ok {
			c.put(&action{kind: Set, path: name, value: joined})
		} else {
			c.put(&action{kind: Remove, path: name})
		}
	}
	return nil
}

func without(order []string, path string) []string {
	out := order[:0]
	for _, p := range order {
		if p != path {
			out = append(out, p)
		}
	}
	return out
}

// render allocates placeholders kind by kind from one counter and joins the
// non-empty kinds.
func (c *compiler) render() (Compiled, error) {
	a := placeholder.New(c.start)
	out := Compiled{}
	var sections []string
	for _, kind := range kinds {
		var texts []string
		for _, path := range c.order {
			act := c.actions[path]
			if act.kind != kind {
				continue
			}
			text, err := c.clause(a, act)
			if err != nil {
				return Compiled{}, err
			}
			texts = append(texts, text)
			out.Clauses = append(out.Clauses, Clause{Kind: kind, Path: path, Text: text})
		}
		if len(texts) > 0 {
			sections = append(sections, keywords[kind]+" "+strings.Join(texts, ", "))
		}
	}
	out.Expression = strings.Join(sections, " ")
	out.Names = a.Names()
	out.Values = a.Values()
	out.Next = a.Next()
	return out, nil
}

func (c *compiler) clause(a *placeholder.Allocator, act *action) (string, error) {
	name := a.Path(act.path)
	if act.kind == Remove {
		return name, nil
	}
	av, err := wire.Marshal(act.value)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", act.path, err)
	}
	v := a.Value(av)
	switch {
	case act.append:
		return fmt.Sprintf("%s = list_append(%s, %s)", name, name, v), nil
	case act.kind == Set:
		return fmt.Sprintf("%s = %s", name, v), nil
	}
	return fmt.Sprintf("%s %s", name, v), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
