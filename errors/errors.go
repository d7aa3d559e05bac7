/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when an item is not found
	ErrNotFound = errors.New("item not found")

	// ErrAlreadyExists is returned when attempting to create an item that already exists
	ErrAlreadyExists = errors.New("item already exists")

	// ErrInvalidInput is returned when validation, required, enum or combine checks fail
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional write fails
	ErrConditionFailed = errors.New("condition check failed")

	// ErrSchemaDeclaration is returned when a schema declaration is malformed
	ErrSchemaDeclaration = errors.New("invalid schema declaration")

	// ErrTypeMismatch is returned when a value matches none of its attribute's types
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnindexable is returned when no index can serve a query
	ErrUnindexable = errors.New("no index can serve the query")

	// ErrBuilderState is returned when a condition builder call is illegal in its current state
	ErrBuilderState = errors.New("illegal condition builder state")
)

// ValidationKind names the check that produced a ValidationError.
type ValidationKind string

const (
	KindInput     ValidationKind = "input"
	KindValidator ValidationKind = "validator"
	KindRequired  ValidationKind = "required"
	KindEnum      ValidationKind = "enum"
	KindCombine   ValidationKind = "combine"
)

// NotFoundError represents an error when an item is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when an item already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents a failed validator, required, enum or combine check
type ValidationError struct {
	Field   string
	Message string
	Kind    ValidationKind
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// SchemaDeclarationError is raised while building a schema. It is never retried.
type SchemaDeclarationError struct {
	Attribute string
	Message   string
}

func (e *SchemaDeclarationError) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("schema declaration error at %q: %s", e.Attribute, e.Message)
	}
	return fmt.Sprintf("schema declaration error: %s", e.Message)
}

func (e *SchemaDeclarationError) Is(target error) bool {
	return target == ErrSchemaDeclaration
}

// TypeMismatchError reports a value that none of the declared types accept.
type TypeMismatchError struct {
	Path     string
	Expected []string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("expected %s to be of type %s, instead found type %s",
		e.Path, strings.Join(e.Expected, ", "), e.Actual)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// UnindexableQueryError reports a query whose conditions match no index.
type UnindexableQueryError struct {
	Attributes []string
}

func (e *UnindexableQueryError) Error() string {
	if len(e.Attributes) == 0 {
		return "index can't be found for query: no equality condition on any hash key"
	}
	return fmt.Sprintf("index can't be found for query on attributes [%s]", strings.Join(e.Attributes, ", "))
}

func (e *UnindexableQueryError) Is(target error) bool {
	return target == ErrUnindexable
}

// BuilderStateError reports a condition builder call made in the wrong state.
type BuilderStateError struct {
	Call  string
	State string
}

func (e *BuilderStateError) Error() string {
	return fmt.Sprintf("condition builder: %s called in state %s", e.Call, e.State)
}

func (e *BuilderStateError) Is(target error) bool {
	return target == ErrBuilderState
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(itemType, key string) error {
	return &NotFoundError{Type: itemType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(itemType, key string) error {
	return &AlreadyExistsError{Type: itemType, Key: key}
}

// NewValidationError creates a new ValidationError of kind KindInput
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message, Kind: KindInput}
}

// NewCheckError creates a ValidationError for the given check kind
func NewCheckError(kind ValidationKind, field, message string) error {
	return &ValidationError{Field: field, Message: message, Kind: kind}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// NewSchemaDeclarationError creates a new SchemaDeclarationError
func NewSchemaDeclarationError(attribute, format string, args ...any) error {
	return &SchemaDeclarationError{Attribute: attribute, Message: fmt.Sprintf(format, args...)}
}

// NewTypeMismatchError creates a new TypeMismatchError
func NewTypeMismatchError(path string, expected []string, actual string) error {
	return &TypeMismatchError{Path: path, Expected: expected, Actual: actual}
}

// NewUnindexableQueryError creates a new UnindexableQueryError
func NewUnindexableQueryError(attributes ...string) error {
	return &UnindexableQueryError{Attributes: attributes}
}

// NewBuilderStateError creates a new BuilderStateError
func NewBuilderStateError(call, state string) error {
	return &BuilderStateError{Call: call, State: state}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsSchemaDeclaration checks if an error is a schema declaration error
func IsSchemaDeclaration(err error) bool {
	return errors.Is(err, ErrSchemaDeclaration)
}

// IsTypeMismatch checks if an error is a type mismatch error
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsUnindexable checks if an error is an unindexable query error
func IsUnindexable(err error) bool {
	return errors.Is(err, ErrUnindexable)
}

// IsBuilderState checks if an error is a builder state error
func IsBuilderState(err error) bool {
	return errors.Is(err, ErrBuilderState)
}

// KindOf returns the validation kind of err, or "" when err is not a ValidationError.
func KindOf(err error) ValidationKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}
