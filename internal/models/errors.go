package models

import (
	"fmt"
	"sort"
	"strings"
)

// FieldError describes one failing field in a validation error.
type FieldError struct {
	Path    string
	Message string
}

// ValidationError reports every field that failed schema validation,
// not just the first.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a validation error with the field errors
// sorted by path for deterministic output.
func NewValidationError(fields []FieldError) *ValidationError {
	sort.Slice(fields, func(i, j int) bool { return fields[i].Path < fields[j].Path })
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Path, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// SchemaConflictError reports a custom field colliding with a core field
// name, or two fields mapping onto the same storage column. Raised at
// configuration time only.
type SchemaConflictError struct {
	Field string
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("schema conflict on field %q", e.Field)
}

// NotFoundError reports an absent referenced entity.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ForbiddenError reports that the actor lacks permission for an operation.
// Raised before any mutation.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return "forbidden: " + e.Reason
}

// ConflictError reports a domain invariant violation, e.g. a duplicate
// active membership or removing the sole owner.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

// PersistenceError wraps an adapter-level failure. The cause is preserved
// for logging but never exposed to clients.
type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// AbortedError is the hook-initiated short-circuit signal. Result, when
// non-nil, is returned to the caller in place of the operation's output.
type AbortedError struct {
	Result any
}

func (e *AbortedError) Error() string {
	return "operation aborted"
}
