package domain

import "fmt"

// ValidationError covers missing or invalid required fields and rejected
// file uploads. It never follows a mutation, so its message is safe to
// return to clients verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a lookup or a zero-affected-rows mutation against
// a row that does not exist.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s not found", e.Entity, e.Key)
}

func NewNotFoundError(entity string, id int) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: fmt.Sprintf("id %d", id)}
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// PersistenceError wraps driver and transaction failures. The message is
// deliberately generic; the wrapped cause is for logs only.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "internal storage failure" }

func (e *PersistenceError) Unwrap() error { return e.Err }

// AssetError reports a failed file write or delete on the content root.
type AssetError struct {
	Op   string
	Path string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("asset %s failed for %q: %v", e.Op, e.Path, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }
