package service

import (
	"fmt"
	"strings"
)

// ValidationError reports client input that violates a billing rule. Handlers
// map it to a 400.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// NotFoundError reports a missing resource scoped to the requesting user.
// Handlers map it to a 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StoreError wraps a storage failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// PartialFailure collects non-fatal errors from a best-effort sweep, such as
// resetting time entries while deleting an invoice. The primary operation
// succeeds; the failures are reported for logging.
type PartialFailure struct {
	Op   string
	Errs []error
}

func (e *PartialFailure) Add(err error) {
	e.Errs = append(e.Errs, err)
}

func (e *PartialFailure) Len() int {
	return len(e.Errs)
}

func (e *PartialFailure) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%s completed with %d failures: %s", e.Op, len(e.Errs), strings.Join(msgs, "; "))
}
