package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrFetch        = errors.New("fetch failed")
	ErrMutation     = errors.New("mutation failed")

	// ErrClassificationPending marks the transient state where role metadata
	// has not loaded yet. It is never fatal.
	ErrClassificationPending = errors.New("classification pending")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// FetchError reports a network or envelope failure while fetching a page.
// Message is safe to show to the user.
type FetchError struct {
	Op      string
	Page    int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("%s page %d: %s", e.Op, e.Page, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap exposes both the cause and the ErrFetch sentinel to errors.Is.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFetch}
	}
	return []error{ErrFetch, e.Err}
}

// NewFetchError builds a FetchError whose message is taken from err.
func NewFetchError(op string, page int, err error) *FetchError {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	return &FetchError{Op: op, Page: page, Message: msg, Err: err}
}

// MutationAction is the membership change a mutation attempted.
type MutationAction string

const (
	MutationAdd    MutationAction = "add"
	MutationRemove MutationAction = "remove"
)

func (a MutationAction) String() string { return string(a) }

// MutationError reports a failed team-membership add or remove.
type MutationError struct {
	EntityID   string
	Action     MutationAction
	RolledBack bool
	Err        error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("team %s %s: %v", e.Action, e.EntityID, e.Err)
}

func (e *MutationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMutation}
	}
	return []error{ErrMutation, e.Err}
}
