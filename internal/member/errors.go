package member

import (
	"errors"
	"fmt"
)

// Code categorizes storage and orchestration failures.
type Code string

const (
	// CodeNotFound indicates the record is absent from the targeted store.
	CodeNotFound Code = "NOT_FOUND"

	// CodeDuplicateEmail indicates the email uniqueness constraint was
	// violated in the targeted store.
	CodeDuplicateEmail Code = "DUPLICATE_EMAIL"

	// CodeInvalidIdentifier indicates a malformed id for a store that
	// requires numeric keys.
	CodeInvalidIdentifier Code = "INVALID_IDENTIFIER"

	// CodeConsistency indicates the cross-store identity invariant was
	// broken. This is fatal: it must never be caught and retried.
	CodeConsistency Code = "CONSISTENCY_VIOLATION"
)

// StoreError is the structured error surfaced by both adapters and the
// orchestrator. Adapters translate native driver failures into this
// type before returning; callers only ever see these codes.
type StoreError struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// Store names the back-end that produced the error, when known.
	Store StoreKind
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Store != "" {
		return fmt.Sprintf("%s: %s (store=%s)", e.Code, e.Message, e.Store)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewNotFound creates a NotFound error for the given id.
func NewNotFound(store StoreKind, id string) *StoreError {
	return &StoreError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("member not found with id: %s", id),
		Store:   store,
	}
}

// NewDuplicateEmail creates a DuplicateEmail error.
func NewDuplicateEmail(store StoreKind, email string) *StoreError {
	return &StoreError{
		Code:    CodeDuplicateEmail,
		Message: fmt.Sprintf("email already exists: %s", email),
		Store:   store,
	}
}

// IsNotFound returns true if the error is a NotFound error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsDuplicateEmail returns true if the error is a DuplicateEmail error.
func IsDuplicateEmail(err error) bool {
	return hasCode(err, CodeDuplicateEmail)
}

// IsInvalidIdentifier returns true if the error is an InvalidIdentifier error.
func IsInvalidIdentifier(err error) bool {
	return hasCode(err, CodeInvalidIdentifier)
}

// IsConsistency returns true if the error is a consistency violation.
func IsConsistency(err error) bool {
	return hasCode(err, CodeConsistency)
}

func hasCode(err error, code Code) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
