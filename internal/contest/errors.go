package contest

import (
	"errors"
	"fmt"
)

// Error is the engine's error type. Every failure the engine reports to a
// caller carries one of the ErrorCode values below.
//
// There is no conflict code: concurrent decisions never conflict, they append.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Resource names the kind of entity that was missing ("contest", "catch").
	Resource string

	// ID identifies the affected entity, when known.
	ID string

	// Err is the underlying cause (StoreUnavailable only).
	Err error
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a contest or catch does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeInvalidDecision indicates a bad status or a rejection without reason.
	ErrCodeInvalidDecision ErrorCode = "INVALID_DECISION"

	// ErrCodeStoreUnavailable indicates the durability layer failed a read or append.
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	if e.ID != "" {
		return fmt.Sprintf("%s: %s (id=%s)", e.Code, e.Message, e.ID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewNotFound creates a NOT_FOUND error for the given resource kind and id.
func NewNotFound(resource, id string) *Error {
	return &Error{
		Code:     ErrCodeNotFound,
		Message:  resource + " not found",
		Resource: resource,
		ID:       id,
	}
}

// NewContestNotFound is shorthand for NewNotFound("contest", id).
func NewContestNotFound(id string) *Error {
	return NewNotFound("contest", id)
}

// NewCatchNotFound is shorthand for NewNotFound("catch", id).
func NewCatchNotFound(id string) *Error {
	return NewNotFound("catch", id)
}

// NewInvalidDecision creates an INVALID_DECISION error.
func NewInvalidDecision(message string) *Error {
	return &Error{Code: ErrCodeInvalidDecision, Message: message}
}

// NewStoreUnavailable wraps a durability failure.
// op names the store operation that failed, e.g. "append validation".
func NewStoreUnavailable(op string, err error) *Error {
	return &Error{Code: ErrCodeStoreUnavailable, Message: op, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// IsInvalidDecision reports whether err is an INVALID_DECISION error.
func IsInvalidDecision(err error) bool {
	return CodeOf(err) == ErrCodeInvalidDecision
}

// IsStoreUnavailable reports whether err is a STORE_UNAVAILABLE error.
func IsStoreUnavailable(err error) bool {
	return CodeOf(err) == ErrCodeStoreUnavailable
}
