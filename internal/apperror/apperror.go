// Package apperror defines the error kinds shared by the store, service
// and handler layers, and how each kind is presented over HTTP.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for status-code mapping.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindDuplicateKey
	KindNotFound
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicateKey:
		return "duplicate_key"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	default:
		return "unexpected"
	}
}

// Error is the single error type crossing layer boundaries.
type Error struct {
	Kind    Kind
	Message string
	// Field names the unique column for KindDuplicateKey, when known.
	Field string
	// Fields lists the missing required fields for KindValidation.
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so errors.Is(err, ErrNotFound) works for any
// not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrValidation   = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrDuplicateKey = &Error{Kind: KindDuplicateKey, Message: "duplicate key"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrStore        = &Error{Kind: KindStore, Message: "store failure"}
	ErrUnexpected   = &Error{Kind: KindUnexpected, Message: "unexpected failure"}
)

// MissingFields reports required fields that were absent or empty.
func MissingFields(fields ...string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: "Missing required fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}

// Invalid reports a rule violation on a present field.
func Invalid(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// DuplicateKey wraps a unique-constraint violation. field may be empty.
func DuplicateKey(field string, err error) *Error {
	return &Error{Kind: KindDuplicateKey, Message: "duplicate key", Field: field, Err: err}
}

// Store wraps any other persistence failure.
func Store(op string, err error) *Error {
	return &Error{Kind: KindStore, Message: op, Err: err}
}

// Unexpected wraps a programming or runtime fault.
func Unexpected(op string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: op, Err: err}
}

// KindOf returns the Kind of err, KindUnexpected for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// HTTPError is what a handler writes for a failed request.
type HTTPError struct {
	StatusCode int
	Message    string
	Detail     string
}

// ToHTTP maps err to a client-safe status and message. Wrapped backend
// errors never reach Message or Detail.
func ToHTTP(err error) *HTTPError {
	var e *Error
	if !errors.As(err, &e) {
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "An unexpected error occurred"}
	}
	switch e.Kind {
	case KindValidation:
		return &HTTPError{StatusCode: http.StatusBadRequest, Message: e.Message}
	case KindDuplicateKey:
		he := &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "Integrity error: possibly duplicate username or email",
		}
		if e.Field != "" {
			he.Detail = e.Field + " already exists"
		}
		return he
	case KindNotFound:
		return &HTTPError{StatusCode: http.StatusNotFound, Message: "user not found"}
	case KindStore:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "Database error occurred"}
	default:
		return &HTTPError{StatusCode: http.StatusInternalServerError, Message: "An unexpected error occurred"}
	}
}
