// Package derrors provides coded domain errors.
//
// Every component returns a tagged error (a Code plus human-readable
// message) instead of raising opaque faults. Transport layers translate
// codes into HTTP statuses; services use HasCode to branch on outcomes
// without string matching. Infrastructure facts (row missing, key taken)
// are sentinel errors from pkg/platform/sentinel and get wrapped into
// coded errors at the service boundary.
package derrors

import (
	"errors"
	"fmt"
)

// Code tags an error with a stable, machine-readable kind.
type Code string

const (
	// Registry-specific failure kinds.
	CodeDuplicateEmail       Code = "duplicate_email"
	CodeUnknownOwner         Code = "unknown_owner"
	CodeInvalidTransition    Code = "invalid_transition"
	CodeIncompleteForm       Code = "incomplete_form"
	CodeConfirmationRequired Code = "confirmation_required"

	// Ambient kinds shared by every component.
	CodeNotFound     Code = "not_found"
	CodeForbidden    Code = "forbidden"
	CodeUnauthorized Code = "unauthorized"
	CodeConflict     Code = "conflict"
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeValidation   Code = "validation_failed"
	CodeInternal     Code = "internal_error"
)

// Error carries a code, a message safe to log, and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// chain for errors.Is / errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var coded *Error
	for errors.As(err, &coded) {
		if coded.Code == code {
			return true
		}
		err = coded.cause
		if err == nil {
			return false
		}
	}
	return false
}

// Is is an alias of HasCode kept for call-site readability in tests.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error is not coded.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}
