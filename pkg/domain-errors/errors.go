// Package domainerrors carries coded errors from services to transports.
//
// Services return errors built with New or Wrap. Transports translate the Code
// into a status and an operator-facing message without inspecting strings.
// Stores should return pkg/platform/sentinel errors instead and let the
// service layer choose the code.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error kind.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvariantViolation Code = "invariant_violation"
	CodeNotFound           Code = "not_found"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal_error"

	// Cheque printing failure kinds. Each maps to a distinct operator action.
	CodeUpstreamData      Code = "upstream_data"
	CodeSerialConflict    Code = "serial_conflict"
	CodeInsufficientStock Code = "insufficient_stock"
	CodeNoPrintableLeaves Code = "no_printable_leaves"
	CodePrintBlocked      Code = "print_blocked"
)

// Error is a domain error with a code and a human-readable message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error without an underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any domain error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CodeOf returns the outermost domain code, or CodeInternal for plain errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost domain message, or an empty string.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// Is is errors.Is, re-exported so callers need a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
