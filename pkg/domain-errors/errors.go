// Package domainerrors defines the coded error type services return and the
// HTTP boundary recovers into a uniform client-visible failure. None of
// these codes are fatal to the process.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeConflict signals a duplicate email (or other uniqueness clash) at
	// the relevant layer.
	CodeConflict Code = "conflict"
	// CodeNotFound signals an unknown identity, pending record, or document.
	CodeNotFound Code = "not_found"
	// CodeInvalidOrExpired signals a bad or stale OTP.
	CodeInvalidOrExpired Code = "invalid_or_expired"
	// CodeUnauthorized signals failed credentials; it is intentionally
	// indistinguishable from an unknown email.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden signals a permitted identity lacking the required role.
	CodeForbidden Code = "forbidden"
	// CodeInvalidInput signals a malformed status target or malformed
	// role-conditional attributes.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest signals an unreadable request at the boundary.
	CodeBadRequest Code = "bad_request"
	// CodeInternal covers everything the client cannot act on.
	CodeInternal Code = "internal"
)

// Error is a coded domain error, optionally wrapping a cause.
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

// New creates a coded error with a human-readable message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// Is is a readability alias for HasCode at call sites that test a single code.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code carried by err, or CodeInternal when
// err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost message carried by err, or a generic one.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code to the status the boundary responds with.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeConflict:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidOrExpired:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
