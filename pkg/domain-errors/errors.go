// Package domainerrors defines the coded error type shared by all modules.
// Services return these (or wrap infrastructure errors into them) and the
// HTTP layer translates codes into status codes and a stable JSON envelope.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport-level translation.
type Code string

const (
	// CodeValidation: client-supplied data fails a precondition.
	CodeValidation Code = "validation_error"

	// CodeBadRequest: the request itself is malformed (bad JSON, missing body).
	CodeBadRequest Code = "bad_request"

	// CodeNotFound: the referenced entity does not exist.
	CodeNotFound Code = "not_found"

	// CodeUpstreamUnavailable: network/timeout/non-structured failure talking
	// to the registrar or the messaging platform.
	CodeUpstreamUnavailable Code = "upstream_unavailable"

	// CodeUpstreamRejected: the upstream responded but reported a
	// business-level failure (unknown domain, unresolvable name conflict).
	CodeUpstreamRejected Code = "upstream_rejected"

	// CodeProvisioningFailed: channel resolution failed irrecoverably.
	CodeProvisioningFailed Code = "provisioning_failed"

	// CodeInternal: unexpected internal error. Details are never surfaced.
	CodeInternal Code = "internal_error"
)

// Error carries a code, a human-readable message, and an optional cause.
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

// New creates a coded error with a message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from an error, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the message from a coded error. Non-coded errors yield
// an empty string so callers never leak raw internals.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
