// Package domainerrors defines the stable, machine-readable error codes the
// service exposes. Services raise these; the transport layer maps them to HTTP
// statuses. Callers and tests match on Code, never on message text.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies an error category. Codes are part of the API contract and
// must never change once published.
type Code string

const (
	// CodeNotFound: identity, external identifier, credential or OTP record
	// absent when required.
	CodeNotFound Code = "NOT_FOUND"
	// CodeDuplicateEntry: uniqueness violation on create, or an ambiguous
	// filter resolving to conflicting identities.
	CodeDuplicateEntry Code = "DUPLICATE_ENTRY"
	// CodeValidation: malformed input, unknown plugin type, unknown rate
	// limit bucket.
	CodeValidation Code = "VALIDATION"
	// CodeTooManyAttempts: a rate limit tripped.
	CodeTooManyAttempts Code = "TOO_MANY_ATTEMPTS"
	// CodeOtpNoMatch: wrong or expired OTP. Deliberately a single code so
	// callers cannot distinguish the two causes.
	CodeOtpNoMatch Code = "OTP_NO_MATCH"
	// CodeFingerprintNoMatch: biometric verification failed. May carry best
	// finger positions in Details when quality check is enabled.
	CodeFingerprintNoMatch Code = "FINGERPRINT_NO_MATCH"
	// CodeInvalidToken: signature, algorithm or expiry check failed, or the
	// claimed identity is not among the candidates.
	CodeInvalidToken Code = "INVALID_TOKEN"
	// CodeMissingIdentityInToken: a verified token carries no identity claim.
	CodeMissingIdentityInToken Code = "MISSING_IDENTITY_IN_TOKEN"
	// CodeNotImplemented: operation unsupported in the current posture.
	CodeNotImplemented Code = "NOT_IMPLEMENTED"
	// CodeUpstreamUnavailable: an outbound collaborator call exhausted its
	// retries.
	CodeUpstreamUnavailable Code = "UPSTREAM_UNAVAILABLE"
	// CodeInternal: unexpected failure; details stay in logs.
	CodeInternal Code = "INTERNAL"
)

// Error is a domain error with a stable code and a human message. It may wrap
// an underlying cause and carry structured details (e.g. best finger positions
// attached to a fingerprint mismatch).
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetail attaches a structured detail and returns the error for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates an underlying error with a domain code. The cause remains
// reachable through errors.Is / errors.As.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the domain code from err, defaulting to CodeInternal for
// non-domain errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DetailsOf returns the structured details attached to err, or nil.
func DetailsOf(err error) map[string]any {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}
