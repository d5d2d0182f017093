// Package domainerrors carries coded domain errors across layers. Services return
// them, transports translate the code into a status and a user-facing next step.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, client-visible error identifier.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvalidState       Code = "invalid_state"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal_error"

	// Verification flow codes.
	CodeMissingContact    Code = "missing_contact"
	CodeSendFailed        Code = "send_failed"
	CodeResendTooSoon     Code = "resend_too_soon"
	CodeNoCodeIssued      Code = "no_code_issued"
	CodeIncorrectCode     Code = "incorrect_code"
	CodeCodeExpired       Code = "code_expired"
	CodeAttemptsExhausted Code = "attempts_exhausted"
	CodeValidationFailed  Code = "validation_failed"
	CodeInFlight          Code = "submission_in_flight"
	CodeStaleResult       Code = "stale_result"
	CodeSessionTerminal   Code = "session_terminal"
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// As extracts the outermost domain error from err.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
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

// Is is kept for call sites that read better with it; it matches the outermost code only.
func Is(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// ToHTTPStatus maps a code to the HTTP status the transport should use.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeValidation, CodeInvalidInput, CodeMissingContact, CodeIncorrectCode:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidState, CodeInFlight, CodeSessionTerminal, CodeStaleResult:
		return http.StatusConflict
	case CodeCodeExpired, CodeNoCodeIssued:
		return http.StatusGone
	case CodeResendTooSoon, CodeAttemptsExhausted:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeUnavailable, CodeValidationFailed, CodeSendFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
