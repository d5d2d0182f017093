package models

import (
	"fmt"

	dErrors "idproof/pkg/domain-errors"
)

func ErrInvalidSessionID() error {
	return dErrors.New(dErrors.CodeInvalidInput, "session id must be a valid UUID")
}

func ErrSessionNotFound() error {
	return dErrors.New(dErrors.CodeNotFound, "verification session not found")
}

func ErrMissingContact(ch Channel) error {
	return dErrors.New(dErrors.CodeMissingContact, fmt.Sprintf("no %s contact on file for this session", ch))
}

func ErrUnsupportedChannel(ch Channel) error {
	return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unsupported channel %q", ch))
}

func ErrResendTooSoon(remainingSeconds int) error {
	return dErrors.New(dErrors.CodeResendTooSoon, fmt.Sprintf("a code was sent recently; resend available in %ds", remainingSeconds))
}

func ErrSendFailed(err error) error {
	return dErrors.Wrap(err, dErrors.CodeSendFailed, "could not send verification code")
}

func ErrNoCodeIssued() error {
	return dErrors.New(dErrors.CodeNoCodeIssued, "no verification code has been sent for this channel")
}

func ErrCodeExpired() error {
	return dErrors.New(dErrors.CodeCodeExpired, "verification code has expired")
}

func ErrIncorrectCode(remaining int) error {
	return dErrors.New(dErrors.CodeIncorrectCode, fmt.Sprintf("incorrect code; %d attempt(s) remaining", remaining))
}

func ErrAttemptsExhausted() error {
	return dErrors.New(dErrors.CodeAttemptsExhausted, "too many incorrect codes; request a new code")
}

func ErrCodeCheckFailed(err error) error {
	return dErrors.Wrap(err, dErrors.CodeValidationFailed, "could not check verification code")
}

// ErrValidation is a recoverable remote failure after the automatic retry.
func ErrValidation(err error) error {
	return dErrors.Wrap(err, dErrors.CodeValidationFailed, "validation service unavailable; please try again")
}

func ErrSubmissionInFlight(slot Slot) error {
	return dErrors.New(dErrors.CodeInFlight, fmt.Sprintf("a %s submission is already being validated", slot))
}

// ErrStaleResult is internal: the result arrived after the session moved on.
func ErrStaleResult(t Ticket) error {
	return dErrors.New(dErrors.CodeStaleResult, fmt.Sprintf("discarded %s result from stage %s attempt %d", t.Slot, t.Stage, t.Attempt))
}

func ErrWrongStage(current, required Stage) error {
	return dErrors.New(dErrors.CodeInvalidState, fmt.Sprintf("session is in stage %s, operation requires %s", current, required))
}

func ErrSessionTerminal() error {
	return dErrors.New(dErrors.CodeSessionTerminal, "verification session is complete; start a new session to retry")
}

func ErrEmptyCapture() error {
	return dErrors.New(dErrors.CodeBadRequest, "image data is required")
}

func ErrIllegalTransition(from, to Stage) error {
	return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("illegal transition %s -> %s", from, to))
}

func ErrCodeRequired() error {
	return dErrors.New(dErrors.CodeBadRequest, "verification code is required")
}

func ErrIllegalSide(side Side) error {
	return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("document side must be front or back, got %q", side))
}

func ErrComparisonUnavailable() error {
	return dErrors.New(dErrors.CodeInvalidState, "document face image is not available for comparison; retake the document front")
}

func ErrInvalidContact() error {
	return dErrors.New(dErrors.CodeInvalidInput, "email address is not valid")
}

func ErrUnknownSlot(slot Slot) error {
	return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown artifact slot %q", slot))
}

// ErrAuditUnavailable keeps the session in deciding; the verdict is issued on the next call.
func ErrAuditUnavailable(err error) error {
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "verdict could not be recorded; please try again")
}

func ErrInvalidProfile(p Profile) error {
	return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("profile must be standard or strict, got %q", p))
}
