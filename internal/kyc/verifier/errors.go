package verifier

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy for verifier calls.
type ErrorCategory string

const (
	// ErrorTimeout indicates the verifier took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorBadData indicates the verifier returned invalid/malformed data
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorAuthentication indicates credential or permission issues
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorOutage indicates the verifier is unreachable or failing
	ErrorOutage ErrorCategory = "outage"

	// ErrorRejectedRequest indicates the verifier refused the request as malformed
	ErrorRejectedRequest ErrorCategory = "rejected_request"

	// ErrorRateLimited indicates too many requests
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorCircuitOpen indicates the call was short-circuited without network traffic
	ErrorCircuitOpen ErrorCategory = "circuit_open"
)

// Error wraps verifier failures with normalized categorization.
type Error struct {
	Category   ErrorCategory
	Op         string
	Message    string
	Underlying error
	Retryable  bool
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("verifier %s [%s]: %s: %v", e.Op, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("verifier %s [%s]: %s", e.Op, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// NewError creates a categorized verifier error.
func NewError(category ErrorCategory, op, message string, underlying error) *Error {
	retryable := category == ErrorTimeout ||
		category == ErrorOutage ||
		category == ErrorRateLimited

	return &Error{
		Category:   category,
		Op:         op,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable checks if an error is worth the automatic retry.
func IsRetryable(err error) bool {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error.
func GetCategory(err error) ErrorCategory {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Category
	}
	return ErrorOutage
}
