package entities

import (
	"errors"
	"fmt"
)

// The engine's user-facing error kinds. Callers branch on these with
// errors.Is / errors.As; they are never matched by message text.
var (
	// ErrAlreadyPostedToday is returned when a user submits a second daily
	// pick for the same calendar date. Expected, not exceptional.
	ErrAlreadyPostedToday = errors.New("user has already posted a pick today")

	// ErrRateLimitExceeded is returned when an owner has already had a swap
	// accepted on the requested date. Not retried.
	ErrRateLimitExceeded = errors.New("swap quota for today already consumed")

	// ErrConcurrentModification is returned after the bounded serialization
	// retry budget is exhausted. The whole request may be retried by the
	// caller.
	ErrConcurrentModification = errors.New("operation conflicted with concurrent modifications")
)

// ValidationError reports invalid swap input. It is rejected before any
// mutation; the caller recovers by correcting the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConsistencyViolationError indicates a broken internal invariant, such as a
// social currency counter underflow. It is fatal for the current operation:
// never repaired in place, never masked behind a retry.
type ConsistencyViolationError struct {
	Detail string
}

func (e *ConsistencyViolationError) Error() string {
	return "consistency violation: " + e.Detail
}

// NewConsistencyViolation creates a ConsistencyViolationError.
func NewConsistencyViolation(format string, args ...any) *ConsistencyViolationError {
	return &ConsistencyViolationError{Detail: fmt.Sprintf(format, args...)}
}

// IsConsistencyViolation reports whether err is a ConsistencyViolationError.
func IsConsistencyViolation(err error) bool {
	var cv *ConsistencyViolationError
	return errors.As(err, &cv)
}
