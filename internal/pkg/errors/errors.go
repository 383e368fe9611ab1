package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation references a record id that
	// does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when an event is not legal from the
	// record's current status, including events against terminal records.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrConflict is returned when the store's optimistic status check failed
	// because a concurrent mutation won the race.
	ErrConflict = errors.New("conflict")
	// ErrValidation is returned for malformed input, before the store is
	// touched.
	ErrValidation = errors.New("validation failed")
)

// PublishError wraps a failure of the host content store during publish or
// unpublish. Retryable tells the caller whether a retry of the same call can
// be expected to succeed (timeouts and transient transport failures) or not
// (the store rejected the content).
type PublishError struct {
	Op        string // "publish" or "unpublish"
	Retryable bool
	Err       error
}

func (e *PublishError) Error() string {
	kind := "rejected"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("content store %s failed (%s): %v", e.Op, kind, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

func NewPublishError(op string, retryable bool, err error) *PublishError {
	return &PublishError{Op: op, Retryable: retryable, Err: err}
}

// IsRetryablePublish reports whether err is a PublishError that is safe to
// retry.
func IsRetryablePublish(err error) bool {
	var pe *PublishError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// Code maps a workflow error onto the stable code strings that bulk results
// and API responses carry.
func Code(err error) string {
	var pe *PublishError
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.As(err, &pe):
		return "publish_failure"
	default:
		return "internal"
	}
}
