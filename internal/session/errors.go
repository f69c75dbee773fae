package session

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected during session execution.
//
// The engine's failure policy is fail-open: losing a run is worse than a
// slightly stale log, so most of these are logged and absorbed rather than
// propagated to the participant.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// SessionID identifies the affected session.
	SessionID string

	// InputID identifies the input involved, when there is one.
	InputID string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownInput indicates an activation for an input ID not in the
	// session's configuration. Non-fatal: configurations may change between
	// load and a stale client's activation.
	ErrCodeUnknownInput RuntimeErrorCode = "UNKNOWN_INPUT"

	// ErrCodeSessionEnded indicates an activation arrived after the terminal
	// transition. Non-fatal: the activation is dropped.
	ErrCodeSessionEnded RuntimeErrorCode = "SESSION_ENDED"

	// ErrCodeAppendFailed indicates a durable event log append failed.
	// In-memory state has already been applied and is never rolled back;
	// the failure is surfaced for retry or alerting.
	ErrCodeAppendFailed RuntimeErrorCode = "APPEND_FAILED"
)

func (e *RuntimeError) Error() string {
	if e.InputID != "" {
		return fmt.Sprintf("%s: %s (session=%s, input=%s)", e.Code, e.Message, e.SessionID, e.InputID)
	}
	return fmt.Sprintf("%s: %s (session=%s)", e.Code, e.Message, e.SessionID)
}

// IsUnknownInput reports whether err is an unknown-input activation error.
// Uses errors.As to handle wrapped errors.
func IsUnknownInput(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeUnknownInput
}

// IsAppendFailed reports whether err is a durable write failure.
func IsAppendFailed(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re) && re.Code == ErrCodeAppendFailed
}
