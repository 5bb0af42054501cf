package client

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the backend answers 404.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned when the backend answers 400 or a request is
	// rejected locally.
	ErrValidation = errors.New("validation failed")
	// ErrNoSession is returned by writes attempted before a session exists.
	// Callers treat it as a silent no-op.
	ErrNoSession = errors.New("no active session")
	// ErrStepOutOfRange is returned before dispatch when a step index lies
	// outside the attack.
	ErrStepOutOfRange = errors.New("step out of range")
	// ErrStaleResponse is returned when a newer RecordStep for the same
	// attack was issued while this one was in flight.
	ErrStaleResponse = errors.New("stale response")
)

// NetworkError wraps transport failures and unexpected backend statuses.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: backend returned status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
