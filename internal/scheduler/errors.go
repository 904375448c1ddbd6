package scheduler

import "errors"

// Domain-specific errors for scheduler operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrInvalidInterval is returned when a job interval is zero or negative.
	ErrInvalidInterval = errors.New("scheduler: interval must be positive")

	// ErrNilCallable is returned when a job is registered without a callable.
	ErrNilCallable = errors.New("scheduler: callable cannot be nil")

	// ErrAlreadyStarted is returned when Add or Start is called after Start.
	ErrAlreadyStarted = errors.New("scheduler: already started")

	// ErrStopped is returned when Start is called after Stop.
	ErrStopped = errors.New("scheduler: already stopped")

	// ErrUnknownPolicy is returned for an unrecognised overlap policy string.
	ErrUnknownPolicy = errors.New("scheduler: unknown overlap policy")
)
