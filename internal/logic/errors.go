package logic

import "errors"

// Domain-specific errors for logic module registration and resolution.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNilModule is returned when registering a nil control loop or handler.
	ErrNilModule = errors.New("logic: module cannot be nil")

	// ErrDuplicateReference is returned when a reference is registered twice.
	ErrDuplicateReference = errors.New("logic: reference already registered")

	// ErrUnknownReference is returned when resolving an unregistered reference.
	ErrUnknownReference = errors.New("logic: unknown reference")
)
