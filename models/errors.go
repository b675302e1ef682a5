package models

import "errors"

// Workflow errors surfaced to callers. Side-effect failures (PDF rendering,
// notification inserts) are logged at the point of the side effect and are
// deliberately absent here.
var (
	// ErrNotFound is returned when a referenced entity does not exist or is
	// not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned when a state change is attempted from
	// a status it is not legal from. Under concurrent requests exactly one
	// caller wins the transition; the rest receive this error.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrDuplicateAssignment is returned when an active (non-rejected)
	// assignment already exists for the same order and driver.
	ErrDuplicateAssignment = errors.New("duplicate assignment")

	// ErrInvalidDriver is returned when assigning to an inactive driver.
	ErrInvalidDriver = errors.New("driver is not active")

	// ErrInvalidInput is returned for malformed request payloads that fail
	// boundary validation.
	ErrInvalidInput = errors.New("invalid input")
)
