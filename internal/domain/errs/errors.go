// Package errs defines the sentinel errors shared across domain aggregates.
package errs

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("resource already exists")

	// ErrInvalidInput is returned when input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is returned when access is not authorized.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when an action is forbidden.
	ErrForbidden = errors.New("forbidden")

	// ErrConcurrentModification is returned when a write loses a race,
	// e.g. a second accept on a gig that has already been assigned.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrInvalidState is returned when an operation is not allowed in the
	// entity's current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidTransition is returned when a status transition is not allowed.
	ErrInvalidTransition = errors.New("invalid state transition")
)
