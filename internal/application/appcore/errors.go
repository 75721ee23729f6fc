// Package appcore holds shared building blocks for the application layer:
// validation helpers, the generic use-case result, and common errors.
package appcore

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	ErrValidationFailed = errors.New("validation failed")

	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrInsufficientPermissions = errors.New("insufficient permissions")

	ErrNotFound            = errors.New("resource not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrGigNotFound         = errors.New("gig not found")
	ErrApplicationNotFound = errors.New("application not found")

	ErrConflict         = errors.New("conflict")
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrConcurrentUpdate = errors.New("concurrent update detected")

	ErrDatabaseError = errors.New("database error")
	ErrEventBusError = errors.New("event bus error")
)

// ValidationError is a field-level validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is makes every ValidationError match ErrValidationFailed.
func (e ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}
