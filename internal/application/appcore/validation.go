package appcore

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

const (
	// MaxTitleLength is the maximum length for gig and milestone titles.
	MaxTitleLength = 200

	// MaxCoverLetterLength is the maximum length for application cover letters.
	MaxCoverLetterLength = 5000
)

// ValidateRequired checks that the string is not empty or blank.
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "is required")
	}
	return nil
}

// ValidateUUID checks that the UUID is set.
func ValidateUUID(field string, id uuid.UUID) error {
	if id.IsZero() {
		return NewValidationError(field, "must be a valid UUID")
	}
	return nil
}

// ValidateMaxLength checks the maximum string length.
func ValidateMaxLength(field, value string, maxLength int) error {
	if len(value) > maxLength {
		return NewValidationError(field, fmt.Sprintf("must be at most %d characters", maxLength))
	}
	return nil
}

// ValidateEnum checks that the value is one of the allowed values.
func ValidateEnum(field, value string, allowedValues []string) error {
	if slices.Contains(allowedValues, value) {
		return nil
	}
	return NewValidationError(field, fmt.Sprintf("must be one of: %v", allowedValues))
}

// ValidatePositiveAmount checks that a monetary amount is positive.
func ValidatePositiveAmount(field string, value float64) error {
	if value <= 0 {
		return NewValidationError(field, "must be positive")
	}
	return nil
}

// ValidateFutureDate checks that the date lies in the future.
func ValidateFutureDate(field string, date time.Time) error {
	if !date.After(time.Now()) {
		return NewValidationError(field, "must be in the future")
	}
	return nil
}

// ValidateRange checks that the value lies within [minValue, maxValue].
func ValidateRange(field string, value, minValue, maxValue int) error {
	if value < minValue || value > maxValue {
		return NewValidationError(field, fmt.Sprintf("must be between %d and %d", minValue, maxValue))
	}
	return nil
}

// ValidateNonEmptySlice checks that at least one element is present.
func ValidateNonEmptySlice[T any](field string, values []T) error {
	if len(values) == 0 {
		return NewValidationError(field, "must contain at least one element")
	}
	return nil
}

// ValidateEmail checks a minimal email shape: something@something.something.
func ValidateEmail(field, value string) error {
	if value == "" {
		return NewValidationError(field, "is required")
	}
	at := strings.Index(value, "@")
	if at <= 0 || at == len(value)-1 || !strings.Contains(value[at:], ".") {
		return NewValidationError(field, "must be a valid email address")
	}
	return nil
}
