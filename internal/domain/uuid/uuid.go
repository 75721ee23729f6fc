// Package uuid wraps github.com/google/uuid behind a string-backed ID type
// so document stores and JSON payloads can carry IDs without conversion.
package uuid

import (
	"github.com/google/uuid"
)

// UUID is a string-backed universally unique identifier.
type UUID string

// NewUUID generates a new random UUID.
func NewUUID() UUID {
	return UUID(uuid.New().String())
}

// ParseUUID parses s into a UUID, validating the format.
func ParseUUID(s string) (UUID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return UUID(s), nil
}

// MustParseUUID parses s into a UUID or panics. For tests and constants.
func MustParseUUID(s string) UUID {
	id, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the canonical string form.
func (u UUID) String() string {
	return string(u)
}

// IsZero reports whether the UUID is unset.
func (u UUID) IsZero() bool {
	return u == ""
}

// FromGoogleUUID converts a google/uuid value to a domain UUID.
func FromGoogleUUID(id uuid.UUID) UUID {
	return UUID(id.String())
}

// ToGoogleUUID converts the domain UUID back to a google/uuid value.
func (u UUID) ToGoogleUUID() (uuid.UUID, error) {
	return uuid.Parse(string(u))
}
