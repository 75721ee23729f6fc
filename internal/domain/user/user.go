// Package user contains the marketplace user profile aggregate.
//
// A profile joins an external authentication identity (OIDC subject) to the
// marketplace role and reputation data. The role is chosen at registration
// and is immutable afterwards.
package user

import (
	"slices"
	"strings"
	"time"

	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Role determines what a user may do on the marketplace.
type Role string

const (
	// RoleAdmin is the platform administrator role.
	RoleAdmin Role = "admin"
	// RoleClient posts gigs and accepts or rejects applications.
	// Persisted as "job_poster" for compatibility with the original data set.
	RoleClient Role = "job_poster"
	// RoleFreelancer applies to gigs and is assigned work.
	RoleFreelancer Role = "freelancer"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleClient || r == RoleFreelancer
}

// Rating bounds.
const (
	MinRating = 0.0
	MaxRating = 5.0
)

// User is the marketplace profile for an authenticated identity.
type User struct {
	id            uuid.UUID
	externalID    string
	email         string
	displayName   string
	role          Role
	skills        []string
	rating        float64
	completedGigs int
	isActive      bool
	createdAt     time.Time
	updatedAt     time.Time
}

// NewUser creates a profile for a fresh identity. The role is fixed for the
// lifetime of the profile.
func NewUser(externalID, email, displayName string, role Role) (*User, error) {
	if externalID == "" {
		return nil, errs.ErrInvalidInput
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, errs.ErrInvalidInput
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, errs.ErrInvalidInput
	}
	if !ValidRole(role) {
		return nil, errs.ErrInvalidInput
	}

	now := time.Now()
	return &User{
		id:          uuid.NewUUID(),
		externalID:  externalID,
		email:       email,
		displayName: strings.TrimSpace(displayName),
		role:        role,
		skills:      []string{},
		isActive:    true,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a profile from storage without running business
// validation. All values must come from a previously saved profile.
func Reconstruct(
	id uuid.UUID,
	externalID, email, displayName string,
	role Role,
	skills []string,
	rating float64,
	completedGigs int,
	isActive bool,
	createdAt, updatedAt time.Time,
) *User {
	if skills == nil {
		skills = []string{}
	}
	return &User{
		id:            id,
		externalID:    externalID,
		email:         email,
		displayName:   displayName,
		role:          role,
		skills:        skills,
		rating:        rating,
		completedGigs: completedGigs,
		isActive:      isActive,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Rename changes the display name.
func (u *User) Rename(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return errs.ErrInvalidInput
	}
	u.displayName = displayName
	u.touch()
	return nil
}

// UpdateSkills replaces the skill set. Duplicates are dropped, order is kept.
func (u *User) UpdateSkills(skills []string) error {
	cleaned := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			return errs.ErrInvalidInput
		}
		if !slices.Contains(cleaned, s) {
			cleaned = append(cleaned, s)
		}
	}
	u.skills = cleaned
	u.touch()
	return nil
}

// RecordGigCompletion increments the completed-gig counter. Called by the gig
// lifecycle when a gig the user was assigned to reaches completed.
func (u *User) RecordGigCompletion() {
	u.completedGigs++
	u.touch()
}

// SetRating sets the aggregate rating.
func (u *User) SetRating(rating float64) error {
	if rating < MinRating || rating > MaxRating {
		return errs.ErrInvalidInput
	}
	u.rating = rating
	u.touch()
	return nil
}

// Deactivate disables the profile. Deactivated users cannot authenticate.
func (u *User) Deactivate() {
	u.isActive = false
	u.touch()
}

func (u *User) touch() {
	u.updatedAt = time.Now()
}

// ID returns the profile ID.
func (u *User) ID() uuid.UUID { return u.id }

// ExternalID returns the identity-provider subject.
func (u *User) ExternalID() string { return u.externalID }

// Email returns the email address.
func (u *User) Email() string { return u.email }

// DisplayName returns the display name.
func (u *User) DisplayName() string { return u.displayName }

// Role returns the marketplace role.
func (u *User) Role() Role { return u.role }

// Skills returns the declared skill set.
func (u *User) Skills() []string { return u.skills }

// Rating returns the aggregate rating.
func (u *User) Rating() float64 { return u.rating }

// CompletedGigs returns the number of completed gigs.
func (u *User) CompletedGigs() int { return u.completedGigs }

// IsActive reports whether the profile is active.
func (u *User) IsActive() bool { return u.isActive }

// IsClient reports whether the user may post gigs.
func (u *User) IsClient() bool { return u.role == RoleClient || u.role == RoleAdmin }

// IsFreelancer reports whether the user may apply to gigs.
func (u *User) IsFreelancer() bool { return u.role == RoleFreelancer }

// CreatedAt returns the creation time.
func (u *User) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt returns the last modification time.
func (u *User) UpdatedAt() time.Time { return u.updatedAt }
