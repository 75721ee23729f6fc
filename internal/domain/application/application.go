// Package application contains the gig application aggregate: a freelancer's
// bid to perform a gig.
//
// An application is pending until the poster resolves it. Accept and Reject
// are guarded so a resolved application can never be resolved again; the
// accept workflow relies on that guard for idempotence.
package application

import (
	"strings"
	"time"

	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Status is the resolution state of an application.
type Status string

// Resolution states.
const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// ValidStatus reports whether s is a known status.
func ValidStatus(s Status) bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// Application is a freelancer's bid to perform a gig.
type Application struct {
	id          uuid.UUID
	gigID       uuid.UUID
	applicantID uuid.UUID
	coverLetter string
	status      Status
	createdAt   time.Time
	updatedAt   *time.Time
}

// NewApplication creates a pending application. The cover letter must be
// non-empty; this is checked before any write happens.
func NewApplication(gigID, applicantID uuid.UUID, coverLetter string) (*Application, error) {
	if gigID.IsZero() || applicantID.IsZero() {
		return nil, errs.ErrInvalidInput
	}
	coverLetter = strings.TrimSpace(coverLetter)
	if coverLetter == "" {
		return nil, errs.ErrInvalidInput
	}

	return &Application{
		id:          uuid.NewUUID(),
		gigID:       gigID,
		applicantID: applicantID,
		coverLetter: coverLetter,
		status:      StatusPending,
		createdAt:   time.Now(),
	}, nil
}

// Reconstruct rebuilds an application from storage without validation.
func Reconstruct(
	id, gigID, applicantID uuid.UUID,
	coverLetter string,
	status Status,
	createdAt time.Time,
	updatedAt *time.Time,
) *Application {
	return &Application{
		id:          id,
		gigID:       gigID,
		applicantID: applicantID,
		coverLetter: coverLetter,
		status:      status,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Accept resolves a pending application in the applicant's favor.
// Accepting an already resolved application is an invalid state, not a no-op,
// so callers cannot re-trigger acceptance side effects.
func (a *Application) Accept() error {
	if a.status != StatusPending {
		return errs.ErrInvalidState
	}
	a.status = StatusAccepted
	a.touch()
	return nil
}

// Reject resolves a pending application against the applicant.
func (a *Application) Reject() error {
	if a.status != StatusPending {
		return errs.ErrInvalidState
	}
	a.status = StatusRejected
	a.touch()
	return nil
}

// IsPending reports whether the application is still unresolved.
func (a *Application) IsPending() bool {
	return a.status == StatusPending
}

func (a *Application) touch() {
	now := time.Now()
	a.updatedAt = &now
}

// ID returns the application ID.
func (a *Application) ID() uuid.UUID { return a.id }

// GigID returns the gig the application targets.
func (a *Application) GigID() uuid.UUID { return a.gigID }

// ApplicantID returns the applying freelancer's user ID.
func (a *Application) ApplicantID() uuid.UUID { return a.applicantID }

// CoverLetter returns the cover letter text.
func (a *Application) CoverLetter() string { return a.coverLetter }

// Status returns the resolution state.
func (a *Application) Status() Status { return a.status }

// CreatedAt returns the submission time.
func (a *Application) CreatedAt() time.Time { return a.createdAt }

// UpdatedAt returns the resolution time, if resolved.
func (a *Application) UpdatedAt() *time.Time { return a.updatedAt }
