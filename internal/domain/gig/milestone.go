package gig

import (
	"strings"
	"time"

	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Milestone is a checkpoint within a gig. Owned by exactly one gig,
// appended and completed but never removed.
type Milestone struct {
	ID          uuid.UUID `bson:"milestone_id" json:"id"`
	Title       string    `bson:"title"        json:"title"`
	Description string    `bson:"description"  json:"description"`
	Completed   bool      `bson:"completed"    json:"completed"`
	DueDate     time.Time `bson:"due_date"     json:"due_date"`
}

// NewMilestone creates an incomplete milestone.
func NewMilestone(title, description string, dueDate time.Time) (Milestone, error) {
	if strings.TrimSpace(title) == "" {
		return Milestone{}, errs.ErrInvalidInput
	}
	if dueDate.IsZero() {
		return Milestone{}, errs.ErrInvalidInput
	}
	return Milestone{
		ID:          uuid.NewUUID(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		DueDate:     dueDate,
	}, nil
}
