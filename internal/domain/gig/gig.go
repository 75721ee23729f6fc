// Package gig contains the gig aggregate and its lifecycle state machine.
//
// A gig moves strictly forward through
// open -> assigned -> in-progress -> in-review -> completed.
// The only way out of open is assignment through an accepted application;
// later statuses are advanced one step at a time by the poster.
package gig

import (
	"slices"
	"strings"
	"time"

	"github.com/lllypuk/gigwork/internal/domain/errs"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// Status is the lifecycle state of a gig.
type Status string

// Lifecycle states, in order.
const (
	StatusOpen       Status = "open"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in-progress"
	StatusInReview   Status = "in-review"
	StatusCompleted  Status = "completed"
)

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusAssigned, StatusInProgress, StatusInReview, StatusCompleted:
		return true
	default:
		return false
	}
}

// Priority indicates how urgent a gig is.
type Priority string

// Priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p Priority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Progress bounds.
const (
	MinProgress = 0
	MaxProgress = 100
)

// Gig is a client-posted unit of work.
type Gig struct {
	id          uuid.UUID
	title       string
	description string
	status      Status
	priority    Priority
	posterID    uuid.UUID
	assignedTo  *uuid.UUID
	budget      float64
	deadline    time.Time
	skills      []string
	progress    int
	milestones  []Milestone
	createdAt   time.Time
	updatedAt   time.Time
}

// NewGig creates an open gig. All creation-time invariants are checked here,
// before anything is written: non-empty title and description, positive
// budget, a deadline in the future, and at least one required skill.
func NewGig(
	posterID uuid.UUID,
	title, description string,
	priority Priority,
	budget float64,
	deadline time.Time,
	skills []string,
) (*Gig, error) {
	if posterID.IsZero() {
		return nil, errs.ErrInvalidInput
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
		return nil, errs.ErrInvalidInput
	}
	if !ValidPriority(priority) {
		return nil, errs.ErrInvalidInput
	}
	if budget <= 0 {
		return nil, errs.ErrInvalidInput
	}
	if !deadline.After(time.Now()) {
		return nil, errs.ErrInvalidInput
	}
	if len(skills) == 0 {
		return nil, errs.ErrInvalidInput
	}
	cleaned := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, errs.ErrInvalidInput
		}
		if !slices.Contains(cleaned, s) {
			cleaned = append(cleaned, s)
		}
	}

	now := time.Now().UTC()
	return &Gig{
		id:          uuid.NewUUID(),
		title:       strings.TrimSpace(title),
		description: strings.TrimSpace(description),
		status:      StatusOpen,
		priority:    priority,
		posterID:    posterID,
		budget:      budget,
		deadline:    deadline,
		skills:      cleaned,
		milestones:  []Milestone{},
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a gig from storage without running business validation.
func Reconstruct(
	id uuid.UUID,
	title, description string,
	status Status,
	priority Priority,
	posterID uuid.UUID,
	assignedTo *uuid.UUID,
	budget float64,
	deadline time.Time,
	skills []string,
	progress int,
	milestones []Milestone,
	createdAt, updatedAt time.Time,
) *Gig {
	if skills == nil {
		skills = []string{}
	}
	if milestones == nil {
		milestones = []Milestone{}
	}
	return &Gig{
		id:          id,
		title:       title,
		description: description,
		status:      status,
		priority:    priority,
		posterID:    posterID,
		assignedTo:  assignedTo,
		budget:      budget,
		deadline:    deadline,
		skills:      skills,
		progress:    progress,
		milestones:  milestones,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// Assign moves the gig from open to assigned and records the freelancer.
// Only an open gig can be assigned; anything else is a transition error.
func (g *Gig) Assign(freelancerID uuid.UUID) error {
	if freelancerID.IsZero() {
		return errs.ErrInvalidInput
	}
	if g.status != StatusOpen {
		return errs.ErrInvalidTransition
	}
	g.status = StatusAssigned
	g.assignedTo = &freelancerID
	g.touch()
	return nil
}

// ChangeStatus advances the gig one step along the lifecycle. open->assigned
// is reserved for Assign, and completed requires an assignee, so the only
// moves allowed here are assigned->in-progress, in-progress->in-review and
// in-review->completed.
func (g *Gig) ChangeStatus(newStatus Status) error {
	if !ValidStatus(newStatus) {
		return errs.ErrInvalidInput
	}
	if g.status == newStatus {
		return nil
	}
	if !g.isValidStatusTransition(newStatus) {
		return errs.ErrInvalidTransition
	}
	if newStatus == StatusCompleted {
		if g.assignedTo == nil {
			return errs.ErrInvalidState
		}
		g.progress = MaxProgress
	}
	g.status = newStatus
	g.touch()
	return nil
}

// isValidStatusTransition checks the forward-only transition table.
func (g *Gig) isValidStatusTransition(newStatus Status) bool {
	transitions := map[Status][]Status{
		StatusOpen:       {}, // leaves open only via Assign
		StatusAssigned:   {StatusInProgress},
		StatusInProgress: {StatusInReview},
		StatusInReview:   {StatusCompleted},
		StatusCompleted:  {},
	}
	return slices.Contains(transitions[g.status], newStatus)
}

// UpdateProgress sets the progress percentage. Progress tracking only makes
// sense while the gig is being worked on.
func (g *Gig) UpdateProgress(progress int) error {
	if progress < MinProgress || progress > MaxProgress {
		return errs.ErrInvalidInput
	}
	switch g.status {
	case StatusAssigned, StatusInProgress, StatusInReview:
		g.progress = progress
		g.touch()
		return nil
	case StatusOpen, StatusCompleted:
		return errs.ErrInvalidState
	default:
		return errs.ErrInvalidState
	}
}

// AddMilestone appends a milestone. Milestones are never removed.
func (g *Gig) AddMilestone(title, description string, dueDate time.Time) (Milestone, error) {
	if g.status == StatusCompleted {
		return Milestone{}, errs.ErrInvalidState
	}
	m, err := NewMilestone(title, description, dueDate)
	if err != nil {
		return Milestone{}, err
	}
	g.milestones = append(g.milestones, m)
	g.touch()
	return m, nil
}

// CompleteMilestone marks the milestone with the given ID as completed.
func (g *Gig) CompleteMilestone(milestoneID uuid.UUID) error {
	for i := range g.milestones {
		if g.milestones[i].ID == milestoneID {
			if g.milestones[i].Completed {
				return errs.ErrInvalidState
			}
			g.milestones[i].Completed = true
			g.touch()
			return nil
		}
	}
	return errs.ErrNotFound
}

// IsOpen reports whether the gig still accepts applications.
func (g *Gig) IsOpen() bool {
	return g.status == StatusOpen
}

// IsPostedBy reports whether userID owns the gig.
func (g *Gig) IsPostedBy(userID uuid.UUID) bool {
	return g.posterID == userID
}

func (g *Gig) touch() {
	g.updatedAt = time.Now().UTC()
}

// ID returns the gig ID.
func (g *Gig) ID() uuid.UUID { return g.id }

// Title returns the title.
func (g *Gig) Title() string { return g.title }

// Description returns the description.
func (g *Gig) Description() string { return g.description }

// Status returns the lifecycle state.
func (g *Gig) Status() Status { return g.status }

// Priority returns the priority.
func (g *Gig) Priority() Priority { return g.priority }

// PosterID returns the owning client's user ID.
func (g *Gig) PosterID() uuid.UUID { return g.posterID }

// AssignedTo returns the assigned freelancer's user ID, if any.
func (g *Gig) AssignedTo() *uuid.UUID { return g.assignedTo }

// Budget returns the budget.
func (g *Gig) Budget() float64 { return g.budget }

// Deadline returns the deadline.
func (g *Gig) Deadline() time.Time { return g.deadline }

// Skills returns the required skill set.
func (g *Gig) Skills() []string { return g.skills }

// Progress returns the progress percentage.
func (g *Gig) Progress() int { return g.progress }

// Milestones returns the ordered milestone list.
func (g *Gig) Milestones() []Milestone { return g.milestones }

// CreatedAt returns the creation time.
func (g *Gig) CreatedAt() time.Time { return g.createdAt }

// UpdatedAt returns the last modification time.
func (g *Gig) UpdatedAt() time.Time { return g.updatedAt }
