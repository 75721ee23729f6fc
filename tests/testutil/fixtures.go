package testutil

import (
	"time"

	appusecase "github.com/lllypuk/gigwork/internal/application/application"
	gigapp "github.com/lllypuk/gigwork/internal/application/gig"
	"github.com/lllypuk/gigwork/internal/domain/gig"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

const weekDuration = 7 * 24 * time.Hour

// CreateGigCommandFixture returns a valid gig creation command.
func CreateGigCommandFixture() gigapp.CreateGigCommand {
	return gigapp.CreateGigCommand{
		PosterID:    uuid.NewUUID(),
		Title:       "Test Gig",
		Description: "A gig used in tests",
		Priority:    gig.PriorityMedium,
		Budget:      500,
		Deadline:    time.Now().Add(weekDuration),
		Skills:      []string{"go"},
	}
}

// WithPosterID sets the poster.
func WithPosterID(posterID uuid.UUID) func(*gigapp.CreateGigCommand) {
	return func(cmd *gigapp.CreateGigCommand) {
		cmd.PosterID = posterID
	}
}

// WithTitle sets the title.
func WithTitle(title string) func(*gigapp.CreateGigCommand) {
	return func(cmd *gigapp.CreateGigCommand) {
		cmd.Title = title
	}
}

// WithPriority sets the priority.
func WithPriority(priority gig.Priority) func(*gigapp.CreateGigCommand) {
	return func(cmd *gigapp.CreateGigCommand) {
		cmd.Priority = priority
	}
}

// WithBudget sets the budget.
func WithBudget(budget float64) func(*gigapp.CreateGigCommand) {
	return func(cmd *gigapp.CreateGigCommand) {
		cmd.Budget = budget
	}
}

// WithDeadline sets the deadline.
func WithDeadline(deadline time.Time) func(*gigapp.CreateGigCommand) {
	return func(cmd *gigapp.CreateGigCommand) {
		cmd.Deadline = deadline
	}
}

// WithSkills sets the required skills.
func WithSkills(skills ...string) func(*gigapp.CreateGigCommand) {
	return func(cmd *gigapp.CreateGigCommand) {
		cmd.Skills = skills
	}
}

// BuildCreateGigCommand creates a command with modifiers applied.
func BuildCreateGigCommand(modifiers ...func(*gigapp.CreateGigCommand)) gigapp.CreateGigCommand {
	cmd := CreateGigCommandFixture()
	for _, modifier := range modifiers {
		modifier(&cmd)
	}
	return cmd
}

// ChangeStatusCommandFixture returns a valid status change command.
func ChangeStatusCommandFixture(gigID uuid.UUID) gigapp.ChangeStatusCommand {
	return gigapp.ChangeStatusCommand{
		GigID:     gigID,
		ActorID:   uuid.NewUUID(),
		NewStatus: gig.StatusInProgress,
	}
}

// WithNewStatus sets the target status.
func WithNewStatus(status gig.Status) func(*gigapp.ChangeStatusCommand) {
	return func(cmd *gigapp.ChangeStatusCommand) {
		cmd.NewStatus = status
	}
}

// WithActorID sets who performs the transition.
func WithActorID(actorID uuid.UUID) func(*gigapp.ChangeStatusCommand) {
	return func(cmd *gigapp.ChangeStatusCommand) {
		cmd.ActorID = actorID
	}
}

// BuildChangeStatusCommand creates a command with modifiers applied.
func BuildChangeStatusCommand(
	gigID uuid.UUID,
	modifiers ...func(*gigapp.ChangeStatusCommand),
) gigapp.ChangeStatusCommand {
	cmd := ChangeStatusCommandFixture(gigID)
	for _, modifier := range modifiers {
		modifier(&cmd)
	}
	return cmd
}

// SubmitApplicationCommandFixture returns a valid application command.
func SubmitApplicationCommandFixture(gigID uuid.UUID) appusecase.SubmitApplicationCommand {
	return appusecase.SubmitApplicationCommand{
		GigID:       gigID,
		ApplicantID: uuid.NewUUID(),
		CoverLetter: "I have shipped similar work before.",
	}
}

// WithApplicantID sets the applicant.
func WithApplicantID(applicantID uuid.UUID) func(*appusecase.SubmitApplicationCommand) {
	return func(cmd *appusecase.SubmitApplicationCommand) {
		cmd.ApplicantID = applicantID
	}
}

// WithCoverLetter sets the cover letter.
func WithCoverLetter(coverLetter string) func(*appusecase.SubmitApplicationCommand) {
	return func(cmd *appusecase.SubmitApplicationCommand) {
		cmd.CoverLetter = coverLetter
	}
}

// BuildSubmitApplicationCommand creates a command with modifiers applied.
func BuildSubmitApplicationCommand(
	gigID uuid.UUID,
	modifiers ...func(*appusecase.SubmitApplicationCommand),
) appusecase.SubmitApplicationCommand {
	cmd := SubmitApplicationCommandFixture(gigID)
	for _, modifier := range modifiers {
		modifier(&cmd)
	}
	return cmd
}

// BuildAcceptApplicationCommand creates an accept command on behalf of
// the actor, normally the gig poster.
func BuildAcceptApplicationCommand(applicationID, actorID uuid.UUID) appusecase.AcceptApplicationCommand {
	return appusecase.AcceptApplicationCommand{
		ApplicationID: applicationID,
		ActorID:       actorID,
	}
}
