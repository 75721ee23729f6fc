package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	gigdomain "github.com/lllypuk/gigwork/internal/domain/gig"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// FreelancerDashboardUseCase builds the freelancer-side dashboard: workload
// counts, total earnings over completed gigs, and a monthly earnings
// histogram.
type FreelancerDashboardUseCase struct {
	gigs   gigdomain.Repository
	cache  SummaryCache
	now    func() time.Time
	logger *slog.Logger
}

// NewFreelancerDashboardUseCase creates the use case.
func NewFreelancerDashboardUseCase(gigs gigdomain.Repository, cache SummaryCache, logger *slog.Logger) *FreelancerDashboardUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &FreelancerDashboardUseCase{gigs: gigs, cache: cache, now: time.Now, logger: logger}
}

// Execute returns the freelancer summary for userID.
func (uc *FreelancerDashboardUseCase) Execute(ctx context.Context, userID uuid.UUID) (FreelancerSummary, error) {
	if err := appcore.ValidateUUID("userID", userID); err != nil {
		return FreelancerSummary{}, fmt.Errorf("validation failed: %w", err)
	}

	if cached, ok := uc.fromCache(ctx, userID); ok {
		return cached, nil
	}

	gigs, err := uc.gigs.List(ctx, gigdomain.Filter{AssignedTo: userID})
	if err != nil {
		return FreelancerSummary{}, fmt.Errorf("failed to list gigs: %w", err)
	}

	summary := uc.build(gigs)
	uc.store(ctx, userID, summary)
	return summary, nil
}

func (uc *FreelancerDashboardUseCase) build(gigs []*gigdomain.Gig) FreelancerSummary {
	summary := FreelancerSummary{MonthlyEarnings: emptyBuckets(uc.now())}
	for _, g := range gigs {
		switch g.Status() {
		case gigdomain.StatusAssigned:
			summary.AssignedCount++
		case gigdomain.StatusInProgress, gigdomain.StatusInReview:
			summary.ActiveCount++
		case gigdomain.StatusCompleted:
			summary.CompletedCount++
			summary.TotalEarnings += g.Budget()
			addToBucket(summary.MonthlyEarnings, g.UpdatedAt(), g.Budget())
		case gigdomain.StatusOpen:
			// open gigs are never assigned; nothing to count
		}
	}
	return summary
}

func (uc *FreelancerDashboardUseCase) fromCache(ctx context.Context, userID uuid.UUID) (FreelancerSummary, bool) {
	if uc.cache == nil {
		return FreelancerSummary{}, false
	}
	payload, err := uc.cache.GetFreelancer(ctx, userID)
	if err != nil {
		uc.logger.WarnContext(ctx, "failed to read cached summary",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return FreelancerSummary{}, false
	}
	if len(payload) == 0 {
		return FreelancerSummary{}, false
	}
	var summary FreelancerSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		uc.logger.WarnContext(ctx, "failed to decode cached summary",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return FreelancerSummary{}, false
	}
	return summary, true
}

func (uc *FreelancerDashboardUseCase) store(ctx context.Context, userID uuid.UUID, summary FreelancerSummary) {
	if uc.cache == nil {
		return
	}
	payload, err := json.Marshal(summary)
	if err == nil {
		err = uc.cache.SetFreelancer(ctx, userID, payload)
	}
	if err != nil {
		uc.logger.WarnContext(ctx, "failed to cache summary",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
	}
}
