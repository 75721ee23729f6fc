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

// ClientDashboardUseCase builds the poster-side dashboard: gig counts by
// status, total spent on completed gigs, and a monthly spending histogram.
// The computed summary is cached; cache failures degrade to a recompute.
type ClientDashboardUseCase struct {
	gigs   gigdomain.Repository
	cache  SummaryCache
	now    func() time.Time
	logger *slog.Logger
}

// NewClientDashboardUseCase creates the use case.
func NewClientDashboardUseCase(gigs gigdomain.Repository, cache SummaryCache, logger *slog.Logger) *ClientDashboardUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientDashboardUseCase{gigs: gigs, cache: cache, now: time.Now, logger: logger}
}

// Execute returns the client summary for userID.
func (uc *ClientDashboardUseCase) Execute(ctx context.Context, userID uuid.UUID) (ClientSummary, error) {
	if err := appcore.ValidateUUID("userID", userID); err != nil {
		return ClientSummary{}, fmt.Errorf("validation failed: %w", err)
	}

	if cached, ok := uc.fromCache(ctx, userID); ok {
		return cached, nil
	}

	gigs, err := uc.gigs.List(ctx, gigdomain.Filter{PosterID: userID})
	if err != nil {
		return ClientSummary{}, fmt.Errorf("failed to list gigs: %w", err)
	}

	summary := uc.build(gigs)
	uc.store(ctx, userID, summary)
	return summary, nil
}

func (uc *ClientDashboardUseCase) build(gigs []*gigdomain.Gig) ClientSummary {
	summary := ClientSummary{MonthlySpending: emptyBuckets(uc.now())}
	for _, g := range gigs {
		switch g.Status() {
		case gigdomain.StatusOpen:
			summary.OpenCount++
		case gigdomain.StatusAssigned:
			summary.AssignedCount++
		case gigdomain.StatusInProgress:
			summary.InProgressCount++
		case gigdomain.StatusInReview:
			summary.InReviewCount++
		case gigdomain.StatusCompleted:
			summary.CompletedCount++
			summary.TotalSpent += g.Budget()
			// a completed gig's last update is its completion time
			addToBucket(summary.MonthlySpending, g.UpdatedAt(), g.Budget())
		}
	}
	return summary
}

func (uc *ClientDashboardUseCase) fromCache(ctx context.Context, userID uuid.UUID) (ClientSummary, bool) {
	if uc.cache == nil {
		return ClientSummary{}, false
	}
	payload, err := uc.cache.GetClient(ctx, userID)
	if err != nil {
		uc.logger.WarnContext(ctx, "failed to read cached summary",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return ClientSummary{}, false
	}
	if len(payload) == 0 {
		return ClientSummary{}, false
	}
	var summary ClientSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		uc.logger.WarnContext(ctx, "failed to decode cached summary",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		return ClientSummary{}, false
	}
	return summary, true
}

func (uc *ClientDashboardUseCase) store(ctx context.Context, userID uuid.UUID, summary ClientSummary) {
	if uc.cache == nil {
		return
	}
	payload, err := json.Marshal(summary)
	if err == nil {
		err = uc.cache.SetClient(ctx, userID, payload)
	}
	if err != nil {
		uc.logger.WarnContext(ctx, "failed to cache summary",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
	}
}
