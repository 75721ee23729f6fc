package summary

import (
	"context"
	"fmt"

	"github.com/lllypuk/gigwork/internal/application/dashboard"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// ClientWarmer rebuilds a poster's summary ahead of the next dashboard
// read. Invalidation runs first, so the use case recomputes and stores.
type ClientWarmer struct {
	dashboards *dashboard.ClientDashboardUseCase
}

// NewClientWarmer creates a warmer around the client dashboard use case.
func NewClientWarmer(dashboards *dashboard.ClientDashboardUseCase) *ClientWarmer {
	return &ClientWarmer{dashboards: dashboards}
}

// Warm recomputes and caches the client summary for userID.
func (w *ClientWarmer) Warm(ctx context.Context, userID uuid.UUID) error {
	if _, err := w.dashboards.Execute(ctx, userID); err != nil {
		return fmt.Errorf("failed to warm client summary: %w", err)
	}
	return nil
}

// FreelancerWarmer rebuilds a freelancer's summary ahead of the next
// dashboard read.
type FreelancerWarmer struct {
	dashboards *dashboard.FreelancerDashboardUseCase
}

// NewFreelancerWarmer creates a warmer around the freelancer dashboard
// use case.
func NewFreelancerWarmer(dashboards *dashboard.FreelancerDashboardUseCase) *FreelancerWarmer {
	return &FreelancerWarmer{dashboards: dashboards}
}

// Warm recomputes and caches the freelancer summary for userID.
func (w *FreelancerWarmer) Warm(ctx context.Context, userID uuid.UUID) error {
	if _, err := w.dashboards.Execute(ctx, userID); err != nil {
		return fmt.Errorf("failed to warm freelancer summary: %w", err)
	}
	return nil
}
