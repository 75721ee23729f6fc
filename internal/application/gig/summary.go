package gig

import (
	"context"

	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// SummaryInvalidator drops a user's materialized dashboard summary after a
// write that changes it. Declared on the consumer side.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, userID uuid.UUID) error
}
