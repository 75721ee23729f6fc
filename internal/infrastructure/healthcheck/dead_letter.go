// Package healthcheck contains checks for infrastructure components that
// can degrade silently.
package healthcheck

import (
	"context"
	"fmt"
	"time"

	"github.com/lllypuk/gigwork/internal/infrastructure/eventbus"
)

// Status is the result of a single health check.
type Status struct {
	Healthy   bool
	Message   string
	Details   map[string]any
	CheckedAt time.Time
}

// DeadLetterChecker reports on the dead letter queue. Parked events mean
// a subscriber kept failing, so a non-empty queue marks the component
// degraded until the entries are replayed or purged.
type DeadLetterChecker struct {
	deadLetter *eventbus.DeadLetterHandler
}

// NewDeadLetterChecker creates a dead letter queue health checker.
func NewDeadLetterChecker(deadLetter *eventbus.DeadLetterHandler) *DeadLetterChecker {
	return &DeadLetterChecker{
		deadLetter: deadLetter,
	}
}

// Name returns the name of this health checker.
func (c *DeadLetterChecker) Name() string {
	return "dead_letter_queue"
}

// Check performs the health check.
func (c *DeadLetterChecker) Check(ctx context.Context) Status {
	count, err := c.deadLetter.Len(ctx)
	if err != nil {
		return Status{
			Healthy:   false,
			Message:   fmt.Sprintf("failed to get dead letter queue length: %v", err),
			CheckedAt: time.Now(),
		}
	}

	return Status{
		Healthy: count == 0,
		Message: fmt.Sprintf("dead letter queue: %d events", count),
		Details: map[string]any{
			"dead_letters": count,
		},
		CheckedAt: time.Now(),
	}
}
