package mocks

import (
	"context"
	"sync"

	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// SummaryCache is an in-memory dashboard.SummaryCache that tracks
// invalidations.
type SummaryCache struct {
	mu          sync.Mutex
	client      map[uuid.UUID][]byte
	freelancer  map[uuid.UUID][]byte
	Invalidated []uuid.UUID
}

// NewSummaryCache creates an empty cache.
func NewSummaryCache() *SummaryCache {
	return &SummaryCache{
		client:     make(map[uuid.UUID][]byte),
		freelancer: make(map[uuid.UUID][]byte),
	}
}

// GetClient returns the cached client summary payload, nil on miss.
func (c *SummaryCache) GetClient(_ context.Context, userID uuid.UUID) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client[userID], nil
}

// SetClient stores a client summary payload.
func (c *SummaryCache) SetClient(_ context.Context, userID uuid.UUID, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.client[userID] = payload
	return nil
}

// GetFreelancer returns the cached freelancer summary payload, nil on miss.
func (c *SummaryCache) GetFreelancer(_ context.Context, userID uuid.UUID) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.freelancer[userID], nil
}

// SetFreelancer stores a freelancer summary payload.
func (c *SummaryCache) SetFreelancer(_ context.Context, userID uuid.UUID, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.freelancer[userID] = payload
	return nil
}

// Invalidate drops both summaries for a user.
func (c *SummaryCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.client, userID)
	delete(c.freelancer, userID)
	c.Invalidated = append(c.Invalidated, userID)
	return nil
}
