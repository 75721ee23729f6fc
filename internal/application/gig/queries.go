package gig

import (
	"github.com/lllypuk/gigwork/internal/domain/gig"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
)

// ListGigsQuery filters the gig board. Zero fields mean "no constraint".
type ListGigsQuery struct {
	PosterID   uuid.UUID
	AssignedTo uuid.UUID
	Status     gig.Status
	Offset     int
	Limit      int
}
