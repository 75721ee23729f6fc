package gig

import (
	"github.com/lllypuk/gigwork/internal/application/appcore"
	"github.com/lllypuk/gigwork/internal/domain/gig"
)

// Result wraps a single gig.
type Result struct {
	appcore.Result[*gig.Gig]
}

// ListResult is a page of gigs.
type ListResult struct {
	Gigs       []*gig.Gig
	TotalCount int
	Offset     int
	Limit      int
}
