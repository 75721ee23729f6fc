package gig

import "errors"

// Gig application errors.
var (
	ErrGigNotFound    = errors.New("gig not found")
	ErrNotGigPoster   = errors.New("actor is not the gig poster")
	ErrNotGigAssignee = errors.New("actor is not the assigned freelancer")
	ErrNotAClient     = errors.New("only clients can post gigs")
)
