package application

import "errors"

// Application workflow errors.
var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrGigNotFound         = errors.New("gig not found")
	ErrGigNotOpen          = errors.New("gig is not open for applications")
	ErrNotGigPoster        = errors.New("actor is not the gig poster")
	ErrNotAFreelancer      = errors.New("only freelancers can apply")
	ErrAlreadyResolved     = errors.New("application is already resolved")
	// ErrGigAlreadyAssigned is returned when another accept won the race:
	// the gig left the open state between the read and the write.
	ErrGigAlreadyAssigned = errors.New("gig was assigned to another applicant")
)
