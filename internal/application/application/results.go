package application

import (
	"github.com/lllypuk/gigwork/internal/application/appcore"
	appdomain "github.com/lllypuk/gigwork/internal/domain/application"
)

// Result wraps a single application.
type Result struct {
	appcore.Result[*appdomain.Application]
}

// ListResult is a page of applications.
type ListResult struct {
	Applications []*appdomain.Application
	Offset       int
	Limit        int
}

// AcceptResult reports the outcome of the accept workflow.
type AcceptResult struct {
	Accepted *appdomain.Application
	// Rejected holds the applications that were pending on the same gig
	// and lost to the accepted one.
	Rejected []*appdomain.Application
}
