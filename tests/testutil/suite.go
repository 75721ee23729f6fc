package testutil

import (
	"testing"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	appusecase "github.com/lllypuk/gigwork/internal/application/application"
	gigapp "github.com/lllypuk/gigwork/internal/application/gig"
	"github.com/lllypuk/gigwork/tests/mocks"
)

// TestSuite bundles the mocks and use cases for the gig workflow, so a
// test can drive post, apply, accept and status changes without wiring
// each use case by hand.
type TestSuite struct {
	t *testing.T

	// Mocks
	GigRepo          *mocks.GigRepository
	UserRepo         *mocks.UserRepository
	ApplicationRepo  *mocks.ApplicationRepository
	NotificationRepo *mocks.NotificationRepository
	EventBus         *mocks.EventBus
	SummaryCache     *mocks.SummaryCache

	// Use cases
	CreateGig         *gigapp.CreateGigUseCase
	ChangeStatus      *gigapp.ChangeStatusUseCase
	SubmitApplication *appusecase.SubmitApplicationUseCase
	AcceptApplication *appusecase.AcceptApplicationUseCase
}

// NewTestSuite creates a test suite with all components initialized.
func NewTestSuite(t *testing.T) *TestSuite {
	t.Helper()

	suite := &TestSuite{
		t:                t,
		GigRepo:          mocks.NewGigRepository(),
		UserRepo:         mocks.NewUserRepository(),
		ApplicationRepo:  mocks.NewApplicationRepository(),
		NotificationRepo: mocks.NewNotificationRepository(),
		EventBus:         mocks.NewEventBus(),
		SummaryCache:     mocks.NewSummaryCache(),
	}

	tx := appcore.NopTxRunner{}

	suite.CreateGig = gigapp.NewCreateGigUseCase(
		suite.GigRepo, suite.UserRepo, suite.EventBus, nil,
	)
	suite.ChangeStatus = gigapp.NewChangeStatusUseCase(
		suite.GigRepo, suite.UserRepo, suite.NotificationRepo,
		tx, suite.EventBus, suite.SummaryCache, nil,
	)
	suite.SubmitApplication = appusecase.NewSubmitApplicationUseCase(
		suite.ApplicationRepo, suite.GigRepo, suite.UserRepo, suite.NotificationRepo,
		tx, suite.EventBus, nil,
	)
	suite.AcceptApplication = appusecase.NewAcceptApplicationUseCase(
		suite.ApplicationRepo, suite.GigRepo, suite.NotificationRepo,
		tx, suite.EventBus, suite.SummaryCache, nil,
	)

	return suite
}
