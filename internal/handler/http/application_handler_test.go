package httphandler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	appusecase "github.com/lllypuk/gigwork/internal/application/application"
	appdomain "github.com/lllypuk/gigwork/internal/domain/application"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	httphandler "github.com/lllypuk/gigwork/internal/handler/http"
)

type stubApplicationService struct {
	submitFn          func(ctx context.Context, cmd appusecase.SubmitApplicationCommand) (appusecase.Result, error)
	acceptFn          func(ctx context.Context, cmd appusecase.AcceptApplicationCommand) (appusecase.AcceptResult, error)
	rejectFn          func(ctx context.Context, cmd appusecase.RejectApplicationCommand) (appusecase.Result, error)
	listByGigFn       func(ctx context.Context, query appusecase.ListByGigQuery) (appusecase.ListResult, error)
	listByApplicantFn func(ctx context.Context, query appusecase.ListByApplicantQuery) (appusecase.ListResult, error)
}

func (s *stubApplicationService) Submit(ctx context.Context, cmd appusecase.SubmitApplicationCommand) (appusecase.Result, error) {
	return s.submitFn(ctx, cmd)
}

func (s *stubApplicationService) Accept(ctx context.Context, cmd appusecase.AcceptApplicationCommand) (appusecase.AcceptResult, error) {
	return s.acceptFn(ctx, cmd)
}

func (s *stubApplicationService) Reject(ctx context.Context, cmd appusecase.RejectApplicationCommand) (appusecase.Result, error) {
	return s.rejectFn(ctx, cmd)
}

func (s *stubApplicationService) ListByGig(ctx context.Context, query appusecase.ListByGigQuery) (appusecase.ListResult, error) {
	return s.listByGigFn(ctx, query)
}

func (s *stubApplicationService) ListByApplicant(ctx context.Context, query appusecase.ListByApplicantQuery) (appusecase.ListResult, error) {
	return s.listByApplicantFn(ctx, query)
}

func newTestApplication(t *testing.T, gigID, applicantID uuid.UUID) *appdomain.Application {
	t.Helper()
	a, err := appdomain.NewApplication(gigID, applicantID, "I can do this")
	require.NoError(t, err)
	return a
}

func applicationResult(a *appdomain.Application) appusecase.Result {
	return appusecase.Result{Result: appcore.Result[*appdomain.Application]{Value: a}}
}

func TestApplicationHandler_Submit(t *testing.T) {
	freelancer := freelancerIdentity()
	gigID := uuid.NewUUID()

	t.Run("freelancer bids on a gig", func(t *testing.T) {
		var captured appusecase.SubmitApplicationCommand
		service := &stubApplicationService{
			submitFn: func(_ context.Context, cmd appusecase.SubmitApplicationCommand) (appusecase.Result, error) {
				captured = cmd
				return applicationResult(newTestApplication(t, cmd.GigID, cmd.ApplicantID)), nil
			},
		}
		e := newTestRouter(freelancer, httphandler.NewApplicationHandler(service))

		rec := doJSON(e, http.MethodPost, "/api/v1/applications",
			map[string]string{"gig_id": gigID.String(), "cover_letter": "I can do this"})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, gigID, captured.GigID)
		assert.Equal(t, freelancer.UserID, captured.ApplicantID)

		resp := decodeData[httphandler.ApplicationResponse](t, rec)
		assert.Equal(t, "pending", resp.Status)
	})

	t.Run("client cannot bid", func(t *testing.T) {
		e := newTestRouter(clientIdentity(), httphandler.NewApplicationHandler(&stubApplicationService{}))

		rec := doJSON(e, http.MethodPost, "/api/v1/applications",
			map[string]string{"gig_id": gigID.String()})

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("invalid gig id rejected", func(t *testing.T) {
		e := newTestRouter(freelancer, httphandler.NewApplicationHandler(&stubApplicationService{}))

		rec := doJSON(e, http.MethodPost, "/api/v1/applications",
			map[string]string{"gig_id": "nope"})

		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_GIG_ID")
	})

	t.Run("closed gig conflicts", func(t *testing.T) {
		service := &stubApplicationService{
			submitFn: func(_ context.Context, _ appusecase.SubmitApplicationCommand) (appusecase.Result, error) {
				return appusecase.Result{}, appusecase.ErrGigNotOpen
			},
		}
		e := newTestRouter(freelancer, httphandler.NewApplicationHandler(service))

		rec := doJSON(e, http.MethodPost, "/api/v1/applications",
			map[string]string{"gig_id": gigID.String()})

		assertErrorCode(t, rec, http.StatusConflict, "GIG_NOT_OPEN")
	})
}

func TestApplicationHandler_Accept(t *testing.T) {
	client := clientIdentity()
	gigID := uuid.NewUUID()

	t.Run("accept resolves siblings", func(t *testing.T) {
		winner := newTestApplication(t, gigID, uuid.NewUUID())
		require.NoError(t, winner.Accept())
		loser := newTestApplication(t, gigID, uuid.NewUUID())
		require.NoError(t, loser.Reject())

		service := &stubApplicationService{
			acceptFn: func(_ context.Context, cmd appusecase.AcceptApplicationCommand) (appusecase.AcceptResult, error) {
				assert.Equal(t, winner.ID(), cmd.ApplicationID)
				assert.Equal(t, client.UserID, cmd.ActorID)
				return appusecase.AcceptResult{
					Accepted: winner,
					Rejected: []*appdomain.Application{loser},
				}, nil
			},
		}
		e := newTestRouter(client, httphandler.NewApplicationHandler(service))

		rec := doJSON(e, http.MethodPost, "/api/v1/applications/"+winner.ID().String()+"/accept", nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		resp := decodeData[httphandler.AcceptApplicationResponse](t, rec)
		assert.Equal(t, "accepted", resp.Accepted.Status)
		require.Len(t, resp.Rejected, 1)
		assert.Equal(t, "rejected", resp.Rejected[0].Status)
	})

	t.Run("lost race conflicts", func(t *testing.T) {
		service := &stubApplicationService{
			acceptFn: func(_ context.Context, _ appusecase.AcceptApplicationCommand) (appusecase.AcceptResult, error) {
				return appusecase.AcceptResult{}, appusecase.ErrGigAlreadyAssigned
			},
		}
		e := newTestRouter(client, httphandler.NewApplicationHandler(service))

		rec := doJSON(e, http.MethodPost, "/api/v1/applications/"+uuid.NewUUID().String()+"/accept", nil)

		assertErrorCode(t, rec, http.StatusConflict, "GIG_ALREADY_ASSIGNED")
	})

	t.Run("non-poster is forbidden", func(t *testing.T) {
		service := &stubApplicationService{
			acceptFn: func(_ context.Context, _ appusecase.AcceptApplicationCommand) (appusecase.AcceptResult, error) {
				return appusecase.AcceptResult{}, appusecase.ErrNotGigPoster
			},
		}
		e := newTestRouter(client, httphandler.NewApplicationHandler(service))

		rec := doJSON(e, http.MethodPost, "/api/v1/applications/"+uuid.NewUUID().String()+"/accept", nil)

		assertErrorCode(t, rec, http.StatusForbidden, "NOT_GIG_POSTER")
	})

	t.Run("invalid id rejected", func(t *testing.T) {
		e := newTestRouter(client, httphandler.NewApplicationHandler(&stubApplicationService{}))

		rec := doJSON(e, http.MethodPost, "/api/v1/applications/xyz/accept", nil)

		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_APPLICATION_ID")
	})
}

func TestApplicationHandler_Reject(t *testing.T) {
	client := clientIdentity()

	t.Run("reject one application", func(t *testing.T) {
		a := newTestApplication(t, uuid.NewUUID(), uuid.NewUUID())
		require.NoError(t, a.Reject())

		service := &stubApplicationService{
			rejectFn: func(_ context.Context, cmd appusecase.RejectApplicationCommand) (appusecase.Result, error) {
				assert.Equal(t, a.ID(), cmd.ApplicationID)
				return applicationResult(a), nil
			},
		}
		e := newTestRouter(client, httphandler.NewApplicationHandler(service))

		rec := doJSON(e, http.MethodPost, "/api/v1/applications/"+a.ID().String()+"/reject", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeData[httphandler.ApplicationResponse](t, rec)
		assert.Equal(t, "rejected", resp.Status)
	})

	t.Run("already resolved conflicts", func(t *testing.T) {
		service := &stubApplicationService{
			rejectFn: func(_ context.Context, _ appusecase.RejectApplicationCommand) (appusecase.Result, error) {
				return appusecase.Result{}, appusecase.ErrAlreadyResolved
			},
		}
		e := newTestRouter(client, httphandler.NewApplicationHandler(service))

		rec := doJSON(e, http.MethodPost, "/api/v1/applications/"+uuid.NewUUID().String()+"/reject", nil)

		assertErrorCode(t, rec, http.StatusConflict, "ALREADY_RESOLVED")
	})
}

func TestApplicationHandler_ListByGig(t *testing.T) {
	client := clientIdentity()
	gigID := uuid.NewUUID()

	t.Run("poster lists applications", func(t *testing.T) {
		service := &stubApplicationService{
			listByGigFn: func(_ context.Context, query appusecase.ListByGigQuery) (appusecase.ListResult, error) {
				assert.Equal(t, gigID, query.GigID)
				assert.Equal(t, client.UserID, query.ActorID)
				return appusecase.ListResult{
					Applications: []*appdomain.Application{
						newTestApplication(t, gigID, uuid.NewUUID()),
						newTestApplication(t, gigID, uuid.NewUUID()),
					},
				}, nil
			},
		}
		e := newTestRouter(client, httphandler.NewApplicationHandler(service))

		rec := doJSON(e, http.MethodGet, "/api/v1/gigs/"+gigID.String()+"/applications", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeData[httphandler.ApplicationListResponse](t, rec)
		assert.Len(t, resp.Applications, 2)
	})

	t.Run("non-poster is forbidden", func(t *testing.T) {
		service := &stubApplicationService{
			listByGigFn: func(_ context.Context, _ appusecase.ListByGigQuery) (appusecase.ListResult, error) {
				return appusecase.ListResult{}, appusecase.ErrNotGigPoster
			},
		}
		e := newTestRouter(freelancerIdentity(), httphandler.NewApplicationHandler(service))

		rec := doJSON(e, http.MethodGet, "/api/v1/gigs/"+gigID.String()+"/applications", nil)

		assertErrorCode(t, rec, http.StatusForbidden, "NOT_GIG_POSTER")
	})
}

func TestApplicationHandler_ListMine(t *testing.T) {
	freelancer := freelancerIdentity()

	t.Run("pagination is forwarded and clamped", func(t *testing.T) {
		var captured appusecase.ListByApplicantQuery
		service := &stubApplicationService{
			listByApplicantFn: func(_ context.Context, query appusecase.ListByApplicantQuery) (appusecase.ListResult, error) {
				captured = query
				return appusecase.ListResult{Offset: query.Offset, Limit: query.Limit}, nil
			},
		}
		e := newTestRouter(freelancer, httphandler.NewApplicationHandler(service))

		rec := doJSON(e, http.MethodGet, "/api/v1/applications/mine?offset=40&limit=900", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, freelancer.UserID, captured.ApplicantID)
		assert.Equal(t, 40, captured.Offset)
		assert.Equal(t, 100, captured.Limit)
	})
}
