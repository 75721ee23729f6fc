package httphandler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/gigwork/internal/application/appcore"
	userapp "github.com/lllypuk/gigwork/internal/application/user"
	userdomain "github.com/lllypuk/gigwork/internal/domain/user"
	"github.com/lllypuk/gigwork/internal/domain/uuid"
	httphandler "github.com/lllypuk/gigwork/internal/handler/http"
)

type stubUserService struct {
	registerFn func(ctx context.Context, cmd userapp.RegisterUserCommand) (userapp.Result, error)
	getFn      func(ctx context.Context, userID uuid.UUID) (userapp.Result, error)
	updateFn   func(ctx context.Context, cmd userapp.UpdateProfileCommand) (userapp.Result, error)
}

func (s *stubUserService) Register(ctx context.Context, cmd userapp.RegisterUserCommand) (userapp.Result, error) {
	return s.registerFn(ctx, cmd)
}

func (s *stubUserService) GetUser(ctx context.Context, userID uuid.UUID) (userapp.Result, error) {
	return s.getFn(ctx, userID)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, cmd userapp.UpdateProfileCommand) (userapp.Result, error) {
	return s.updateFn(ctx, cmd)
}

func newTestUser(t *testing.T, role userdomain.Role) *userdomain.User {
	t.Helper()
	u, err := userdomain.NewUser("ext-user", "user@example.com", "Test User", role)
	require.NoError(t, err)
	return u
}

func userResult(u *userdomain.User) userapp.Result {
	return userapp.Result{Result: appcore.Result[*userdomain.User]{Value: u}}
}

func TestUserHandler_Register(t *testing.T) {
	t.Run("freelancer registers from token identity", func(t *testing.T) {
		// No internal user ID yet: the identity is authenticated but has
		// no profile, which is exactly when registration happens.
		id := identity{
			ExternalID:  "ext-new",
			Email:       "new@example.com",
			DisplayName: "New User",
		}

		var captured userapp.RegisterUserCommand
		service := &stubUserService{
			registerFn: func(_ context.Context, cmd userapp.RegisterUserCommand) (userapp.Result, error) {
				captured = cmd
				return userResult(newTestUser(t, cmd.Role)), nil
			},
		}
		e := newTestRouter(id, httphandler.NewUserHandler(service))

		rec := doJSON(e, http.MethodPost, "/api/v1/users/register",
			map[string]string{"role": "freelancer"})

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "ext-new", captured.ExternalID)
		assert.Equal(t, "new@example.com", captured.Email)
		assert.Equal(t, "New User", captured.DisplayName)
		assert.Equal(t, userdomain.RoleFreelancer, captured.Role)

		resp := decodeData[httphandler.UserResponse](t, rec)
		assert.Equal(t, "freelancer", resp.Role)
	})

	t.Run("explicit display name wins over token", func(t *testing.T) {
		id := identity{ExternalID: "ext-new", DisplayName: "Token Name"}
		service := &stubUserService{
			registerFn: func(_ context.Context, cmd userapp.RegisterUserCommand) (userapp.Result, error) {
				assert.Equal(t, "Chosen Name", cmd.DisplayName)
				return userResult(newTestUser(t, cmd.Role)), nil
			},
		}
		e := newTestRouter(id, httphandler.NewUserHandler(service))

		rec := doJSON(e, http.MethodPost, "/api/v1/users/register",
			map[string]string{"role": "job_poster", "display_name": "Chosen Name"})

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("admin role cannot be self-assigned", func(t *testing.T) {
		id := identity{ExternalID: "ext-new"}
		e := newTestRouter(id, httphandler.NewUserHandler(&stubUserService{}))

		rec := doJSON(e, http.MethodPost, "/api/v1/users/register",
			map[string]string{"role": "admin"})

		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_ROLE")
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		id := identity{ExternalID: "ext-new"}
		e := newTestRouter(id, httphandler.NewUserHandler(&stubUserService{}))

		rec := doJSON(e, http.MethodPost, "/api/v1/users/register",
			map[string]string{"role": "manager"})

		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_ROLE")
	})

	t.Run("duplicate registration conflicts", func(t *testing.T) {
		id := identity{ExternalID: "ext-existing"}
		service := &stubUserService{
			registerFn: func(_ context.Context, _ userapp.RegisterUserCommand) (userapp.Result, error) {
				return userapp.Result{}, userapp.ErrUserAlreadyExists
			},
		}
		e := newTestRouter(id, httphandler.NewUserHandler(service))

		rec := doJSON(e, http.MethodPost, "/api/v1/users/register",
			map[string]string{"role": "freelancer"})

		assertErrorCode(t, rec, http.StatusConflict, "USER_EXISTS")
	})
}

func TestUserHandler_GetMe(t *testing.T) {
	freelancer := freelancerIdentity()

	t.Run("returns own profile", func(t *testing.T) {
		u := newTestUser(t, userdomain.RoleFreelancer)
		service := &stubUserService{
			getFn: func(_ context.Context, userID uuid.UUID) (userapp.Result, error) {
				assert.Equal(t, freelancer.UserID, userID)
				return userResult(u), nil
			},
		}
		e := newTestRouter(freelancer, httphandler.NewUserHandler(service))

		rec := doJSON(e, http.MethodGet, "/api/v1/users/me", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeData[httphandler.UserResponse](t, rec)
		assert.Equal(t, u.Email(), resp.Email)
		assert.Equal(t, u.DisplayName(), resp.DisplayName)
	})

	t.Run("token without profile gets 401", func(t *testing.T) {
		id := identity{ExternalID: "ext-no-profile"}
		e := newTestRouter(id, httphandler.NewUserHandler(&stubUserService{}))

		rec := doJSON(e, http.MethodGet, "/api/v1/users/me", nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestUserHandler_UpdateMe(t *testing.T) {
	freelancer := freelancerIdentity()

	t.Run("updates skills and display name", func(t *testing.T) {
		u := newTestUser(t, userdomain.RoleFreelancer)
		var captured userapp.UpdateProfileCommand
		service := &stubUserService{
			updateFn: func(_ context.Context, cmd userapp.UpdateProfileCommand) (userapp.Result, error) {
				captured = cmd
				return userResult(u), nil
			},
		}
		e := newTestRouter(freelancer, httphandler.NewUserHandler(service))

		rec := doJSON(e, http.MethodPut, "/api/v1/users/me", map[string]any{
			"display_name": "Renamed",
			"skills":       []string{"go", "redis"},
		})

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured.DisplayName)
		assert.Equal(t, "Renamed", *captured.DisplayName)
		assert.Equal(t, []string{"go", "redis"}, captured.Skills)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		e := newTestRouter(freelancer, httphandler.NewUserHandler(&stubUserService{}))

		rec := doJSON(e, http.MethodPut, "/api/v1/users/me", map[string]any{})

		assertErrorCode(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
	})

	t.Run("empty display name rejected", func(t *testing.T) {
		e := newTestRouter(freelancer, httphandler.NewUserHandler(&stubUserService{}))

		rec := doJSON(e, http.MethodPut, "/api/v1/users/me",
			map[string]any{"display_name": ""})

		assertErrorCode(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")
	})
}

func TestUserHandler_Get(t *testing.T) {
	client := clientIdentity()

	t.Run("found", func(t *testing.T) {
		u := newTestUser(t, userdomain.RoleFreelancer)
		service := &stubUserService{
			getFn: func(_ context.Context, userID uuid.UUID) (userapp.Result, error) {
				assert.Equal(t, u.ID(), userID)
				return userResult(u), nil
			},
		}
		e := newTestRouter(client, httphandler.NewUserHandler(service))

		rec := doJSON(e, http.MethodGet, "/api/v1/users/"+u.ID().String(), nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		e := newTestRouter(client, httphandler.NewUserHandler(&stubUserService{}))

		rec := doJSON(e, http.MethodGet, "/api/v1/users/abc", nil)

		assertErrorCode(t, rec, http.StatusBadRequest, "INVALID_USER_ID")
	})

	t.Run("not found", func(t *testing.T) {
		service := &stubUserService{
			getFn: func(_ context.Context, _ uuid.UUID) (userapp.Result, error) {
				return userapp.Result{}, userapp.ErrUserNotFound
			},
		}
		e := newTestRouter(client, httphandler.NewUserHandler(service))

		rec := doJSON(e, http.MethodGet, "/api/v1/users/"+uuid.NewUUID().String(), nil)

		assertErrorCode(t, rec, http.StatusNotFound, "USER_NOT_FOUND")
	})
}
