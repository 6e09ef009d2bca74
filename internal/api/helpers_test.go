package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskhub-api/internal/api/middleware"
	"github.com/phrazzld/taskhub-api/internal/domain"
	"github.com/phrazzld/taskhub-api/internal/mocks"
	"github.com/phrazzld/taskhub-api/internal/service"
	"github.com/phrazzld/taskhub-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

// testAPI wires handlers over in-memory stores. Access tokens are the
// user's UUID string.
type testAPI struct {
	router http.Handler
	users  *mocks.MockUserStore
	tasks  *mocks.MockTaskStore
	teams  *mocks.MockTeamStore
	jwt    *mocks.MockJWTService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	a := &testAPI{
		users: mocks.NewMockUserStore(),
		tasks: mocks.NewMockTaskStore(),
		teams: mocks.NewMockTeamStore(),
	}
	a.tasks.IsMember = a.teams.HasMember
	a.jwt = &mocks.MockJWTService{
		GenerateTokenFn: func(ctx context.Context, userID uuid.UUID) (string, error) {
			return userID.String(), nil
		},
		GenerateRefreshTokenFn: func(ctx context.Context, userID uuid.UUID) (string, error) {
			return "refresh-" + userID.String(), nil
		},
		ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
			id, err := uuid.Parse(token)
			if err != nil {
				return nil, auth.ErrInvalidToken
			}
			return &auth.Claims{UserID: id, TokenType: auth.TokenTypeAccess}, nil
		},
	}

	userService, err := service.NewUserService(a.users, &mocks.MockPasswordVerifier{}, nil)
	require.NoError(t, err)
	taskService, err := service.NewTaskService(a.tasks, a.teams, nil)
	require.NoError(t, err)
	teamService, err := service.NewTeamService(a.teams, a.users, nil, nil)
	require.NoError(t, err)

	authHandler := NewAuthHandler(userService, a.jwt)
	taskHandler := NewTaskHandler(taskService)
	teamHandler := NewTeamHandler(teamService)
	authMiddleware := middleware.NewAuthMiddleware(a.jwt)

	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.RefreshToken)
			r.With(authMiddleware.Authenticate).Get("/me", authHandler.Me)
		})
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.ListTasks)
				r.Post("/", taskHandler.CreateTask)
				r.Get("/{id}", taskHandler.GetTask)
				r.Put("/{id}", taskHandler.UpdateTask)
				r.Delete("/{id}", taskHandler.DeleteTask)
			})
			r.Route("/teams", func(r chi.Router) {
				r.Get("/", teamHandler.ListTeams)
				r.Post("/", teamHandler.CreateTeam)
				r.Get("/{id}", teamHandler.GetTeam)
				r.Put("/{id}", teamHandler.UpdateTeam)
				r.Delete("/{id}", teamHandler.DeleteTeam)
				r.Post("/{id}/members", teamHandler.AddMember)
				r.Delete("/{id}/members/{userID}", teamHandler.RemoveMember)
			})
		})
	})
	a.router = r
	return a
}

// do sends body (marshalled unless it is a string) as user.
func (a *testAPI) do(t *testing.T, method, path string, user uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+user.String())
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// seedUser stores a user whose password is "password123".
func (a *testAPI) seedUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(email, "password123", "")
	require.NoError(t, err)
	u.HashedPassword, u.Password = "hashed:password123", ""
	require.NoError(t, a.users.Create(context.Background(), u))
	return u
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]interface{}](t, rec)["error"].(string)
}
