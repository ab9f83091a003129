package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskboard/internal/api/middleware"
	"github.com/phrazzld/taskboard/internal/config"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/events"
	"github.com/phrazzld/taskboard/internal/mocks"
	"github.com/phrazzld/taskboard/internal/service"
	"github.com/phrazzld/taskboard/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret-0123456789abcdef"

// apiFixture wires the real services over in-memory stores behind a router
// laid out like the server's.
type apiFixture struct {
	users       *mocks.MemoryUserStore
	tasks       *mocks.MemoryTaskStore
	registry    *events.Registry
	authService service.AuthService
	taskService service.TaskService
	router      chi.Router
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := mocks.NewMemoryUserStore()
	tasks := mocks.NewMemoryTaskStore(users)
	registry := events.NewRegistry(log)

	tokens, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	require.NoError(t, err)

	authService := service.NewAuthService(users, tokens, &mocks.MockPasswordHasher{}, log)
	taskService := service.NewTaskService(tasks, registry, log)

	authHandler := NewAuthHandler(authService)
	taskHandler := NewTaskHandler(taskService)
	authMW := middleware.NewAuthMiddleware(authService)

	r := chi.NewRouter()
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Route("/auth/users", func(r chi.Router) {
		r.Use(authMW.Authenticate)
		r.Use(middleware.RequireRoles(domain.RoleAdmin))
		r.Get("/", authHandler.ListUsers)
		r.Delete("/{id}", authHandler.DeleteUser)
		r.Put("/{id}/role", authHandler.UpdateUserRole)
	})
	r.Route("/tasks", func(r chi.Router) {
		r.Use(authMW.Authenticate)
		r.Get("/", taskHandler.ListTasks)
		r.Post("/", taskHandler.CreateTask)
		r.Put("/{id}", taskHandler.UpdateTask)
		r.With(middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager)).
			Delete("/{id}", taskHandler.DeleteTask)
	})
	r.Handle("/ws", NewRealtimeHandler(registry, authService, log))

	return &apiFixture{
		users:       users,
		tasks:       tasks,
		registry:    registry,
		authService: authService,
		taskService: taskService,
		router:      r,
	}
}

// signIn registers an account with role and returns a session token for it.
func (f *apiFixture) signIn(t *testing.T, username string, role domain.Role) (string, *LoginResponse) {
	t.Helper()
	ctx := context.Background()
	email := username + "@example.com"

	id, err := f.authService.Register(ctx, username, email, "password123")
	require.NoError(t, err)
	if role != domain.RoleUser {
		require.NoError(t, f.users.UpdateRole(ctx, id, role))
	}

	result, err := f.authService.Login(ctx, email, "password123")
	require.NoError(t, err)
	return result.Token, &LoginResponse{
		Token:    result.Token,
		Role:     result.Role,
		UserID:   result.UserID,
		Username: result.Username,
	}
}

// do sends a request through the router. body may be nil, a string or a value
// to encode as JSON.
func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		encoded, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[struct {
		Error string `json:"error"`
	}](t, rr).Error
}

