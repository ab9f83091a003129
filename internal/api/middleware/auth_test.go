package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/service/auth"
	"github.com/stretchr/testify/assert"
)

type stubAuthenticator struct {
	claims *auth.Claims
	err    error
	got    string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	s.got = token
	return s.claims, s.err
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name           string
		authHeader     string
		authErr        error
		claims         *auth.Claims
		expectedStatus int
		expectedToken  string
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer valid-token",
			claims:         &auth.Claims{UserID: userID, Role: domain.RoleUser},
			expectedStatus: http.StatusOK,
			expectedToken:  "valid-token",
		},
		{
			name:           "lowercase scheme",
			authHeader:     "bearer valid-token",
			claims:         &auth.Claims{UserID: userID, Role: domain.RoleUser},
			expectedStatus: http.StatusOK,
			expectedToken:  "valid-token",
		},
		{
			name:           "missing auth header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "invalid auth format",
			authHeader:     "InvalidFormat",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "basic scheme",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer expired-token",
			authErr:        fmt.Errorf("%w: %w", domain.ErrUnauthenticated, auth.ErrExpiredToken),
			expectedStatus: http.StatusUnauthorized,
			expectedToken:  "expired-token",
		},
		{
			name:           "unexpected failure",
			authHeader:     "Bearer some-token",
			authErr:        errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedToken:  "some-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			authenticator := &stubAuthenticator{claims: tt.claims, err: tt.authErr}
			mw := NewAuthMiddleware(authenticator)

			var captured *auth.Claims
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = shared.GetClaims(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			mw.Authenticate(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectedToken, authenticator.got)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.claims, captured)
			} else {
				assert.Nil(t, captured)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		claims         *auth.Claims
		expectedStatus int
	}{
		{"no claims", nil, http.StatusUnauthorized},
		{"user", &auth.Claims{UserID: uuid.New(), Role: domain.RoleUser}, http.StatusForbidden},
		{"manager", &auth.Claims{UserID: uuid.New(), Role: domain.RoleManager}, http.StatusNoContent},
		{"admin", &auth.Claims{UserID: uuid.New(), Role: domain.RoleAdmin}, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
			handler := RequireRoles(domain.RoleAdmin, domain.RoleManager)(next)

			req := httptest.NewRequest(http.MethodDelete, "/tasks/x", nil)
			if tt.claims != nil {
				req = req.WithContext(shared.WithClaims(req.Context(), tt.claims))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}
