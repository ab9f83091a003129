package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/phrazzld/taskboard/internal/service/auth"
)

// TokenAuthenticator verifies a bearer token and returns the caller's claims.
// Every failure wraps domain.ErrUnauthenticated.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// AuthMiddleware provides bearer-token authentication for routes.
type AuthMiddleware struct {
	authenticator TokenAuthenticator
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(authenticator TokenAuthenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// Authenticate validates the bearer token in the Authorization header and
// stores the caller's claims in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		claims, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid or expired token", err)
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		ctx := shared.WithClaims(r.Context(), claims)
		log := logger.FromContext(ctx).With(
			slog.String("user_id", claims.UserID.String()),
			slog.String("role", string(claims.Role)))
		ctx = logger.WithLogger(ctx, log)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles rejects callers whose role is not in roles with 403. It must
// run after Authenticate.
func RequireRoles(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			err := auth.Authorize(shared.GetClaims(r.Context()), roles...)
			switch {
			case err == nil:
				next.ServeHTTP(w, r)
			case errors.Is(err, domain.ErrUnauthenticated):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusForbidden,
					"You do not have permission to perform this action", err,
					shared.WithElevatedLogLevel())
			}
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
