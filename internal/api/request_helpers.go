package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/service/auth"
)

// deadlineDateLayout is the date-only form accepted for task deadlines.
const deadlineDateLayout = "2006-01-02"

// requireClaims returns the authenticated caller, writing a 401 when the
// authentication middleware did not run.
func requireClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims := shared.GetClaims(r.Context())
	if claims == nil {
		HandleAPIError(w, r, domain.ErrUnauthenticated, "Authentication required")
		return nil, false
	}
	return claims, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", nil)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", nil)
	}
	return id, nil
}

// parseQueryInt reads an optional positive-or-zero integer query parameter.
// Absent parameters yield 0.
func parseQueryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer", nil)
	}
	return n, nil
}

// parseDeadline accepts YYYY-MM-DD or RFC 3339. Dates are midnight UTC.
func parseDeadline(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(deadlineDateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, domain.NewValidationError("deadline", "must be YYYY-MM-DD or RFC 3339", nil)
}

func parseOwnerID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("owner_id", "has invalid format", nil)
	}
	return id, nil
}
