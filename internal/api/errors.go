package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/taskboard/internal/api/shared"
	"github.com/phrazzld/taskboard/internal/domain"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes using the
// domain error taxonomy. Unknown errors are 500.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrValidation), errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err that never
// includes internal detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var vErr *domain.ValidationError
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &vErr):
		if vErr.Field != "" {
			return fmt.Sprintf("Invalid %s: %s", vErr.Field, vErr.Message)
		}
		return "Invalid request: " + vErr.Message
	case errors.As(err, &verrs):
		return SanitizeValidationError(verrs)
	case errors.Is(err, domain.ErrValidation):
		// Field sentinels read "validation failed: <reason>".
		msg := err.Error()
		prefix := domain.ErrValidation.Error() + ": "
		if i := strings.LastIndex(msg, prefix); i >= 0 {
			msg = msg[i+len(prefix):]
		}
		return "Invalid request: " + msg
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "Invalid or expired token"
	case errors.Is(err, domain.ErrForbidden):
		return "You do not have permission to perform this action"
	case errors.Is(err, domain.ErrNotFound):
		return notFoundMessage(err)
	case errors.Is(err, domain.ErrConflict):
		return "Email already registered"
	default:
		return "An unexpected error occurred"
	}
}

func notFoundMessage(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "task"):
		return "Task not found"
	case strings.Contains(msg, "user"):
		return "User not found"
	default:
		return "Resource not found"
	}
}

// SanitizeValidationError turns validator field errors into a short message
// naming the first offending field.
func SanitizeValidationError(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "must be a UUID"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the response for err. A non-empty message replaces
// the safe default message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	if message == "" {
		message = GetSafeErrorMessage(err)
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
