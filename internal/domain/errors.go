// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every layer above the store. Services wrap these
// sentinels and the HTTP layer maps them to status codes.
var (
	// ErrValidation is returned when input or an entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when an operation would violate a uniqueness rule.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials is returned by login for an unknown email or a wrong
	// password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when a session token is missing, malformed,
	// tampered with, or expired.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the caller's role does not permit the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when the addressed entity does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError describes a single invalid field. It unwraps to ErrValidation
// (or to a more specific error that itself wraps ErrValidation).
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field. When err is nil the
// error unwraps to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is or wraps a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
