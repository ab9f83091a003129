package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Role is the access level attached to a user and carried in session claims.
type Role string

// Possible role values
const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// Common validation errors for User
var (
	ErrEmptyUserID         = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyUsername       = fmt.Errorf("%w: username cannot be empty", ErrValidation)
	ErrEmptyEmail          = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrInvalidEmail        = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrEmptyPasswordDigest = fmt.Errorf("%w: password digest cannot be empty", ErrValidation)
	ErrInvalidRole         = fmt.Errorf("%w: invalid role", ErrValidation)
)

var emailValidator = validator.New()

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleUser:
		return true
	}
	return false
}

// ParseRole converts s into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return "", NewValidationError("role", fmt.Sprintf("must be one of admin, manager, user (got %q)", s), ErrInvalidRole)
	}
	return r, nil
}

// User is a registered account. The password digest never leaves the process
// in serialized form.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PasswordDigest string    `json:"-"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a user with role RoleUser. The caller is responsible for
// producing the digest; plaintext passwords never reach this type.
func NewUser(username, email, passwordDigest string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Username:       strings.TrimSpace(username),
		Email:          NormalizeEmail(email),
		PasswordDigest: passwordDigest,
		Role:           RoleUser,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Username == "" {
		return ErrEmptyUsername
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !ValidEmail(u.Email) {
		return ErrInvalidEmail
	}
	if u.PasswordDigest == "" {
		return ErrEmptyPasswordDigest
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// ValidEmail reports whether email looks like a deliverable address.
func ValidEmail(email string) bool {
	return emailValidator.Var(email, "required,email") == nil
}

// NormalizeEmail trims surrounding whitespace and lowercases the address so
// uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
