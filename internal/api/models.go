package api

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

// RegisterResponse is returned by a successful registration.
type RegisterResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse defines the successful response for the login endpoint.
type LoginResponse struct {
	// Token is the bearer token for protected routes
	Token    string      `json:"token"`
	Role     domain.Role `json:"role"`
	UserID   uuid.UUID   `json:"user_id"`
	Username string      `json:"username"`

	// ExpiresAt is the RFC 3339 time the token stops authenticating
	ExpiresAt string `json:"expires_at"`
}

// UpdateRoleRequest defines the payload for changing a user's role.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        uuid.UUID   `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Deadline    *string `json:"deadline"`
	OwnerID     *string `json:"owner_id"    validate:"omitempty,uuid"`
	Order       *int    `json:"order"`
}

// UpdateTaskRequest defines a partial task update. Absent keys keep their
// value; deadline and owner_id may be set to null to clear them.
type UpdateTaskRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	Priority    *string        `json:"priority"`
	Deadline    NullableString `json:"deadline"`
	OwnerID     NullableString `json:"owner_id"`
	Order       *int           `json:"order"`
}

// NullableString records whether a JSON key was present and whether it was
// null.
type NullableString struct {
	Set   bool
	Valid bool
	Value string
}

// UnmarshalJSON implements json.Unmarshaler. It only runs for keys present in
// the document.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Valid = false
		n.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}
