package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user. Email uniqueness is enforced here.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their (normalized) email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns every user ordered by creation time, oldest first.
	List(ctx context.Context) ([]*domain.User, error)

	// CountByRole returns how many users hold role.
	CountByRole(ctx context.Context, role domain.Role) (int, error)

	// UpdateRole changes a user's role.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error

	// Delete removes a user. Tasks owned by the user keep existing with no owner.
	// Returns ErrUserNotFound if the user does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
