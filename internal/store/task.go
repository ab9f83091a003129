package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
)

// TaskFilter narrows a task listing. Nil fields match everything.
type TaskFilter struct {
	Status   *domain.TaskStatus
	Priority *domain.TaskPriority
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrOwnerNotFound if OwnerID references a missing user.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID. Legacy status values are normalized.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// List returns one page of tasks matching filter, newest first, together
	// with the total number of matching tasks. A done status filter also
	// matches legacy completed rows.
	List(ctx context.Context, filter TaskFilter, limit, offset int) ([]*domain.Task, int, error)

	// Update overwrites the mutable fields of an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
