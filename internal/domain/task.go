package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents where a task sits on the board.
type TaskStatus string

// Possible task status values
const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusDone       TaskStatus = "done"

	// TaskStatusCompleted is a legacy spelling of done still present in older
	// rows. It is accepted on input and normalized to TaskStatusDone.
	TaskStatusCompleted TaskStatus = "completed"
)

// TaskPriority ranks tasks for display.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID         = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrEmptyTaskTitle      = fmt.Errorf("%w: task title cannot be empty", ErrValidation)
	ErrInvalidTaskStatus   = fmt.Errorf("%w: invalid task status", ErrValidation)
	ErrInvalidTaskPriority = fmt.Errorf("%w: invalid task priority", ErrValidation)
)

// Normalize folds legacy spellings into their canonical value.
func (s TaskStatus) Normalize() TaskStatus {
	if s == TaskStatusCompleted {
		return TaskStatusDone
	}
	return s
}

// Valid reports whether s is a canonical status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// ParseTaskStatus converts s into a canonical TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.TrimSpace(s)).Normalize()
	if !status.Valid() {
		return "", NewValidationError("status", fmt.Sprintf("must be one of todo, in-progress, done (got %q)", s), ErrInvalidTaskStatus)
	}
	return status, nil
}

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// ParseTaskPriority converts s into a TaskPriority.
func ParseTaskPriority(s string) (TaskPriority, error) {
	p := TaskPriority(strings.TrimSpace(s))
	if !p.Valid() {
		return "", NewValidationError("priority", fmt.Sprintf("must be one of low, medium, high (got %q)", s), ErrInvalidTaskPriority)
	}
	return p, nil
}

// Task is a unit of work on the shared board. Any status may move to any
// other status; there is no transition graph.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Deadline    *time.Time   `json:"deadline"`
	OwnerID     *uuid.UUID   `json:"owner_id"`
	Order       int          `json:"order"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a task with status todo and priority medium. Callers
// override the defaults before validating again if needed.
func NewTask(title, description string, ownerID *uuid.UUID) (*Task, error) {
	// v7 IDs sort by creation time, so they break created_at ties in listings.
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task ID: %w", err)
	}

	now := storedNow()
	task := &Task{
		ID:          id,
		Title:       strings.TrimSpace(title),
		Description: description,
		Status:      TaskStatusTodo,
		Priority:    TaskPriorityMedium,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTaskTitle
	}
	if !t.Status.Normalize().Valid() {
		return ErrInvalidTaskStatus
	}
	if !t.Priority.Valid() {
		return ErrInvalidTaskPriority
	}
	return nil
}

// SetStatus moves the task to status, normalizing legacy spellings.
func (t *Task) SetStatus(status TaskStatus) error {
	status = status.Normalize()
	if !status.Valid() {
		return ErrInvalidTaskStatus
	}
	t.Status = status
	t.UpdatedAt = storedNow()
	return nil
}

// storedNow is the current UTC time at the microsecond precision Postgres
// keeps, so a task reads back with the timestamps it was created with.
func storedNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
