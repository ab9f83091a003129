package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/events"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/phrazzld/taskboard/internal/service/auth"
	"github.com/phrazzld/taskboard/internal/store"
)

// Paging bounds for ListTasks.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// CreateTaskInput carries the fields of a new task. Empty Status and
// Priority take their defaults; a nil OwnerID means the requester.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Deadline    *time.Time
	OwnerID     *uuid.UUID
	Order       *int
}

// TaskPatch is a partial task update. Nil fields keep their prior value.
// ClearDeadline and ClearOwner remove the value instead.
type TaskPatch struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *string
	Deadline      *time.Time
	ClearDeadline bool
	OwnerID       *uuid.UUID
	ClearOwner    bool
	Order         *int
}

// TaskFilter narrows ListTasks. Empty fields match everything.
type TaskFilter struct {
	Status   string
	Priority string
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Items      []*domain.Task `json:"items"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// TaskService manages tasks on the shared board and announces every
// committed mutation.
type TaskService interface {
	// CreateTask stores a new task and emits taskCreated.
	CreateTask(ctx context.Context, input CreateTaskInput, requesterID uuid.UUID) (*domain.Task, error)

	// ListTasks returns one page of tasks, newest first.
	ListTasks(ctx context.Context, filter TaskFilter, page, pageSize int) (*TaskPage, error)

	// UpdateTask applies patch and emits taskUpdated with the stored record.
	// Any authenticated caller may update any task.
	UpdateTask(ctx context.Context, id uuid.UUID, patch TaskPatch) (*domain.Task, error)

	// DeleteTask removes a task and emits taskDeleted with its ID.
	// Restricted to admins and managers.
	DeleteTask(ctx context.Context, actor *auth.Claims, id uuid.UUID) error
}

type taskService struct {
	tasks   store.TaskStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewTaskService creates a TaskService that announces mutations through emitter.
func NewTaskService(tasks store.TaskStore, emitter events.EventEmitter, log *slog.Logger) TaskService {
	if log == nil {
		log = slog.Default()
	}
	return &taskService{
		tasks:   tasks,
		emitter: emitter,
		logger:  log.With("component", "task_service"),
	}
}

func (s *taskService) log(ctx context.Context) *slog.Logger {
	return logger.FromContextOrDefault(ctx, s.logger)
}

// CreateTask implements TaskService.
func (s *taskService) CreateTask(
	ctx context.Context,
	input CreateTaskInput,
	requesterID uuid.UUID,
) (*domain.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, domain.NewValidationError("title", "cannot be empty", domain.ErrEmptyTaskTitle)
	}

	owner := input.OwnerID
	if owner == nil {
		id := requesterID
		owner = &id
	}

	task, err := domain.NewTask(input.Title, input.Description, owner)
	if err != nil {
		return nil, err
	}
	if input.Status != "" {
		if task.Status, err = domain.ParseTaskStatus(input.Status); err != nil {
			return nil, err
		}
	}
	if input.Priority != "" {
		if task.Priority, err = domain.ParseTaskPriority(input.Priority); err != nil {
			return nil, err
		}
	}
	if input.Deadline != nil {
		d := input.Deadline.UTC()
		task.Deadline = &d
	}
	if input.Order != nil {
		task.Order = *input.Order
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, s.translateWriteError(ctx, "create_task", task.ID, err)
	}

	s.log(ctx).Info("task created", "task_id", task.ID, "owner_id", task.OwnerID)
	s.emit(ctx, events.TaskCreated, task)
	return task, nil
}

// ListTasks implements TaskService.
func (s *taskService) ListTasks(ctx context.Context, filter TaskFilter, page, pageSize int) (*TaskPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	var storeFilter store.TaskFilter
	if filter.Status != "" {
		status, err := domain.ParseTaskStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		storeFilter.Status = &status
	}
	if filter.Priority != "" {
		priority, err := domain.ParseTaskPriority(filter.Priority)
		if err != nil {
			return nil, err
		}
		storeFilter.Priority = &priority
	}

	items, total, err := s.tasks.List(ctx, storeFilter, pageSize, (page-1)*pageSize)
	if err != nil {
		s.log(ctx).Error("failed to list tasks", "error", err)
		return nil, newTaskError("list_tasks", "failed to list tasks", err)
	}
	if items == nil {
		items = []*domain.Task{}
	}

	return &TaskPage{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// UpdateTask implements TaskService.
func (s *taskService) UpdateTask(ctx context.Context, id uuid.UUID, patch TaskPatch) (*domain.Task, error) {
	task, err := s.getTask(ctx, "update_task", id)
	if err != nil {
		return nil, err
	}

	if err := applyPatch(task, patch); err != nil {
		return nil, err
	}
	task.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, s.translateWriteError(ctx, "update_task", id, err)
	}

	updated, err := s.getTask(ctx, "update_task", id)
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info("task updated", "task_id", id, "status", updated.Status)
	s.emit(ctx, events.TaskUpdated, updated)
	return updated, nil
}

// DeleteTask implements TaskService.
func (s *taskService) DeleteTask(ctx context.Context, actor *auth.Claims, id uuid.UUID) error {
	if err := auth.Authorize(actor, domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
		}
		s.log(ctx).Error("failed to delete task", "error", err, "task_id", id)
		return newTaskError("delete_task", "failed to delete task", err)
	}

	s.log(ctx).Info("task deleted", "task_id", id, "actor_id", actor.UserID)
	s.emit(ctx, events.TaskDeleted, id.String())
	return nil
}

func (s *taskService) getTask(ctx context.Context, op string, id uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
		}
		s.log(ctx).Error("failed to load task", "error", err, "task_id", id)
		return nil, newTaskError(op, "failed to load task", err)
	}
	return task, nil
}

func (s *taskService) translateWriteError(ctx context.Context, op string, id uuid.UUID, err error) error {
	switch {
	case errors.Is(err, store.ErrOwnerNotFound):
		return domain.NewValidationError("owner_id", "references a user that does not exist", nil)
	case store.IsNotFoundError(err):
		return fmt.Errorf("%w: task %s", domain.ErrNotFound, id)
	case domain.IsValidationError(err):
		return err
	}
	s.log(ctx).Error("failed to write task", "error", err, "task_id", id, "operation", op)
	return newTaskError(op, "failed to save task", err)
}

// emit publishes after the write has committed. Delivery problems are logged
// and never reported to the caller.
func (s *taskService) emit(ctx context.Context, name string, payload any) {
	if s.emitter == nil {
		return
	}
	event, err := events.NewEvent(name, payload)
	if err != nil {
		s.log(ctx).Error("failed to build event", "error", err, "event", name)
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		s.log(ctx).Warn("event delivery incomplete", "error", err, "event", name)
	}
}

func applyPatch(task *domain.Task, patch TaskPatch) error {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return domain.NewValidationError("title", "cannot be empty", domain.ErrEmptyTaskTitle)
		}
		task.Title = title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		status, err := domain.ParseTaskStatus(*patch.Status)
		if err != nil {
			return err
		}
		if err := task.SetStatus(status); err != nil {
			return err
		}
	}
	if patch.Priority != nil {
		priority, err := domain.ParseTaskPriority(*patch.Priority)
		if err != nil {
			return err
		}
		task.Priority = priority
	}
	switch {
	case patch.ClearDeadline:
		task.Deadline = nil
	case patch.Deadline != nil:
		d := patch.Deadline.UTC()
		task.Deadline = &d
	}
	switch {
	case patch.ClearOwner:
		task.OwnerID = nil
	case patch.OwnerID != nil:
		owner := *patch.OwnerID
		task.OwnerID = &owner
	}
	if patch.Order != nil {
		task.Order = *patch.Order
	}
	// Stored legacy values are folded on the way back out.
	task.Status = task.Status.Normalize()
	return nil
}

func totalPages(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
