package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/platform/logger"
	"github.com/phrazzld/taskboard/internal/store"
)

const taskColumns = `id, title, description, status, priority, deadline, owner_id, order_hint, created_at, updated_at`

type taskRow struct {
	ID          uuid.UUID     `db:"id"`
	Title       string        `db:"title"`
	Description string        `db:"description"`
	Status      string        `db:"status"`
	Priority    string        `db:"priority"`
	Deadline    sql.NullTime  `db:"deadline"`
	OwnerID     uuid.NullUUID `db:"owner_id"`
	OrderHint   int           `db:"order_hint"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

func newTaskRow(t *domain.Task) taskRow {
	row := taskRow{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status.Normalize()),
		Priority:    string(t.Priority),
		OrderHint:   t.Order,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Deadline != nil {
		row.Deadline = sql.NullTime{Time: t.Deadline.UTC(), Valid: true}
	}
	if t.OwnerID != nil {
		row.OwnerID = uuid.NullUUID{UUID: *t.OwnerID, Valid: true}
	}
	return row
}

func (r taskRow) toDomain() *domain.Task {
	task := &domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.TaskStatus(r.Status).Normalize(),
		Priority:    domain.TaskPriority(r.Priority),
		Order:       r.OrderHint,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.Deadline.Valid {
		d := r.Deadline.Time.UTC()
		task.Deadline = &d
	}
	if r.OwnerID.Valid {
		owner := r.OwnerID.UUID
		task.OwnerID = &owner
	}
	return task
}

// PostgresTaskStore implements store.TaskStore on PostgreSQL.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store over db. If logger is nil the
// default logger is used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (:id, :title, :description, :status, :priority, :deadline, :owner_id, :order_hint, :created_at, :updated_at)
	`
	if _, err := sqlx.NamedExecContext(ctx, s.db, query, newTaskRow(task)); err != nil {
		return s.writeError(log, "create", task, err)
	}

	log.Info("task created", slog.String("task_id", task.ID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var row taskRow
	err := sqlx.GetContext(ctx, s.db, &row, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return row.toDomain(), nil
}

// List implements store.TaskStore.List.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	limit, offset int,
) ([]*domain.Task, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := buildTaskFilter(filter)

	countQuery, countArgs, err := sqlx.In(`SELECT COUNT(*) FROM tasks`+where, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := sqlx.GetContext(ctx, s.db, &total, s.db.Rebind(countQuery), countArgs...); err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	pageQuery, pageArgs, err := sqlx.In(
		`SELECT `+taskColumns+` FROM tasks`+where+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, err
	}

	var rows []taskRow
	if err := sqlx.SelectContext(ctx, s.db, &rows, s.db.Rebind(pageQuery), pageArgs...); err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	tasks := make([]*domain.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toDomain())
	}

	log.Debug("tasks listed",
		slog.Int("count", len(tasks)),
		slog.Int("total", total),
		slog.Int("limit", limit),
		slog.Int("offset", offset))
	return tasks, total, nil
}

// buildTaskFilter returns a WHERE clause using ? placeholders for sqlx.In.
func buildTaskFilter(filter store.TaskFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Status != nil {
		statuses := []string{string(*filter.Status)}
		if filter.Status.Normalize() == domain.TaskStatusDone {
			statuses = []string{string(domain.TaskStatusDone), string(domain.TaskStatusCompleted)}
		}
		clauses = append(clauses, "status IN (?)")
		args = append(args, statuses)
	}
	if filter.Priority != nil {
		clauses = append(clauses, "priority = ?")
		args = append(args, string(*filter.Priority))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = :title, description = :description, status = :status, priority = :priority,
		    deadline = :deadline, owner_id = :owner_id, order_hint = :order_hint, updated_at = :updated_at
		WHERE id = :id
	`
	result, err := sqlx.NamedExecContext(ctx, s.db, query, newTaskRow(task))
	if err != nil {
		return s.writeError(log, "update", task, err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task updated", slog.String("task_id", task.ID.String()))
	return nil
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

func (s *PostgresTaskStore) writeError(log *slog.Logger, op string, task *domain.Task, err error) error {
	if IsForeignKeyViolation(err) {
		log.Warn("task references a missing owner",
			slog.String("task_id", task.ID.String()),
			slog.String("operation", op))
		return store.ErrOwnerNotFound
	}
	log.Error("failed to write task",
		slog.String("error", err.Error()),
		slog.String("task_id", task.ID.String()),
		slog.String("operation", op))
	return store.NewStoreError("task", op, "failed to write task", MapError(err))
}
