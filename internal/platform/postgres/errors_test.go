package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskboard/internal/platform/postgres"
	"github.com/phrazzld/taskboard/internal/store"
	"github.com/stretchr/testify/assert"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "tasks",
		ColumnName:     "title",
		ConstraintName: "tasks_owner_id_fkey",
	}
}

// MockResult implements sql.Result for testing
type MockResult struct {
	rowsAffected int64
	err          error
}

func (m MockResult) LastInsertId() (int64, error) { return 0, m.err }
func (m MockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantNil bool
	}{
		{name: "nil", err: nil, wantNil: true},
		{name: "no rows", err: sql.ErrNoRows, wantIs: store.ErrNotFound},
		{name: "unique violation", err: newPgError("23505"), wantIs: store.ErrDuplicate},
		{name: "foreign key violation", err: newPgError("23503"), wantIs: store.ErrInvalidEntity},
		{name: "check violation", err: newPgError("23514"), wantIs: store.ErrInvalidEntity},
		{name: "not null violation", err: newPgError("23502"), wantIs: store.ErrInvalidEntity},
		{name: "wrapped unique violation", err: fmt.Errorf("exec: %w", newPgError("23505")), wantIs: store.ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := postgres.MapError(tt.err)
			if tt.wantNil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.wantIs)
		})
	}
}

func TestMapErrorPassesThroughUnknownErrors(t *testing.T) {
	t.Parallel()

	orig := errors.New("connection reset")
	assert.Same(t, orig, postgres.MapError(orig))

	other := newPgError("40001")
	assert.Equal(t, error(other), postgres.MapError(other))
}

func TestViolationPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsUniqueViolation(newPgError("23505")))
	assert.False(t, postgres.IsUniqueViolation(newPgError("23503")))
	assert.True(t, postgres.IsForeignKeyViolation(fmt.Errorf("wrapped: %w", newPgError("23503"))))
	assert.False(t, postgres.IsForeignKeyViolation(errors.New("plain")))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.CheckRowsAffected(MockResult{rowsAffected: 1}, store.ErrTaskNotFound))
	assert.ErrorIs(t, postgres.CheckRowsAffected(MockResult{rowsAffected: 0}, store.ErrTaskNotFound), store.ErrTaskNotFound)
	assert.ErrorIs(t, postgres.CheckRowsAffected(MockResult{rowsAffected: 0}, nil), store.ErrNotFound)
	assert.Error(t, postgres.CheckRowsAffected(nil, nil))

	resultErr := errors.New("driver does not support rows affected")
	assert.ErrorIs(t, postgres.CheckRowsAffected(MockResult{err: resultErr}, nil), resultErr)
}
