package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/store"
)

type memoryTask struct {
	task domain.Task
	seq  uint64
}

// MemoryTaskStore is an in-memory store.TaskStore. When built with a
// MemoryUserStore it enforces that owners exist and clears the owner of tasks
// whose user is deleted.
type MemoryTaskStore struct {
	// UpdateFn overrides Update when set
	UpdateFn func(ctx context.Context, task *domain.Task) error

	mu    sync.RWMutex
	tasks map[uuid.UUID]*memoryTask
	seq   uint64
	users *MemoryUserStore
}

var _ store.TaskStore = (*MemoryTaskStore)(nil)

// NewMemoryTaskStore creates an empty MemoryTaskStore. users may be nil.
func NewMemoryTaskStore(users *MemoryUserStore) *MemoryTaskStore {
	m := &MemoryTaskStore{
		tasks: make(map[uuid.UUID]*memoryTask),
		users: users,
	}
	if users != nil {
		users.addDeleteHook(m.orphan)
	}
	return m
}

// Create implements store.TaskStore.
func (m *MemoryTaskStore) Create(_ context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if err := m.checkOwner(task); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	stored := cloneTask(task)
	stored.Status = stored.Status.Normalize()
	m.tasks[task.ID] = &memoryTask{task: *stored, seq: m.seq}
	return nil
}

// GetByID implements store.TaskStore.
func (m *MemoryTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return cloneTask(&t.task), nil
}

// List implements store.TaskStore.
func (m *MemoryTaskStore) List(
	_ context.Context,
	filter store.TaskFilter,
	limit, offset int,
) ([]*domain.Task, int, error) {
	m.mu.RLock()
	matching := make([]*memoryTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		if filter.Status != nil && t.task.Status.Normalize() != filter.Status.Normalize() {
			continue
		}
		if filter.Priority != nil && t.task.Priority != *filter.Priority {
			continue
		}
		matching = append(matching, t)
	}
	m.mu.RUnlock()

	sort.Slice(matching, func(i, j int) bool {
		a, b := matching[i], matching[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})

	total := len(matching)
	if offset >= total {
		return []*domain.Task{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]*domain.Task, 0, end-offset)
	for _, t := range matching[offset:end] {
		page = append(page, cloneTask(&t.task))
	}
	return page, total, nil
}

// Update implements store.TaskStore.
func (m *MemoryTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	if err := m.checkOwner(task); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	updated := cloneTask(task)
	updated.Status = updated.Status.Normalize()
	updated.CreatedAt = existing.task.CreatedAt
	existing.task = *updated
	return nil
}

// Delete implements store.TaskStore.
func (m *MemoryTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// Len returns the number of stored tasks.
func (m *MemoryTaskStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks)
}

func (m *MemoryTaskStore) checkOwner(task *domain.Task) error {
	if m.users != nil && task.OwnerID != nil && !m.users.exists(*task.OwnerID) {
		return store.ErrOwnerNotFound
	}
	return nil
}

func (m *MemoryTaskStore) orphan(userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.task.OwnerID != nil && *t.task.OwnerID == userID {
			t.task.OwnerID = nil
		}
	}
}

func cloneTask(t *domain.Task) *domain.Task {
	out := *t
	if t.Deadline != nil {
		d := *t.Deadline
		out.Deadline = &d
	}
	if t.OwnerID != nil {
		o := *t.OwnerID
		out.OwnerID = &o
	}
	return &out
}
