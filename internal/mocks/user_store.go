package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard/internal/domain"
	"github.com/phrazzld/taskboard/internal/store"
)

// MemoryUserStore is an in-memory store.UserStore with unique-email
// enforcement. It is safe for concurrent use.
type MemoryUserStore struct {
	// CreateFn overrides Create when set
	CreateFn func(ctx context.Context, user *domain.User) error

	mu       sync.RWMutex
	byID     map[uuid.UUID]*domain.User
	byEmail  map[string]uuid.UUID
	onDelete []func(id uuid.UUID)
}

var _ store.UserStore = (*MemoryUserStore)(nil)

// NewMemoryUserStore creates an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Create implements store.UserStore.
func (m *MemoryUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	if err := user.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, exists := m.byEmail[email]; exists {
		return store.ErrEmailExists
	}

	stored := *user
	stored.Email = email
	m.byID[user.ID] = &stored
	m.byEmail[email] = user.ID
	return nil
}

// GetByID implements store.UserStore.
func (m *MemoryUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// GetByEmail implements store.UserStore.
func (m *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	id, ok := m.byEmail[domain.NormalizeEmail(email)]
	m.mu.RUnlock()
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return m.GetByID(ctx, id)
}

// List implements store.UserStore.
func (m *MemoryUserStore) List(_ context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*domain.User, 0, len(m.byID))
	for _, u := range m.byID {
		out := *u
		users = append(users, &out)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID.String() < users[j].ID.String()
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// CountByRole implements store.UserStore.
func (m *MemoryUserStore) CountByRole(_ context.Context, role domain.Role) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, u := range m.byID {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// UpdateRole implements store.UserStore.
func (m *MemoryUserStore) UpdateRole(_ context.Context, id uuid.UUID, role domain.Role) error {
	if !role.Valid() {
		return domain.ErrInvalidRole
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete implements store.UserStore.
func (m *MemoryUserStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	u, ok := m.byID[id]
	if !ok {
		m.mu.Unlock()
		return store.ErrUserNotFound
	}
	delete(m.byID, id)
	delete(m.byEmail, u.Email)
	hooks := append([]func(uuid.UUID){}, m.onDelete...)
	m.mu.Unlock()

	for _, fn := range hooks {
		fn(id)
	}
	return nil
}

func (m *MemoryUserStore) exists(id uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byID[id]
	return ok
}

func (m *MemoryUserStore) addDeleteHook(fn func(id uuid.UUID)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDelete = append(m.onDelete, fn)
}
