package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/atinyakov/taskly/internal/models"
)

// MemoryStore keeps users and tasks in process memory. It satisfies the same
// contracts as the Postgres repositories and is used when no database is
// configured. All methods are safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	byLogin map[string]models.User
	tasks   map[string]models.Task
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byLogin: make(map[string]models.User),
		tasks:   make(map[string]models.Task),
	}
}

func (m *MemoryStore) UserExists(_ context.Context, login string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byLogin[login]
	return ok, nil
}

func (m *MemoryStore) FindUserByLogin(_ context.Context, login string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byLogin[login]
	if !ok {
		return nil, ErrNotFound
	}
	u.PasswordHash = slices.Clone(u.PasswordHash)
	return &u, nil
}

func (m *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byLogin[user.Login]; ok {
		return ErrDuplicateLogin
	}
	u := *user
	u.PasswordHash = slices.Clone(user.PasswordHash)
	m.byLogin[user.Login] = u
	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) CreateTask(_ context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = *task
	return nil
}

func (m *MemoryStore) ListTasks(_ context.Context, userID string) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tasks := make([]models.Task, 0)
	for _, t := range m.tasks {
		if t.UserID == userID {
			tasks = append(tasks, t)
		}
	}
	slices.SortFunc(tasks, func(a, b models.Task) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return tasks, nil
}

func (m *MemoryStore) GetTask(_ context.Context, userID, id string) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MemoryStore) UpdateTask(_ context.Context, userID, id string, upd models.TaskUpdate) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	upd.Apply(&t)
	m.tasks[id] = t
	return &t, nil
}

func (m *MemoryStore) DeleteTask(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}
