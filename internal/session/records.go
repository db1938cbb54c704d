package session

import (
	"context"
	"sync"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

// Records is the durable session record: at most one serialized identity per
// session key.
type Records interface {
	// Load returns nil when the key holds no identity.
	Load(ctx context.Context, key string) (*domain.User, error)
	Save(ctx context.Context, key string, user domain.User) error
	Delete(ctx context.Context, key string) error
}

type MemoryRecords struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryRecords() *MemoryRecords {
	return &MemoryRecords{users: make(map[string]domain.User)}
}

func (m *MemoryRecords) Load(_ context.Context, key string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[key]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryRecords) Save(_ context.Context, key string, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[key] = user
	return nil
}

func (m *MemoryRecords) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, key)
	return nil
}
