package session

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

// Directory knows every account by email. Sign-in resolves known addresses
// through it and the admin views list it.
type Directory interface {
	// Lookup returns nil when no account uses email.
	Lookup(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, user domain.User) error
	List(ctx context.Context) ([]domain.User, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type MemoryDirectory struct {
	mu    sync.RWMutex
	order []string
	users map[string]domain.User
}

func NewMemoryDirectory(seed ...domain.User) *MemoryDirectory {
	d := &MemoryDirectory{users: make(map[string]domain.User, len(seed))}
	for _, u := range seed {
		d.put(u)
	}
	return d
}

func (d *MemoryDirectory) Lookup(_ context.Context, email string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (d *MemoryDirectory) Put(_ context.Context, user domain.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.put(user)
	return nil
}

func (d *MemoryDirectory) put(user domain.User) {
	key := normalizeEmail(user.Email)
	if _, ok := d.users[key]; !ok {
		d.order = append(d.order, key)
	}
	d.users[key] = user
}

// List returns accounts in the order they were first added.
func (d *MemoryDirectory) List(_ context.Context) ([]domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.User, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.users[key])
	}
	return slices.Clip(out), nil
}
