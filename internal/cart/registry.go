package cart

import (
	"sync"
	"time"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

// Registry hands out one Store per session key. Carts untouched for longer
// than the idle timeout are forgotten.
type Registry struct {
	onChange func(key string, snap Snapshot)
	idle     time.Duration
	now      func() time.Time

	mu    sync.Mutex
	carts map[string]*entry
	swept time.Time
}

type entry struct {
	store *Store
	used  time.Time
}

type RegistryOption func(*Registry)

// WithIdleTimeout expires carts not read or written for d. Zero keeps carts
// until they are dropped.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		r.idle = d
	}
}

func withClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry builds an empty registry. onChange, when set, is subscribed to
// every store the registry creates.
func NewRegistry(onChange func(key string, snap Snapshot), opts ...RegistryOption) *Registry {
	r := &Registry{
		onChange: onChange,
		now:      time.Now,
		carts:    make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.swept = r.now()
	return r
}

// Get returns the cart of key, creating an empty one on first use or after
// the previous cart expired.
func (r *Registry) Get(key string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	e, ok := r.live(key, now)
	if !ok {
		s := NewStore()
		if r.onChange != nil {
			s.Subscribe(func(snap Snapshot) { r.onChange(key, snap) })
		}
		e = &entry{store: s}
		r.carts[key] = e
	}
	e.used = now
	return e.store
}

// Lookup returns the cart of key without creating one.
func (r *Registry) Lookup(key string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)

	e, ok := r.live(key, now)
	if !ok {
		return nil, false
	}
	e.used = now
	return e.store, true
}

// Snapshot returns the current lines of key's cart, empty when there is none.
func (r *Registry) Snapshot(key string) Snapshot {
	if s, ok := r.Lookup(key); ok {
		return s.Snapshot()
	}
	return newSnapshot([]domain.CartLine{}, 0)
}

// Drop forgets the cart of key. A later Get starts from an empty cart.
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, key)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}

func (r *Registry) expired(e *entry, now time.Time) bool {
	return r.idle > 0 && now.Sub(e.used) >= r.idle
}

func (r *Registry) live(key string, now time.Time) (*entry, bool) {
	e, ok := r.carts[key]
	if !ok {
		return nil, false
	}
	if r.expired(e, now) {
		delete(r.carts, key)
		return nil, false
	}
	return e, true
}

// sweep drops expired carts, at most once per idle period. Callers hold mu.
func (r *Registry) sweep(now time.Time) {
	if r.idle <= 0 || now.Sub(r.swept) < r.idle {
		return
	}
	r.swept = now
	for key, e := range r.carts {
		if r.expired(e, now) {
			delete(r.carts, key)
		}
	}
}
