package orders

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

// MemoryRepository keeps orders in process memory. It backs the storefront
// when no database is configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders []domain.Order
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{now: time.Now}
}

func (m *MemoryRepository) Create(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}
	m.orders = append(m.orders, cloneOrder(*order))
	return nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, o := range m.orders {
		if o.ID == id {
			order := cloneOrder(o)
			return &order, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Status = status
			m.orders[i].UpdatedAt = m.now().UTC()
			order := cloneOrder(m.orders[i])
			return &order, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) TransitionStatus(_ context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.orders {
		if m.orders[i].ID == id {
			if m.orders[i].Status != from {
				return nil, nil
			}
			m.orders[i].Status = to
			m.orders[i].UpdatedAt = m.now().UTC()
			order := cloneOrder(m.orders[i])
			return &order, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) List(_ context.Context) ([]domain.Order, error) {
	return m.listWhere(func(domain.Order) bool { return true }), nil
}

func (m *MemoryRepository) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	return m.listWhere(func(o domain.Order) bool { return o.UserID == userID }), nil
}

func (m *MemoryRepository) ListByArtisan(_ context.Context, artisanID string) ([]domain.Order, error) {
	return m.listWhere(func(o domain.Order) bool { return o.HasArtisan(artisanID) }), nil
}

// listWhere returns matching orders newest first; orders created at the same
// instant keep reverse insertion order.
func (m *MemoryRepository) listWhere(keep func(domain.Order) bool) []domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Order{}
	for i := len(m.orders) - 1; i >= 0; i-- {
		if keep(m.orders[i]) {
			out = append(out, cloneOrder(m.orders[i]))
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func cloneOrder(o domain.Order) domain.Order {
	o.Lines = slices.Clone(o.Lines)
	if o.Lines == nil {
		o.Lines = []domain.OrderLine{}
	}
	return o
}
