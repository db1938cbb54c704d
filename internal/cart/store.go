// Package cart keeps the shopping cart of each session and derives its
// totals.
package cart

import (
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

// Snapshot is an immutable view of a cart. Every effective mutation produces
// a new Snapshot with a fresh Lines slice and a higher Version.
type Snapshot struct {
	Lines         []domain.CartLine `json:"lines"`
	LineCount     int               `json:"line_count"`
	TotalQuantity int               `json:"total_quantity"`
	TotalPrice    decimal.Decimal   `json:"total_price"`
	Version       uint64            `json:"version"`
}

func (s Snapshot) Empty() bool {
	return s.LineCount == 0
}

// Line returns the line holding productID.
func (s Snapshot) Line(productID string) (domain.CartLine, bool) {
	for _, l := range s.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

func newSnapshot(lines []domain.CartLine, version uint64) Snapshot {
	s := Snapshot{
		Lines:      lines,
		LineCount:  len(lines),
		TotalPrice: decimal.Zero,
		Version:    version,
	}
	for _, l := range lines {
		s.TotalQuantity += l.Quantity
		s.TotalPrice = s.TotalPrice.Add(l.Subtotal())
	}
	return s
}

// Store owns the lines of one session's cart. Quantities never exceed the
// stock of the product snapshot they were last mutated with, and a line at
// zero is removed rather than kept.
type Store struct {
	mu      sync.Mutex
	snap    Snapshot
	nextSub int
	subs    []subscriber
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

func NewStore() *Store {
	return &Store{snap: newSnapshot([]domain.CartLine{}, 0)}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// AddItem adds quantity units of product. An existing line grows up to the
// product's stock; a new line starts at quantity clamped to [1, stock].
// Products without stock are ignored.
func (s *Store) AddItem(product domain.Product, quantity int) Snapshot {
	return s.mutate(func(lines []domain.CartLine) ([]domain.CartLine, bool) {
		if product.Stock <= 0 {
			return nil, false
		}
		quantity = max(quantity, 1)

		i := slices.IndexFunc(lines, func(l domain.CartLine) bool { return l.ProductID == product.ID })
		if i < 0 {
			return append(lines, domain.CartLine{
				ProductID: product.ID,
				Quantity:  min(quantity, product.Stock),
				Product:   product,
			}), true
		}

		next := min(lines[i].Quantity+quantity, product.Stock)
		if next == lines[i].Quantity {
			return nil, false
		}
		lines[i].Quantity = next
		lines[i].Product = product
		return lines, true
	})
}

// SetQuantity replaces a line's quantity. Zero or less removes the line; more
// than the product's stock leaves the cart untouched.
func (s *Store) SetQuantity(productID string, quantity int) Snapshot {
	if quantity <= 0 {
		return s.RemoveItem(productID)
	}
	return s.mutate(func(lines []domain.CartLine) ([]domain.CartLine, bool) {
		i := slices.IndexFunc(lines, func(l domain.CartLine) bool { return l.ProductID == productID })
		if i < 0 || quantity > lines[i].Product.Stock || quantity == lines[i].Quantity {
			return nil, false
		}
		lines[i].Quantity = quantity
		return lines, true
	})
}

func (s *Store) RemoveItem(productID string) Snapshot {
	return s.mutate(func(lines []domain.CartLine) ([]domain.CartLine, bool) {
		i := slices.IndexFunc(lines, func(l domain.CartLine) bool { return l.ProductID == productID })
		if i < 0 {
			return nil, false
		}
		return slices.Delete(lines, i, i+1), true
	})
}

// Clear empties the cart, typically after a successful checkout.
func (s *Store) Clear() Snapshot {
	return s.mutate(func(lines []domain.CartLine) ([]domain.CartLine, bool) {
		if len(lines) == 0 {
			return nil, false
		}
		return []domain.CartLine{}, true
	})
}

// mutate hands fn a private copy of the lines. When fn reports a change the
// result becomes the next snapshot and subscribers are notified outside the
// lock.
func (s *Store) mutate(fn func([]domain.CartLine) ([]domain.CartLine, bool)) Snapshot {
	s.mu.Lock()
	lines, changed := fn(slices.Clone(s.snap.Lines))
	if !changed {
		snap := s.snap
		s.mu.Unlock()
		return snap
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	s.snap = newSnapshot(lines, s.snap.Version+1)
	snap := s.snap
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
	return snap
}

// Subscribe registers fn to run after every effective mutation. The returned
// function removes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(slices.Clone(s.subs), func(sub subscriber) bool { return sub.id == id })
	}
}
