package orders

import (
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"

	"golang.org/x/text/cases"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

// StatusAll is the status choice that disables status filtering.
const StatusAll = "all"

// NewOrderNumber returns a display number such as ORD-482913.
func NewOrderNumber() string {
	return fmt.Sprintf("ORD-%d", 100000+rand.IntN(900000))
}

// ManageFilter narrows the order management tables. An empty Status keeps
// every status.
type ManageFilter struct {
	Query  string
	Status domain.OrderStatus
}

// ParseManageFilter reads search and status query parameters.
func ParseManageFilter(q url.Values) (ManageFilter, error) {
	f := ManageFilter{Query: q.Get("search")}

	raw := strings.TrimSpace(q.Get("status"))
	if raw == "" || strings.EqualFold(raw, StatusAll) {
		return f, nil
	}
	status, err := domain.ParseOrderStatus(strings.ToLower(raw))
	if err != nil {
		return ManageFilter{}, domain.NewValidationError("status", "unknown order status")
	}
	f.Status = status
	return f, nil
}

// Apply keeps the orders whose number, id, customer name or email contains
// the query and whose status matches.
func (f ManageFilter) Apply(orders []domain.Order) []domain.Order {
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(f.Query))

	out := []domain.Order{}
	for _, o := range orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if query != "" && !containsAny(fold, query, o.Number, o.ID, o.CustomerName, o.CustomerEmail) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func containsAny(fold cases.Caser, query string, fields ...string) bool {
	for _, s := range fields {
		if strings.Contains(fold.String(s), query) {
			return true
		}
	}
	return false
}
