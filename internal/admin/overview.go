package admin

import (
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

type Overview struct {
	Users      int             `json:"users"`
	Orders     int             `json:"orders"`
	Revenue    decimal.Decimal `json:"revenue"`
	Products   int             `json:"products"`
	Categories int             `json:"categories"`
}

// BuildOverview totals the marketplace. Cancelled orders are counted but
// add nothing to revenue.
func BuildOverview(users []domain.User, orders []domain.Order, products, categories int) Overview {
	ov := Overview{
		Users:      len(users),
		Orders:     len(orders),
		Revenue:    decimal.Zero,
		Products:   products,
		Categories: categories,
	}
	for _, o := range orders {
		if o.Status != domain.OrderStatusCancelled {
			ov.Revenue = ov.Revenue.Add(o.Total)
		}
	}
	return ov
}
