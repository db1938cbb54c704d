// Package dashboard serves the seller dashboard and the buyer profile.
package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

const recentOrderCount = 4

type RecentOrder struct {
	ID       string             `json:"id"`
	Number   string             `json:"number"`
	Customer string             `json:"customer"`
	Date     time.Time          `json:"date"`
	Amount   decimal.Decimal    `json:"amount"`
	Status   domain.OrderStatus `json:"status"`
}

// Completion is the delivered share of a seller's orders.
type Completion struct {
	Delivered int     `json:"delivered"`
	Total     int     `json:"total"`
	Ratio     float64 `json:"ratio"`
}

type Overview struct {
	Revenue      decimal.Decimal `json:"revenue"`
	Orders       int             `json:"orders"`
	Products     int             `json:"products"`
	Customers    int             `json:"customers"`
	RecentOrders []RecentOrder   `json:"recent_orders"`
	Completion   Completion      `json:"completion"`
}

// BuildOverview summarizes the orders holding artisanID's products. orders
// must be newest first. Amounts only count the seller's own lines, and
// cancelled orders add nothing to revenue.
func BuildOverview(artisanID string, orders []domain.Order, products []domain.Product) Overview {
	ov := Overview{
		Revenue:      decimal.Zero,
		Products:     len(products),
		RecentOrders: []RecentOrder{},
	}

	customers := make(map[string]struct{})
	for _, o := range orders {
		if !o.HasArtisan(artisanID) {
			continue
		}
		ov.Orders++
		customers[o.UserID] = struct{}{}

		amount := o.ArtisanRevenue(artisanID)
		if o.Status != domain.OrderStatusCancelled {
			ov.Revenue = ov.Revenue.Add(amount)
		}
		if o.Status == domain.OrderStatusDelivered {
			ov.Completion.Delivered++
		}
		if len(ov.RecentOrders) < recentOrderCount {
			ov.RecentOrders = append(ov.RecentOrders, RecentOrder{
				ID:       o.ID,
				Number:   o.Number,
				Customer: o.CustomerName,
				Date:     o.CreatedAt,
				Amount:   amount,
				Status:   o.Status,
			})
		}
	}

	ov.Customers = len(customers)
	ov.Completion.Total = ov.Orders
	if ov.Orders > 0 {
		ov.Completion.Ratio = float64(ov.Completion.Delivered) / float64(ov.Orders)
	}
	return ov
}
