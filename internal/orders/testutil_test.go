package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

func testOrder(id, userID, artisanID string, status domain.OrderStatus, created time.Time) *domain.Order {
	price := decimal.RequireFromString("20.00")
	return &domain.Order{
		ID:            id,
		Number:        "ORD-" + id,
		UserID:        userID,
		CustomerName:  "Customer " + userID,
		CustomerEmail: userID + "@example.com",
		Lines: []domain.OrderLine{
			{ProductID: "p1", Name: "Handwoven Basket", ArtisanID: artisanID, Quantity: 2, Price: price},
		},
		Status:   status,
		Subtotal: decimal.RequireFromString("40.00"),
		Shipping: decimal.RequireFromString("10.00"),
		Tax:      decimal.RequireFromString("2.00"),
		Total:    decimal.RequireFromString("52.00"),
		ShippingAddress: domain.Address{
			Street: "1 Main St", City: "Accra", State: "Greater Accra", ZipCode: "00233", Country: "Ghana",
		},
		CreatedAt: created,
	}
}
