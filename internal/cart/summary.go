package cart

import (
	"github.com/shopspring/decimal"
)

var (
	// FreeShippingThreshold is the subtotal a cart must exceed to ship free.
	FreeShippingThreshold = decimal.NewFromInt(50)
	FlatShipping          = decimal.NewFromInt(10)
	TaxRate               = decimal.RequireFromString("0.05")
)

// Summary is the order summary shown next to the cart and at checkout.
type Summary struct {
	ItemCount             int             `json:"item_count"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	Shipping              decimal.Decimal `json:"shipping"`
	Tax                   decimal.Decimal `json:"tax"`
	Total                 decimal.Decimal `json:"total"`
	FreeShippingRemaining decimal.Decimal `json:"free_shipping_remaining"`
}

func Summarize(s Snapshot) Summary {
	subtotal := s.TotalPrice

	shipping := FlatShipping
	if s.Empty() || subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	remaining := decimal.Zero
	if shipping.IsPositive() && subtotal.LessThan(FreeShippingThreshold) {
		remaining = FreeShippingThreshold.Sub(subtotal)
	}

	tax := subtotal.Mul(TaxRate).Round(2)
	return Summary{
		ItemCount:             s.TotalQuantity,
		Subtotal:              subtotal,
		Shipping:              shipping,
		Tax:                   tax,
		Total:                 subtotal.Add(shipping).Add(tax),
		FreeShippingRemaining: remaining,
	}
}
