package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id" yaml:"id"`
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
	Category    string          `json:"category" yaml:"category"`
	Stock       int             `json:"stock" yaml:"stock"`
	Images      []string        `json:"images" yaml:"images"`
	ArtisanID   string          `json:"artisan_id" yaml:"artisan_id"`
	ArtisanName string          `json:"artisan_name" yaml:"artisan_name"`
	Rating      float64         `json:"rating" yaml:"rating"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
}

func (p Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product %q: missing id", p.Name)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %s: negative price %s", p.ID, p.Price)
	}
	if p.Stock < 0 {
		return fmt.Errorf("product %s: negative stock %d", p.ID, p.Stock)
	}
	if len(p.Images) == 0 {
		return fmt.Errorf("product %s: no images", p.ID)
	}
	return nil
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

// StockLabel mirrors the availability badge: plenty, low or none.
func (p Product) StockLabel() string {
	switch {
	case p.Stock > 10:
		return "in stock"
	case p.Stock > 0:
		return fmt.Sprintf("only %d left", p.Stock)
	default:
		return "out of stock"
	}
}

// CartLine is one product's accumulated quantity inside a cart. Product is a
// snapshot taken when the line was last mutated.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Category struct {
	Slug          string `json:"slug" yaml:"slug"`
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description" yaml:"description"`
	ProductsCount int    `json:"products_count" yaml:"-"`
}
