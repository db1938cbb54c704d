package catalog

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

type SortField string

const (
	SortByName     SortField = "name"
	SortByCategory SortField = "category"
	SortByPrice    SortField = "price"
	SortByStock    SortField = "stock"
)

func ParseSortField(s string) (SortField, error) {
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case SortByName, SortByCategory, SortByPrice, SortByStock:
		return f, nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

func ParseSortDirection(s string) (SortDirection, error) {
	switch d := SortDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case Ascending, Descending:
		return d, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}

type SortState struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

func DefaultSortState() SortState {
	return SortState{Field: SortByName, Direction: Ascending}
}

// Select returns the state after the user picks field: the same field flips
// direction, a new field starts ascending.
func (s SortState) Select(field SortField) SortState {
	if s.Field == field {
		if s.Direction == Ascending {
			return SortState{Field: field, Direction: Descending}
		}
		return SortState{Field: field, Direction: Ascending}
	}
	return SortState{Field: field, Direction: Ascending}
}

// SortProducts returns a stably sorted copy of products.
func SortProducts(products []domain.Product, s SortState) []domain.Product {
	out := slices.Clone(products)
	compare := productComparator(s.Field)
	slices.SortStableFunc(out, func(a, b domain.Product) int {
		if s.Direction == Descending {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}

func productComparator(field SortField) func(a, b domain.Product) int {
	switch field {
	case SortByCategory:
		return func(a, b domain.Product) int { return strings.Compare(a.Category, b.Category) }
	case SortByPrice:
		return func(a, b domain.Product) int { return a.Price.Cmp(b.Price) }
	case SortByStock:
		return func(a, b domain.Product) int { return cmp.Compare(a.Stock, b.Stock) }
	default:
		return func(a, b domain.Product) int { return strings.Compare(a.Name, b.Name) }
	}
}
