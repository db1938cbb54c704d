package catalog

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// DefaultPriceRange is the price filter a product list starts with.
var DefaultPriceRange = PriceRange{Min: decimal.Zero, Max: decimal.NewFromInt(1000)}

func (r PriceRange) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(r.Min) && price.LessThanOrEqual(r.Max)
}

type ProductFilter struct {
	Query      string
	Categories []string
	Price      PriceRange
	InStock    bool
}

func DefaultProductFilter() ProductFilter {
	return ProductFilter{Price: DefaultPriceRange}
}

// FilterProducts keeps the products passing every active predicate, in input
// order. Predicates run as text search, category, price, then stock.
func FilterProducts(products []domain.Product, f ProductFilter) []domain.Product {
	m := newMatcher(f.Query)
	out := []domain.Product{}
	for _, p := range products {
		if !m.empty() && !m.any(p.Name, p.Description, p.ArtisanName) {
			continue
		}
		if len(f.Categories) > 0 && !slices.Contains(f.Categories, p.Category) {
			continue
		}
		if !f.Price.Contains(p.Price) {
			continue
		}
		if f.InStock && !p.InStock() {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Active reports whether the filter narrows the list. The price range counts
// only when it cuts inside bounds.
func (f ProductFilter) Active(bounds PriceRange) bool {
	return strings.TrimSpace(f.Query) != "" ||
		len(f.Categories) > 0 ||
		f.Price.Min.GreaterThan(bounds.Min) ||
		f.Price.Max.LessThan(bounds.Max) ||
		f.InStock
}

// ToggleCategory adds category to the selection, or removes it when already
// selected.
func (f ProductFilter) ToggleCategory(category string) ProductFilter {
	out := f
	if i := slices.Index(f.Categories, category); i >= 0 {
		out.Categories = slices.Delete(slices.Clone(f.Categories), i, i+1)
		return out
	}
	out.Categories = append(slices.Clone(f.Categories), category)
	return out
}

// FilterFromQuery seeds a filter from list-view query parameters: search,
// category (repeatable), min_price, max_price and in_stock. Absent prices fall
// back to bounds.
func FilterFromQuery(q url.Values, bounds PriceRange) (ProductFilter, error) {
	f := ProductFilter{
		Query: q.Get("search"),
		Price: bounds,
	}
	verr := &domain.ValidationError{}

	for _, c := range q["category"] {
		if c = strings.TrimSpace(c); c != "" && !slices.Contains(f.Categories, c) {
			f.Categories = append(f.Categories, c)
		}
	}

	if raw := q.Get("min_price"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			verr.Add("min_price", "must be a non-negative number")
		} else {
			f.Price.Min = d
		}
	}
	if raw := q.Get("max_price"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil || d.IsNegative() {
			verr.Add("max_price", "must be a non-negative number")
		} else {
			f.Price.Max = d
		}
	}
	if raw := q.Get("in_stock"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			verr.Add("in_stock", "must be true or false")
		}
		f.InStock = b
	}

	if err := verr.Err(); err != nil {
		return ProductFilter{}, err
	}
	return f, nil
}

// SearchArtisans keeps the artisans whose name, bio, location or any
// specialty contains query. An empty query keeps everything.
func SearchArtisans(artisans []domain.Artisan, query string) []domain.Artisan {
	m := newMatcher(query)
	out := []domain.Artisan{}
	for _, a := range artisans {
		if m.empty() || m.any(a.Name, a.Bio, a.Location) || m.any(a.Specialties...) {
			out = append(out, a)
		}
	}
	return out
}

// SearchManaged is the seller product-management search over name,
// description and category.
func SearchManaged(products []domain.Product, query string) []domain.Product {
	m := newMatcher(query)
	out := []domain.Product{}
	for _, p := range products {
		if m.empty() || m.any(p.Name, p.Description, p.Category) {
			out = append(out, p)
		}
	}
	return out
}

// matcher does case-insensitive substring matching. A Caser keeps state, so
// one is built per search.
type matcher struct {
	fold  cases.Caser
	query string
}

func newMatcher(query string) *matcher {
	fold := cases.Fold()
	return &matcher{fold: fold, query: fold.String(strings.TrimSpace(query))}
}

func (m *matcher) empty() bool {
	return m.query == ""
}

func (m *matcher) contains(s string) bool {
	return strings.Contains(m.fold.String(s), m.query)
}

func (m *matcher) any(fields ...string) bool {
	for _, s := range fields {
		if m.contains(s) {
			return true
		}
	}
	return false
}
