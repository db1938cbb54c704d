package catalog

import (
	"slices"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

const relatedLimit = 4

// Catalog is the read-only product and artisan collection. Every accessor
// returns copies so callers cannot reach into the dataset.
type Catalog struct {
	products   []domain.Product
	artisans   []domain.Artisan
	categories []domain.Category
	users      []domain.User

	productIdx map[string]int
	artisanIdx map[string]int
}

func New(ds *Dataset) *Catalog {
	c := &Catalog{
		products:   slices.Clone(ds.Products),
		artisans:   slices.Clone(ds.Artisans),
		categories: slices.Clone(ds.Categories),
		users:      slices.Clone(ds.Users),
		productIdx: make(map[string]int, len(ds.Products)),
		artisanIdx: make(map[string]int, len(ds.Artisans)),
	}
	for i, p := range c.products {
		c.productIdx[p.ID] = i
	}
	for i, a := range c.artisans {
		c.artisanIdx[a.ID] = i
	}
	return c
}

func (c *Catalog) Products() []domain.Product {
	return slices.Clone(c.products)
}

func (c *Catalog) Product(id string) (domain.Product, error) {
	i, ok := c.productIdx[id]
	if !ok {
		return domain.Product{}, &domain.NotFoundError{Kind: "product", ID: id}
	}
	return c.products[i], nil
}

func (c *Catalog) Artisans() []domain.Artisan {
	return slices.Clone(c.artisans)
}

func (c *Catalog) Artisan(id string) (domain.Artisan, error) {
	i, ok := c.artisanIdx[id]
	if !ok {
		return domain.Artisan{}, &domain.NotFoundError{Kind: "artisan", ID: id}
	}
	return c.artisans[i], nil
}

// SeedUsers returns the non-artisan accounts shipped with the dataset.
func (c *Catalog) SeedUsers() []domain.User {
	return slices.Clone(c.users)
}

func (c *Catalog) ProductsByArtisan(artisanID string) []domain.Product {
	out := []domain.Product{}
	for _, p := range c.products {
		if p.ArtisanID == artisanID {
			out = append(out, p)
		}
	}
	return out
}

// RelatedProducts returns up to four other products from the same category.
func (c *Catalog) RelatedProducts(p domain.Product) []domain.Product {
	out := []domain.Product{}
	for _, other := range c.products {
		if len(out) == relatedLimit {
			break
		}
		if other.Category == p.Category && other.ID != p.ID {
			out = append(out, other)
		}
	}
	return out
}

// RelatedArtisans returns up to four other artisans sharing a specialty.
func (c *Catalog) RelatedArtisans(a domain.Artisan) []domain.Artisan {
	out := []domain.Artisan{}
	for _, other := range c.artisans {
		if len(out) == relatedLimit {
			break
		}
		if other.ID != a.ID && a.SharesSpecialty(other) {
			out = append(out, other)
		}
	}
	return out
}

// CategoryNames lists the distinct product categories in first-seen order.
func (c *Catalog) CategoryNames() []string {
	var names []string
	for _, p := range c.products {
		if !slices.Contains(names, p.Category) {
			names = append(names, p.Category)
		}
	}
	return names
}

// Categories returns the declared categories with product counts. Product
// categories missing from the declaration are appended with a derived label.
func (c *Catalog) Categories() []domain.Category {
	counts := make(map[string]int)
	for _, p := range c.products {
		counts[p.Category]++
	}

	out := make([]domain.Category, 0, len(c.categories))
	declared := make(map[string]bool, len(c.categories))
	for _, cat := range c.categories {
		cat.ProductsCount = counts[cat.Slug]
		declared[cat.Slug] = true
		out = append(out, cat)
	}

	for _, name := range c.CategoryNames() {
		if declared[name] {
			continue
		}
		out = append(out, domain.Category{
			Slug:          name,
			Name:          CategoryLabel(name),
			ProductsCount: counts[name],
		})
	}
	return out
}

// CategoryLabel turns a slug such as "home-decor" into "Home Decor".
func CategoryLabel(slug string) string {
	words := make([]rune, 0, len(slug))
	for _, r := range slug {
		if r == '-' || r == '_' {
			r = ' '
		}
		words = append(words, r)
	}
	return cases.Title(language.English).String(string(words))
}

// PriceBounds returns the cheapest and dearest product prices.
func (c *Catalog) PriceBounds() PriceRange {
	if len(c.products) == 0 {
		return PriceRange{Min: decimal.Zero, Max: decimal.Zero}
	}
	lo, hi := c.products[0].Price, c.products[0].Price
	for _, p := range c.products[1:] {
		lo = decimal.Min(lo, p.Price)
		hi = decimal.Max(hi, p.Price)
	}
	return PriceRange{Min: lo, Max: hi}
}

// Featured returns the first n products and artisans for the home page.
func (c *Catalog) Featured(n int) ([]domain.Product, []domain.Artisan) {
	return slices.Clone(c.products[:min(n, len(c.products))]),
		slices.Clone(c.artisans[:min(n, len(c.artisans))])
}
