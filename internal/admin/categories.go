// Package admin serves the marketplace administration views.
package admin

import (
	"slices"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

// CategoryRegistry is the admin-managed category list. Product counts are
// taken from the seed and never recomputed.
type CategoryRegistry struct {
	mu    sync.RWMutex
	items []domain.Category
}

func NewCategoryRegistry(seed []domain.Category) *CategoryRegistry {
	return &CategoryRegistry{items: slices.Clone(seed)}
}

// List returns categories whose name, slug or description contains query.
func (r *CategoryRegistry) List(query string) []domain.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))

	out := []domain.Category{}
	for _, c := range r.items {
		if q == "" ||
			strings.Contains(fold.String(c.Name), q) ||
			strings.Contains(fold.String(c.Slug), q) ||
			strings.Contains(fold.String(c.Description), q) {
			out = append(out, c)
		}
	}
	return out
}

func (r *CategoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (in CategoryInput) validate() error {
	v := &domain.ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		v.Add("name", "name is required")
	} else if Slugify(in.Name) == "" {
		v.Add("name", "name must contain letters or digits")
	}
	return v.Err()
}

// Create adds a category under the slug derived from its name.
func (r *CategoryRegistry) Create(in CategoryInput) (domain.Category, error) {
	if err := in.validate(); err != nil {
		return domain.Category{}, err
	}

	c := domain.Category{
		Slug:        Slugify(in.Name),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index(c.Slug) >= 0 {
		return domain.Category{}, domain.NewValidationError("name", "a category with this slug already exists")
	}
	r.items = append(r.items, c)
	return c, nil
}

// Update renames or redescribes a category. The slug never changes.
func (r *CategoryRegistry) Update(slug string, in CategoryInput) (domain.Category, error) {
	if err := in.validate(); err != nil {
		return domain.Category{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(slug)
	if i < 0 {
		return domain.Category{}, &domain.NotFoundError{Kind: "category", ID: slug}
	}
	r.items[i].Name = strings.TrimSpace(in.Name)
	r.items[i].Description = strings.TrimSpace(in.Description)
	return r.items[i], nil
}

func (r *CategoryRegistry) Delete(slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(slug)
	if i < 0 {
		return &domain.NotFoundError{Kind: "category", ID: slug}
	}
	r.items = slices.Delete(r.items, i, i+1)
	return nil
}

func (r *CategoryRegistry) index(slug string) int {
	return slices.IndexFunc(r.items, func(c domain.Category) bool { return c.Slug == slug })
}

// Slugify lowercases name and joins its runs of letters and digits with
// hyphens: "Home & Decor" becomes "home-decor".
func Slugify(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
