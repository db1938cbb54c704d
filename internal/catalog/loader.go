package catalog

import (
	"time"

	"github.com/joao-fontenele/ekla-marketplace/internal/deferred"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

// Loader serves catalog reads after a fixed delay, standing in for the round
// trip to a catalog backend. Callers await the returned futures and abandon
// them when they stop caring about the result.
type Loader struct {
	catalog *Catalog
	latency time.Duration
}

func NewLoader(c *Catalog, latency time.Duration) *Loader {
	return &Loader{catalog: c, latency: latency}
}

func (l *Loader) Catalog() *Catalog {
	return l.catalog
}

func (l *Loader) Products() *deferred.Future[[]domain.Product] {
	return deferred.After(l.latency, func() ([]domain.Product, error) {
		return l.catalog.Products(), nil
	})
}

func (l *Loader) Product(id string) *deferred.Future[domain.Product] {
	return deferred.After(l.latency, func() (domain.Product, error) {
		return l.catalog.Product(id)
	})
}

func (l *Loader) Artisans() *deferred.Future[[]domain.Artisan] {
	return deferred.After(l.latency, func() ([]domain.Artisan, error) {
		return l.catalog.Artisans(), nil
	})
}

func (l *Loader) Artisan(id string) *deferred.Future[domain.Artisan] {
	return deferred.After(l.latency, func() (domain.Artisan, error) {
		return l.catalog.Artisan(id)
	})
}
