// Package storefront assembles the marketplace HTTP API.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joao-fontenele/ekla-marketplace/internal/admin"
	"github.com/joao-fontenele/ekla-marketplace/internal/cart"
	"github.com/joao-fontenele/ekla-marketplace/internal/catalog"
	"github.com/joao-fontenele/ekla-marketplace/internal/checkout"
	"github.com/joao-fontenele/ekla-marketplace/internal/dashboard"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
	"github.com/joao-fontenele/ekla-marketplace/internal/messaging"
	"github.com/joao-fontenele/ekla-marketplace/internal/orders"
	"github.com/joao-fontenele/ekla-marketplace/internal/session"
	"github.com/joao-fontenele/ekla-marketplace/internal/telemetry"
)

// App holds the wired handlers and the backing-service handles to release
// on shutdown.
type App struct {
	Handlers Handlers
	Sessions *session.Manager
	Carts    *cart.Registry

	closers []func() error
}

// New wires the storefront from cfg. metrics may be nil.
func New(ctx context.Context, cfg Config, metrics *telemetry.ShopMetrics, logger *slog.Logger) (*App, error) {
	app := &App{}

	ds, err := catalog.LoadDatasetFile(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	cat := catalog.New(ds)
	loader := catalog.NewLoader(cat, cfg.CatalogLatency)

	records, directory, err := app.sessionBackends(ctx, cfg, seedUsers(cat))
	if err != nil {
		app.Close()
		return nil, err
	}

	repo, err := app.orderRepository(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}

	var publisher checkout.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, messaging.TopicOrderPlaced)
		app.closers = append(app.closers, producer.Close)
		publisher = producer
	}

	app.Sessions = session.NewManager(records, directory, logger)
	app.Carts = cart.NewRegistry(func(key string, snap cart.Snapshot) {
		logger.Debug("cart changed", "lines", snap.LineCount, "version", snap.Version)
	}, cart.WithIdleTimeout(cfg.CartIdle))

	var mutations cart.MutationRecorder
	var orderMetrics checkout.OrderRecorder
	if metrics != nil {
		mutations, orderMetrics = metrics, metrics
	}

	checkoutService := checkout.NewService(repo, publisher, orderMetrics, logger)
	app.Handlers = Handlers{
		Catalog: catalog.NewHandler(loader, logger),
		Session: session.NewHandler(logger, func(_ context.Context, key string) {
			app.Carts.Drop(key)
		}),
		Cart:      cart.NewHandler(app.Carts, cat, mutations, logger),
		Checkout:  checkout.NewHandler(checkoutService, app.Carts, logger),
		Orders:    orders.NewHandler(repo, logger),
		Dashboard: dashboard.NewHandler(repo, cat, logger),
		Admin:     admin.NewHandler(directory, repo, cat, admin.NewCategoryRegistry(cat.Categories()), logger),
	}

	logger.Info("storefront wired",
		"products", len(cat.Products()),
		"redis", cfg.RedisURL != "",
		"postgres", cfg.PostgresURL != "",
		"kafka", len(cfg.KafkaBrokers) > 0,
	)
	return app, nil
}

func (a *App) sessionBackends(ctx context.Context, cfg Config, seed []domain.User) (session.Records, session.Directory, error) {
	if cfg.RedisURL == "" {
		return session.NewMemoryRecords(), session.NewMemoryDirectory(seed...), nil
	}

	client, err := session.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	a.closers = append(a.closers, client.Close)

	directory := session.NewRedisDirectory(client)
	if err := directory.Seed(ctx, seed...); err != nil {
		return nil, nil, fmt.Errorf("seed user directory: %w", err)
	}
	return session.NewRedisRecords(client, cfg.SessionTTL), directory, nil
}

func (a *App) orderRepository(ctx context.Context, cfg Config) (orders.Repository, error) {
	if cfg.PostgresURL == "" {
		return orders.NewMemoryRepository(), nil
	}

	db, err := telemetry.OpenDB(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	return orders.NewPostgresRepository(db), nil
}

// seedUsers is every account the dataset ships with, artisans included.
func seedUsers(cat *catalog.Catalog) []domain.User {
	users := cat.SeedUsers()
	for _, a := range cat.Artisans() {
		users = append(users, a.User)
	}
	return users
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
