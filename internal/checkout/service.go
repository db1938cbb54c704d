package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/ekla-marketplace/internal/cart"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
	"github.com/joao-fontenele/ekla-marketplace/internal/orders"
)

// Publisher announces placed orders. Leave it nil to skip publishing.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type OrderRecorder interface {
	RecordOrder(ctx context.Context, total decimal.Decimal)
}

type Service struct {
	repo      orders.Repository
	publisher Publisher
	metrics   OrderRecorder
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo orders.Repository, publisher Publisher, metrics OrderRecorder, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// PlaceOrder persists the cart as a pending order for user and empties the
// cart. The cart is left untouched when anything before persistence fails.
func (s *Service) PlaceOrder(ctx context.Context, user *domain.User, store *cart.Store, form Form) (*domain.Order, error) {
	if user == nil {
		return nil, &domain.AuthorizationError{}
	}

	snap := store.Snapshot()

	v := &domain.ValidationError{}
	if snap.Empty() {
		v.Add("cart", "your cart is empty")
	}
	form.validate(v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	summary := cart.Summarize(snap)
	now := s.now().UTC()

	order := &domain.Order{
		Number:          orders.NewOrderNumber(),
		UserID:          user.ID,
		CustomerName:    form.CustomerName(),
		CustomerEmail:   form.Email,
		Lines:           orderLines(snap),
		Status:          domain.OrderStatusPending,
		Subtotal:        summary.Subtotal,
		Shipping:        summary.Shipping,
		Tax:             summary.Tax,
		Total:           summary.Total,
		ShippingAddress: form.ShippingAddress(),
		CreatedAt:       now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.InfoContext(ctx, "order placed",
		"order_id", order.ID,
		"number", order.Number,
		"user_id", user.ID,
		"total", order.Total.StringFixed(2),
	)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, order.ID, domain.NewOrderPlacedEvent(order)); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish order placed event", "error", err, "order_id", order.ID)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordOrder(ctx, order.Total)
	}

	store.Clear()
	return order, nil
}

func orderLines(snap cart.Snapshot) []domain.OrderLine {
	lines := make([]domain.OrderLine, 0, len(snap.Lines))
	for _, l := range snap.Lines {
		lines = append(lines, domain.OrderLine{
			ProductID: l.ProductID,
			Name:      l.Product.Name,
			ArtisanID: l.Product.ArtisanID,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
		})
	}
	return lines
}
