//go:build integration

package test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/ekla-marketplace/internal/cart"
	"github.com/joao-fontenele/ekla-marketplace/internal/checkout"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
	"github.com/joao-fontenele/ekla-marketplace/internal/email"
	"github.com/joao-fontenele/ekla-marketplace/internal/messaging"
	"github.com/joao-fontenele/ekla-marketplace/internal/orders"
	"github.com/joao-fontenele/ekla-marketplace/internal/worker"
)

func TestKafkaConnection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	brokers, cleanup := SetupKafka(ctx, t)
	defer cleanup()

	if len(brokers) == 0 {
		t.Fatal("expected at least one broker")
	}

	t.Logf("kafka brokers: %v", brokers)
}

func newOrder(number, userID string, createdAt time.Time, lines ...domain.OrderLine) *domain.Order {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal())
	}
	return &domain.Order{
		Number:        number,
		UserID:        userID,
		CustomerName:  "John Doe",
		CustomerEmail: "john@example.com",
		Lines:         lines,
		Status:        domain.OrderStatusPending,
		Subtotal:      subtotal,
		Shipping:      decimal.Zero,
		Tax:           decimal.Zero,
		Total:         subtotal,
		ShippingAddress: domain.Address{
			Street:  "1 Market St",
			City:    "Accra",
			State:   "Greater Accra",
			ZipCode: "00233",
			Country: "Ghana",
		},
		CreatedAt: createdAt,
	}
}

func TestPostgresOrderRepository(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	repo := orders.NewPostgresRepository(OpenDB(ctx, t, pg.ConnStr))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := newOrder("EK-1001", "u-john", base,
		domain.OrderLine{ProductID: "p1", Name: "Kente Scarf", ArtisanID: "a1", Quantity: 2, Price: decimal.RequireFromString("79.99")},
		domain.OrderLine{ProductID: "p3", Name: "Clay Pot", ArtisanID: "a2", Quantity: 1, Price: decimal.RequireFromString("45.00")},
	)
	second := newOrder("EK-1002", "u-jane", base.Add(time.Hour),
		domain.OrderLine{ProductID: "p5", Name: "Woven Basket", ArtisanID: "a2", Quantity: 3, Price: decimal.RequireFromString("12.50")},
	)

	for _, o := range []*domain.Order{first, second} {
		if err := repo.Create(ctx, o); err != nil {
			t.Fatalf("failed to create order %s: %v", o.Number, err)
		}
		if o.ID == "" {
			t.Fatalf("expected order %s to be assigned an id", o.Number)
		}
	}

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, first.ID)
		if err != nil {
			t.Fatalf("failed to get order: %v", err)
		}
		if got == nil {
			t.Fatal("expected order, got nil")
		}
		if got.Number != "EK-1001" || got.UserID != "u-john" {
			t.Fatalf("unexpected order: %+v", got)
		}
		if len(got.Lines) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(got.Lines))
		}
		if got.Lines[0].ProductID != "p1" || got.Lines[1].ProductID != "p3" {
			t.Fatalf("expected lines in insertion order, got %+v", got.Lines)
		}
		if !got.Total.Equal(decimal.RequireFromString("204.98")) {
			t.Fatalf("expected total 204.98, got %s", got.Total)
		}
		if got.ShippingAddress.City != "Accra" {
			t.Fatalf("expected city Accra, got %s", got.ShippingAddress.City)
		}
	})

	t.Run("get unknown id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, "missing")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Fatalf("expected nil order, got %+v", got)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		all, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("failed to list orders: %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(all))
		}
		if all[0].Number != "EK-1002" {
			t.Fatalf("expected newest order first, got %s", all[0].Number)
		}
	})

	t.Run("list by user", func(t *testing.T) {
		mine, err := repo.ListByUser(ctx, "u-john")
		if err != nil {
			t.Fatalf("failed to list orders: %v", err)
		}
		if len(mine) != 1 || mine[0].ID != first.ID {
			t.Fatalf("expected only the first order, got %+v", mine)
		}
	})

	t.Run("list by artisan", func(t *testing.T) {
		a1, err := repo.ListByArtisan(ctx, "a1")
		if err != nil {
			t.Fatalf("failed to list orders: %v", err)
		}
		if len(a1) != 1 {
			t.Fatalf("expected 1 order for a1, got %d", len(a1))
		}

		a2, err := repo.ListByArtisan(ctx, "a2")
		if err != nil {
			t.Fatalf("failed to list orders: %v", err)
		}
		if len(a2) != 2 {
			t.Fatalf("expected 2 orders for a2, got %d", len(a2))
		}
		if len(a2[1].Lines) != 2 {
			t.Fatalf("expected full order lines, got %+v", a2[1].Lines)
		}
	})

	t.Run("update status", func(t *testing.T) {
		updated, err := repo.UpdateStatus(ctx, second.ID, domain.OrderStatusShipped)
		if err != nil {
			t.Fatalf("failed to update status: %v", err)
		}
		if updated == nil || updated.Status != domain.OrderStatusShipped {
			t.Fatalf("expected shipped order, got %+v", updated)
		}

		missing, err := repo.UpdateStatus(ctx, "missing", domain.OrderStatusShipped)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if missing != nil {
			t.Fatalf("expected nil for unknown order, got %+v", missing)
		}
	})

	t.Run("transition only from the expected status", func(t *testing.T) {
		skipped, err := repo.TransitionStatus(ctx, second.ID, domain.OrderStatusPending, domain.OrderStatusProcessing)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if skipped != nil {
			t.Fatalf("expected shipped order to be left alone, got %+v", skipped)
		}

		moved, err := repo.TransitionStatus(ctx, first.ID, domain.OrderStatusPending, domain.OrderStatusProcessing)
		if err != nil {
			t.Fatalf("failed to transition status: %v", err)
		}
		if moved == nil || moved.Status != domain.OrderStatusProcessing {
			t.Fatalf("expected processing order, got %+v", moved)
		}
	})
}

type emailCapture struct {
	mu       sync.Mutex
	messages []string
	next     http.Handler
}

func (e *emailCapture) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	e.mu.Lock()
	e.messages = append(e.messages, string(body))
	e.mu.Unlock()

	r.Body = io.NopCloser(strings.NewReader(string(body)))
	e.next.ServeHTTP(w, r)
}

func (e *emailCapture) sent() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	result := make([]string, len(e.messages))
	copy(result, e.messages)
	return result
}

func TestCheckoutFlowAdvancesOrderToProcessing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	pg := SetupPostgres(ctx, t)
	defer pg.Cleanup()

	brokers, cleanupKafka := SetupKafka(ctx, t)
	defer cleanupKafka()

	CreateTopic(t, brokers, messaging.TopicOrderPlaced)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := orders.NewPostgresRepository(OpenDB(ctx, t, pg.ConnStr))

	capture := &emailCapture{next: http.HandlerFunc(email.NewHandler(logger).HandleSend)}
	emailMux := http.NewServeMux()
	emailMux.Handle("POST /send", capture)
	emailServer := httptest.NewServer(emailMux)
	defer emailServer.Close()

	producer := messaging.NewProducer(brokers, messaging.TopicOrderPlaced)
	defer func() { _ = producer.Close() }()

	service := checkout.NewService(repo, producer, nil, logger)

	store := cart.NewStore()
	store.AddItem(domain.Product{
		ID:        "p1",
		Name:      "Kente Scarf",
		Price:     decimal.RequireFromString("79.99"),
		Stock:     12,
		Images:    []string{"/img/p1.jpg"},
		ArtisanID: "a1",
	}, 1)

	user := &domain.User{ID: "u-john", Name: "John Doe", Email: "john@example.com", Role: domain.RoleBuyer}
	form := checkout.PrefillForm(*user)
	form.Address = "1 Market St"
	form.City = "Accra"
	form.State = "Greater Accra"
	form.ZipCode = "00233"
	form.Country = "Ghana"
	form.PaymentMethod = checkout.PaymentPayPal

	order, err := service.PlaceOrder(ctx, user, store, form)
	if err != nil {
		t.Fatalf("failed to place order: %v", err)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("expected pending order, got %s", order.Status)
	}
	if !store.Snapshot().Empty() {
		t.Fatal("expected cart to be cleared after checkout")
	}

	consumer := messaging.NewConsumer(brokers, messaging.TopicOrderPlaced, messaging.GroupOrderNotifier, logger,
		messaging.WithStartOffset(kafkago.FirstOffset))
	defer func() { _ = consumer.Close() }()

	notifier := worker.NewNotificationHandler(
		email.NewClient(emailServer.URL, &http.Client{Timeout: 10 * time.Second}),
		repo,
		logger,
	)

	consumeCtx, stopConsumer := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- consumer.Consume(consumeCtx, notifier.Handle) }()
	defer func() {
		stopConsumer()
		<-done
	}()

	deadline := time.Now().Add(90 * time.Second)
	for {
		current, err := repo.GetByID(ctx, order.ID)
		if err != nil {
			t.Fatalf("failed to get order: %v", err)
		}
		if current != nil && current.Status == domain.OrderStatusProcessing {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("order %s never reached processing", order.ID)
		}
		time.Sleep(500 * time.Millisecond)
	}

	sent := capture.sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sent))
	}
	if !strings.Contains(sent[0], "Order Confirmation: "+order.Number) {
		t.Fatalf("expected confirmation subject for %s, got %s", order.Number, sent[0])
	}
	if !strings.Contains(sent[0], "john@example.com") {
		t.Fatalf("expected email addressed to the customer, got %s", sent[0])
	}
}
