package dashboard

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
	"github.com/joao-fontenele/ekla-marketplace/internal/orders"
	"github.com/joao-fontenele/ekla-marketplace/internal/session"
)

type stubProducts map[string][]domain.Product

func (s stubProducts) ProductsByArtisan(artisanID string) []domain.Product {
	return s[artisanID]
}

func requestAs(t *testing.T, user *domain.User, method, target, body string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)

	records := session.NewMemoryRecords()
	if user != nil {
		if err := records.Save(context.Background(), "k", *user); err != nil {
			t.Fatalf("failed to save session: %v", err)
		}
	}
	store := session.NewStore("k", records, session.NewMemoryDirectory())
	if err := store.Rehydrate(context.Background()); err != nil {
		t.Fatalf("failed to rehydrate: %v", err)
	}
	return req.WithContext(session.WithStore(req.Context(), store))
}

var (
	seller = &domain.User{ID: "a1", Name: "Ama", Role: domain.RoleArtisan}
	buyer  = &domain.User{ID: "u1", Name: "John", Role: domain.RoleBuyer}
)

func newTestHandler(t *testing.T) (*Handler, orders.Repository) {
	t.Helper()
	repo := orders.NewMemoryRepository()
	now := time.Now()
	seed := []domain.Order{
		order("o1", "u1", domain.OrderStatusPending, now, line("p1", "a1", "10.00", 1)),
		order("o2", "u2", domain.OrderStatusDelivered, now.Add(time.Minute), line("p9", "a2", "99.00", 1)),
	}
	for i := range seed {
		if err := repo.Create(context.Background(), &seed[i]); err != nil {
			t.Fatalf("failed to seed order: %v", err)
		}
	}

	products := stubProducts{"a1": {
		{ID: "p1", Name: "Woven Basket", Category: "home-decor", Price: decimal.RequireFromString("45.99"), Stock: 3},
		{ID: "p2", Name: "Clay Pot", Category: "home-decor", Price: decimal.RequireFromString("12.00"), Stock: 9},
		{ID: "p3", Name: "Bead Necklace", Category: "jewelry", Price: decimal.RequireFromString("30.00"), Stock: 0},
	}}
	return NewHandler(repo, products, slog.New(slog.NewTextHandler(io.Discard, nil))), repo
}

func TestHandler_HandleOverview(t *testing.T) {
	h, _ := newTestHandler(t)

	t.Run("seller", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleOverview(rec, requestAs(t, seller, http.MethodGet, "/api/dashboard", ""))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var ov Overview
		if err := json.NewDecoder(rec.Body).Decode(&ov); err != nil {
			t.Fatalf("failed to decode overview: %v", err)
		}
		if ov.Orders != 1 || ov.Products != 3 || ov.Revenue.StringFixed(2) != "10.00" {
			t.Errorf("unexpected overview: %+v", ov)
		}
	})

	t.Run("buyer is refused", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleOverview(rec, requestAs(t, buyer, http.MethodGet, "/api/dashboard", ""))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleProducts(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name    string
		query   string
		status  int
		wantIDs []string
	}{
		{"default name ascending", "", http.StatusOK, []string{"p3", "p2", "p1"}},
		{"price descending", "?sort=price&dir=desc", http.StatusOK, []string{"p1", "p3", "p2"}},
		{"select toggles current field", "?sort=stock&dir=asc&select=stock", http.StatusOK, []string{"p2", "p1", "p3"}},
		{"search by category", "?search=JEWEL", http.StatusOK, []string{"p3"}},
		{"bad sort field", "?sort=rating", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleProducts(rec, requestAs(t, seller, http.MethodGet, "/api/dashboard/products"+tt.query, ""))

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}

			var resp productsResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			var got []string
			for _, p := range resp.Products {
				got = append(got, p.ID)
			}
			if strings.Join(got, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("expected %v, got %v", tt.wantIDs, got)
			}
		})
	}
}

func TestHandler_HandleUpdateStatus(t *testing.T) {
	h, repo := newTestHandler(t)

	t.Run("own order", func(t *testing.T) {
		req := requestAs(t, seller, http.MethodPatch, "/api/dashboard/orders/o1/status", `{"status":"shipped"}`)
		req.SetPathValue("id", "o1")
		rec := httptest.NewRecorder()
		h.HandleUpdateStatus(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		o, err := repo.GetByID(context.Background(), "o1")
		if err != nil || o == nil || o.Status != domain.OrderStatusShipped {
			t.Fatalf("expected shipped order, got %+v (err %v)", o, err)
		}
	})

	t.Run("another seller's order", func(t *testing.T) {
		req := requestAs(t, seller, http.MethodPatch, "/api/dashboard/orders/o2/status", `{"status":"cancelled"}`)
		req.SetPathValue("id", "o2")
		rec := httptest.NewRecorder()
		h.HandleUpdateStatus(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		req := requestAs(t, seller, http.MethodPatch, "/api/dashboard/orders/o1/status", `{"status":"lost"}`)
		req.SetPathValue("id", "o1")
		rec := httptest.NewRecorder()
		h.HandleUpdateStatus(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleOrders(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandleOrders(rec, requestAs(t, seller, http.MethodGet, "/api/dashboard/orders?status=pending", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var got []domain.Order
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode orders: %v", err)
	}
	if len(got) != 1 || got[0].ID != "o1" {
		t.Errorf("expected only o1, got %+v", got)
	}
}

func TestHandler_HandleProfile(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.HandleProfile(rec, requestAs(t, buyer, http.MethodGet, "/api/profile", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode profile: %v", err)
	}
	if resp.User.ID != "u1" || len(resp.Orders) != 1 || resp.Orders[0].ID != "o1" {
		t.Errorf("unexpected profile: %+v", resp)
	}

	rec = httptest.NewRecorder()
	h.HandleProfile(rec, requestAs(t, nil, http.MethodGet, "/api/profile", ""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for anonymous, got %d", rec.Code)
	}
}
