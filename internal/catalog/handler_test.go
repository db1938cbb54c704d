package catalog

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestHandler(t *testing.T, latency time.Duration) *Handler {
	t.Helper()
	return NewHandler(NewLoader(newTestCatalog(t), latency), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandler_HandleListProducts(t *testing.T) {
	h := newTestHandler(t, 0)

	t.Run("search seeds filter from query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products?search=basket", nil)
		rec := httptest.NewRecorder()

		h.HandleListProducts(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var resp struct {
			Title    string `json:"title"`
			Total    int    `json:"total"`
			Products []struct {
				ID string `json:"id"`
			} `json:"products"`
			FiltersActive bool `json:"filters_active"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Total != 1 || resp.Products[0].ID != "p1" {
			t.Errorf("expected only p1, got %+v", resp.Products)
		}
		if resp.Title != `Search Results for "basket"` {
			t.Errorf("unexpected title %q", resp.Title)
		}
		if !resp.FiltersActive {
			t.Error("expected filters to be active")
		}
	})

	t.Run("price bounds follow the catalog", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		rec := httptest.NewRecorder()

		h.HandleListProducts(rec, req)

		var resp struct {
			PriceBounds struct {
				Min string `json:"min"`
				Max string `json:"max"`
			} `json:"price_bounds"`
			FiltersActive bool `json:"filters_active"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.PriceBounds.Min != "15" || resp.PriceBounds.Max != "240" {
			t.Errorf("expected bounds 15..240, got %+v", resp.PriceBounds)
		}
		if resp.FiltersActive {
			t.Error("expected no active filters")
		}
	})

	t.Run("category title", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products?category=home-decor", nil)
		rec := httptest.NewRecorder()

		h.HandleListProducts(rec, req)

		var resp struct {
			Title string `json:"title"`
			Total int    `json:"total"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Title != "Home Decor Products" || resp.Total != 4 {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("returns 400 for malformed price", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products?max_price=lots", nil)
		rec := httptest.NewRecorder()

		h.HandleListProducts(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleGetProduct(t *testing.T) {
	h := newTestHandler(t, 0)

	t.Run("returns product with related items", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products/p5", nil)
		req.SetPathValue("id", "p5")
		rec := httptest.NewRecorder()

		h.HandleGetProduct(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var resp struct {
			StockLabel string `json:"stock_label"`
			Related    []struct {
				ID string `json:"id"`
			} `json:"related"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.StockLabel != "in stock" {
			t.Errorf("unexpected stock label %q", resp.StockLabel)
		}
		if len(resp.Related) != 2 {
			t.Errorf("expected 2 related products, got %d", len(resp.Related))
		}
	})

	t.Run("returns 404 with recovery link", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products/nope", nil)
		req.SetPathValue("id", "nope")
		rec := httptest.NewRecorder()

		h.HandleGetProduct(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["redirect"] != "/products" {
			t.Errorf("unexpected redirect %q", resp["redirect"])
		}
	})

	t.Run("returns 400 when id is missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products/", nil)
		rec := httptest.NewRecorder()

		h.HandleGetProduct(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleArtisans(t *testing.T) {
	h := newTestHandler(t, 0)

	t.Run("lists artisans matching search", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/artisans?search=senegal", nil)
		rec := httptest.NewRecorder()

		h.HandleListArtisans(rec, req)

		var resp []struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp) != 1 || resp[0].ID != "a3" {
			t.Errorf("expected only a3, got %+v", resp)
		}
	})

	t.Run("returns artisan with products", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/artisans/a4", nil)
		req.SetPathValue("id", "a4")
		rec := httptest.NewRecorder()

		h.HandleGetArtisan(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var resp struct {
			Artisan struct {
				Name string `json:"name"`
			} `json:"artisan"`
			Products []struct {
				ID string `json:"id"`
			} `json:"products"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Artisan.Name != "Ibrahim Traore" || len(resp.Products) != 2 {
			t.Errorf("unexpected response %+v", resp)
		}
	})
}

func TestHandler_CancelledRequestDoesNotWait(t *testing.T) {
	h := newTestHandler(t, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/artisans", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.HandleListArtisans(rec, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler kept waiting after the request was cancelled")
	}
}

func TestHandler_HandleHomeAndCategories(t *testing.T) {
	h := newTestHandler(t, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/home", nil)
	rec := httptest.NewRecorder()
	h.HandleHome(rec, req)

	var home struct {
		FeaturedProducts []json.RawMessage `json:"featured_products"`
		FeaturedArtisans []json.RawMessage `json:"featured_artisans"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&home); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(home.FeaturedProducts) != 4 || len(home.FeaturedArtisans) != 4 {
		t.Errorf("expected 4 featured products and artisans, got %d and %d", len(home.FeaturedProducts), len(home.FeaturedArtisans))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec = httptest.NewRecorder()
	h.HandleListCategories(rec, req)

	var cats []struct {
		Slug          string `json:"slug"`
		ProductsCount int    `json:"products_count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&cats); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(cats) != 4 {
		t.Errorf("expected 4 categories, got %d", len(cats))
	}
}
