package admin

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
	"github.com/joao-fontenele/ekla-marketplace/internal/orders"
	"github.com/joao-fontenele/ekla-marketplace/internal/session"
)

type stubProducts []domain.Product

func (s stubProducts) Products() []domain.Product { return s }

var (
	admin = &domain.User{ID: "u-admin", Name: "Admin User", Email: "admin@ekla.com", Role: domain.RoleAdmin}
	buyer = &domain.User{ID: "u-john", Name: "John Doe", Email: "john@example.com", Role: domain.RoleBuyer}
)

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

func newTestHandler() *Handler {
	return NewHandler(
		session.NewMemoryDirectory(*admin, *buyer),
		orders.NewMemoryRepository(),
		stubProducts{{ID: "p1"}, {ID: "p2"}},
		NewCategoryRegistry(seedCategories()),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestHandler_RequiresAdmin(t *testing.T) {
	h := newTestHandler()

	routes := []struct {
		name    string
		handler http.HandlerFunc
		method  string
		target  string
	}{
		{"overview", h.HandleOverview, http.MethodGet, "/api/admin/overview"},
		{"users", h.HandleUsers, http.MethodGet, "/api/admin/users"},
		{"categories", h.HandleListCategories, http.MethodGet, "/api/admin/categories"},
		{"delete category", h.HandleDeleteCategory, http.MethodDelete, "/api/admin/categories/art"},
	}

	for _, rt := range routes {
		t.Run(rt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rt.handler(rec, requestAs(t, buyer, rt.method, rt.target, ""))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", rec.Code)
			}
		})
	}
}

func TestHandler_HandleOverview(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.HandleOverview(rec, requestAs(t, admin, http.MethodGet, "/api/admin/overview", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var ov Overview
	if err := json.NewDecoder(rec.Body).Decode(&ov); err != nil {
		t.Fatalf("failed to decode overview: %v", err)
	}
	if ov.Users != 2 || ov.Products != 2 || ov.Categories != 2 || ov.Orders != 0 {
		t.Errorf("unexpected overview: %+v", ov)
	}
}

func TestHandler_Categories(t *testing.T) {
	h := newTestHandler()

	t.Run("create", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleCreateCategory(rec, requestAs(t, admin, http.MethodPost, "/api/admin/categories", `{"name":"Wall Art","description":"Paintings"}`))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"slug":"wall-art"`) {
			t.Errorf("expected derived slug, got %s", rec.Body.String())
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleCreateCategory(rec, requestAs(t, admin, http.MethodPost, "/api/admin/categories", `{"name":"wall art"}`))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("update", func(t *testing.T) {
		req := requestAs(t, admin, http.MethodPut, "/api/admin/categories/jewelry", `{"name":"Fine Jewelry"}`)
		req.SetPathValue("slug", "jewelry")
		rec := httptest.NewRecorder()
		h.HandleUpdateCategory(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req := requestAs(t, admin, http.MethodDelete, "/api/admin/categories/wall-art", "")
		req.SetPathValue("slug", "wall-art")
		rec := httptest.NewRecorder()
		h.HandleDeleteCategory(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status 204, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		h.HandleDeleteCategory(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404 on second delete, got %d", rec.Code)
		}
	})

	t.Run("search", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.HandleListCategories(rec, requestAs(t, admin, http.MethodGet, "/api/admin/categories?search=fine", ""))

		var got []domain.Category
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode categories: %v", err)
		}
		if len(got) != 1 || got[0].Slug != "jewelry" {
			t.Errorf("expected only jewelry, got %+v", got)
		}
	})
}

func TestHandler_HandleUsers(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.HandleUsers(rec, requestAs(t, admin, http.MethodGet, "/api/admin/users?role=buyer", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var got []domain.User
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode users: %v", err)
	}
	if len(got) != 1 || got[0].ID != "u-john" {
		t.Errorf("expected only u-john, got %+v", got)
	}
}
