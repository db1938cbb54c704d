package admin

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/ekla-marketplace/internal/api"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
	"github.com/joao-fontenele/ekla-marketplace/internal/orders"
	"github.com/joao-fontenele/ekla-marketplace/internal/session"
)

// ProductCounter reports how many products the catalog holds.
type ProductCounter interface {
	Products() []domain.Product
}

type Handler struct {
	directory  session.Directory
	orders     orders.Repository
	products   ProductCounter
	categories *CategoryRegistry
	logger     *slog.Logger
}

func NewHandler(directory session.Directory, repo orders.Repository, products ProductCounter, categories *CategoryRegistry, logger *slog.Logger) *Handler {
	return &Handler{
		directory:  directory,
		orders:     repo,
		products:   products,
		categories: categories,
		logger:     logger,
	}
}

func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Authorize(r.Context(), domain.RoleAdmin); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	users, err := h.directory.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	all, err := h.orders.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, BuildOverview(users, all, len(h.products.Products()), h.categories.Len()))
}

func (h *Handler) HandleUsers(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Authorize(r.Context(), domain.RoleAdmin); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	filter, err := ParseUserFilter(r.URL.Query())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	users, err := h.directory.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, filter.Apply(users))
}

func (h *Handler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Authorize(r.Context(), domain.RoleAdmin); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.categories.List(r.URL.Query().Get("search")))
}

func (h *Handler) HandleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Authorize(r.Context(), domain.RoleAdmin); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	var in CategoryInput
	if err := api.DecodeJSON(r, &in); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.categories.Create(in)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	h.logger.Info("category created", "slug", c.Slug)
	h.writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) HandleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Authorize(r.Context(), domain.RoleAdmin); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	var in CategoryInput
	if err := api.DecodeJSON(r, &in); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.categories.Update(r.PathValue("slug"), in)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	h.logger.Info("category updated", "slug", c.Slug)
	h.writeJSON(w, http.StatusOK, c)
}

func (h *Handler) HandleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if _, err := session.Authorize(r.Context(), domain.RoleAdmin); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	slug := r.PathValue("slug")
	if err := h.categories.Delete(slug); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	h.logger.Info("category deleted", "slug", slug)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	api.WriteJSON(w, h.logger, status, data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	api.WriteError(w, h.logger, status, message)
}

func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	api.WriteFailure(w, r, h.logger, err)
}
