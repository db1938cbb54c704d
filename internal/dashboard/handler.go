package dashboard

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/joao-fontenele/ekla-marketplace/internal/api"
	"github.com/joao-fontenele/ekla-marketplace/internal/catalog"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
	"github.com/joao-fontenele/ekla-marketplace/internal/orders"
	"github.com/joao-fontenele/ekla-marketplace/internal/session"
)

// ProductSource lists the products a seller manages.
type ProductSource interface {
	ProductsByArtisan(artisanID string) []domain.Product
}

type Handler struct {
	orders   orders.Repository
	products ProductSource
	logger   *slog.Logger
}

func NewHandler(repo orders.Repository, products ProductSource, logger *slog.Logger) *Handler {
	return &Handler{
		orders:   repo,
		products: products,
		logger:   logger,
	}
}

func (h *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	user, err := session.Authorize(r.Context(), domain.RoleArtisan)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	sold, err := h.orders.ListByArtisan(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to list seller orders", "error", err, "artisan_id", user.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, BuildOverview(user.ID, sold, h.products.ProductsByArtisan(user.ID)))
}

type productsResponse struct {
	Products []domain.Product  `json:"products"`
	Total    int               `json:"total"`
	Sort     catalog.SortState `json:"sort"`
}

// HandleProducts is the seller inventory table. sort and dir set the current
// ordering; select applies a header click on top of it.
func (h *Handler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	user, err := session.Authorize(r.Context(), domain.RoleArtisan)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	state, err := sortFromQuery(r.URL.Query())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	products := catalog.SearchManaged(h.products.ProductsByArtisan(user.ID), r.URL.Query().Get("search"))
	products = catalog.SortProducts(products, state)

	h.writeJSON(w, http.StatusOK, productsResponse{
		Products: products,
		Total:    len(products),
		Sort:     state,
	})
}

func sortFromQuery(q url.Values) (catalog.SortState, error) {
	state := catalog.DefaultSortState()
	v := &domain.ValidationError{}

	if raw := q.Get("sort"); strings.TrimSpace(raw) != "" {
		field, err := catalog.ParseSortField(raw)
		if err != nil {
			v.Add("sort", "unknown sort field")
		}
		state.Field = field
	}
	if raw := q.Get("dir"); strings.TrimSpace(raw) != "" {
		dir, err := catalog.ParseSortDirection(raw)
		if err != nil {
			v.Add("dir", "unknown sort direction")
		}
		state.Direction = dir
	}
	if raw := q.Get("select"); strings.TrimSpace(raw) != "" {
		field, err := catalog.ParseSortField(raw)
		if err != nil {
			v.Add("select", "unknown sort field")
		}
		state = state.Select(field)
	}

	if err := v.Err(); err != nil {
		return catalog.SortState{}, err
	}
	return state, nil
}

func (h *Handler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	user, err := session.Authorize(r.Context(), domain.RoleArtisan)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	filter, err := orders.ParseManageFilter(r.URL.Query())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	sold, err := h.orders.ListByArtisan(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to list seller orders", "error", err, "artisan_id", user.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, filter.Apply(sold))
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// HandleUpdateStatus moves one of the seller's orders to any status. Orders
// without the seller's products are reported as missing.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, err := session.Authorize(r.Context(), domain.RoleArtisan)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	id := r.PathValue("id")
	var req updateStatusRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		h.writeFailure(w, r, domain.NewValidationError("status", "unknown order status"))
		return
	}

	order, err := h.orders.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if order == nil || !order.HasArtisan(user.ID) {
		h.writeFailure(w, r, &domain.NotFoundError{Kind: "order", ID: id})
		return
	}

	updated, err := h.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update order status", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if updated == nil {
		h.writeFailure(w, r, &domain.NotFoundError{Kind: "order", ID: id})
		return
	}

	h.logger.Info("order status updated", "order_id", id, "status", updated.Status, "artisan_id", user.ID)
	h.writeJSON(w, http.StatusOK, updated)
}

type profileResponse struct {
	User   domain.User    `json:"user"`
	Orders []domain.Order `json:"orders"`
}

// HandleProfile shows the signed-in user with their own orders, newest first.
func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := session.Authorize(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	placed, err := h.orders.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to list user orders", "error", err, "user_id", user.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, profileResponse{User: user, Orders: placed})
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
