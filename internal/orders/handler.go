package orders

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/ekla-marketplace/internal/api"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
	"github.com/joao-fontenele/ekla-marketplace/internal/session"
)

type Handler struct {
	repo   Repository
	logger *slog.Logger
}

func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// HandleGet shows one order to its buyer, to an artisan selling in it, or to
// an admin. Anyone else gets a not found.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := session.Authorize(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil || !canView(user, order) {
		h.writeFailure(w, r, &domain.NotFoundError{Kind: "order", ID: id})
		return
	}

	h.logger.Info("order retrieved", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, order)
}

func canView(user domain.User, order *domain.Order) bool {
	switch user.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleArtisan:
		return order.UserID == user.ID || order.HasArtisan(user.ID)
	case domain.RoleBuyer:
		return order.UserID == user.ID
	}
	return false
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// HandleUpdateStatus lets an admin move any order to any status.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateStatusRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		h.writeFailure(w, r, domain.NewValidationError("status", "unknown order status"))
		return
	}

	order, err := h.repo.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update order status", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeFailure(w, r, &domain.NotFoundError{Kind: "order", ID: id})
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, order)
}

// HandleList is the admin order table, filtered by search and status.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseManageFilter(r.URL.Query())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	orders, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	visible := filter.Apply(orders)
	h.logger.Info("orders listed", "count", len(visible))
	h.writeJSON(w, http.StatusOK, visible)
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
