package cart

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/ekla-marketplace/internal/api"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
	"github.com/joao-fontenele/ekla-marketplace/internal/session"
)

// ProductSource resolves product ids to the current catalog entry.
type ProductSource interface {
	Product(id string) (domain.Product, error)
}

// MutationRecorder counts cart operations by name.
type MutationRecorder interface {
	RecordCartMutation(ctx context.Context, op string)
}

type Handler struct {
	registry *Registry
	products ProductSource
	metrics  MutationRecorder
	logger   *slog.Logger
}

func NewHandler(registry *Registry, products ProductSource, metrics MutationRecorder, logger *slog.Logger) *Handler {
	return &Handler{
		registry: registry,
		products: products,
		metrics:  metrics,
		logger:   logger,
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, snap)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ProductID == "" {
		h.writeFailure(w, r, domain.NewValidationError("product_id", "product is required"))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		h.writeFailure(w, r, domain.NewValidationError("quantity", "quantity must be positive"))
		return
	}

	product, err := h.products.Product(req.ProductID)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	snap := store.AddItem(product, req.Quantity)
	h.record(r.Context(), "add")
	h.logger.Info("cart item added", "product_id", product.ID, "requested", req.Quantity, "lines", snap.LineCount)
	h.writeJSON(w, http.StatusOK, snap)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleSetQuantity(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req setQuantityRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, ok := store.Snapshot().Line(productID); !ok {
		h.writeFailure(w, r, &domain.NotFoundError{Kind: "cart line", ID: productID})
		return
	}

	snap := store.SetQuantity(productID, req.Quantity)
	h.record(r.Context(), "set_quantity")
	h.logger.Info("cart quantity set", "product_id", productID, "quantity", req.Quantity, "lines", snap.LineCount)
	h.writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	snap := store.RemoveItem(productID)
	h.record(r.Context(), "remove")
	h.logger.Info("cart item removed", "product_id", productID, "lines", snap.LineCount)
	h.writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	snap := store.Clear()
	h.record(r.Context(), "clear")
	h.logger.Info("cart cleared")
	h.writeJSON(w, http.StatusOK, snap)
}

type summaryResponse struct {
	Summary
	FreeShippingMessage string `json:"free_shipping_message,omitempty"`
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	summary := Summarize(snap)
	resp := summaryResponse{Summary: summary}
	if !snap.Empty() && summary.FreeShippingRemaining.IsPositive() {
		resp.FreeShippingMessage = "Add $" + summary.FreeShippingRemaining.StringFixed(2) + " more for free shipping"
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (*Store, bool) {
	key, ok := h.key(w, r)
	if !ok {
		return nil, false
	}
	return h.registry.Get(key), true
}

// snapshot reads the session's cart without creating one.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) (Snapshot, bool) {
	key, ok := h.key(w, r)
	if !ok {
		return Snapshot{}, false
	}
	return h.registry.Snapshot(key), true
}

func (h *Handler) key(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := session.KeyFromContext(r.Context())
	if key == "" {
		h.logger.Error("session key missing from request context", "path", r.URL.Path)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return "", false
	}
	return key, true
}

func (h *Handler) record(ctx context.Context, op string) {
	if h.metrics != nil {
		h.metrics.RecordCartMutation(ctx, op)
	}
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
