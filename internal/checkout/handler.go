package checkout

import (
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/ekla-marketplace/internal/api"
	"github.com/joao-fontenele/ekla-marketplace/internal/cart"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
	"github.com/joao-fontenele/ekla-marketplace/internal/session"
)

const successRedirect = "/profile"

type Handler struct {
	service  *Service
	registry *cart.Registry
	logger   *slog.Logger
}

func NewHandler(service *Service, registry *cart.Registry, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		registry: registry,
		logger:   logger,
	}
}

type placeOrderResponse struct {
	Order    *domain.Order `json:"order"`
	Redirect string        `json:"redirect"`
}

func (h *Handler) HandlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	user, err := session.Authorize(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	var form Form
	if err := api.DecodeJSON(r, &form); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	store, ok := h.cart(w, r)
	if !ok {
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), &user, store, form)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, placeOrderResponse{Order: order, Redirect: successRedirect})
}

type prefillResponse struct {
	Form    Form         `json:"form"`
	Summary cart.Summary `json:"summary"`
}

// HandlePrefill returns the form seeded from the session together with the
// cart summary shown beside it.
func (h *Handler) HandlePrefill(w http.ResponseWriter, r *http.Request) {
	user, err := session.Authorize(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	key, ok := h.sessionKey(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, prefillResponse{
		Form:    PrefillForm(user),
		Summary: cart.Summarize(h.registry.Snapshot(key)),
	})
}

// cart returns the session's cart. A session without one checks out an
// empty, unregistered cart so validation reports it.
func (h *Handler) cart(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	key, ok := h.sessionKey(w, r)
	if !ok {
		return nil, false
	}
	if store, ok := h.registry.Lookup(key); ok {
		return store, true
	}
	return cart.NewStore(), true
}

func (h *Handler) sessionKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := session.KeyFromContext(r.Context())
	if key == "" {
		h.logger.Error("checkout request without session key")
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return "", false
	}
	return key, true
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
