package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/ekla-marketplace/internal/api"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

type Handler struct {
	logger    *slog.Logger
	onSignOut func(ctx context.Context, key string)
}

// NewHandler builds the auth endpoints. onSignOut, when set, runs after a
// session signs out so per-session state such as the cart can be dropped.
func NewHandler(logger *slog.Logger, onSignOut func(ctx context.Context, key string)) *Handler {
	return &Handler{
		logger:    logger,
		onSignOut: onSignOut,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var req loginRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := store.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.logger.Info("sign in rejected", "reason", "missing credentials")
		}
		h.writeFailure(w, r, err)
		return
	}

	h.logger.Info("signed in", "user_id", user.ID, "role", user.Role)
	h.writeJSON(w, http.StatusOK, meResponse{Authenticated: true, User: &user})
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var req BuyerRegistration
	if err := api.DecodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := store.RegisterBuyer(r.Context(), req)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	h.logger.Info("buyer registered", "user_id", user.ID)
	h.writeJSON(w, http.StatusCreated, meResponse{Authenticated: true, User: &user})
}

func (h *Handler) HandleRegisterArtisan(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var req ArtisanProfile
	if err := api.DecodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	artisan, err := store.RegisterArtisan(r.Context(), req)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	h.logger.Info("artisan registered", "user_id", artisan.ID, "specialties", len(artisan.Specialties))
	h.writeJSON(w, http.StatusCreated, artisan)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	if err := store.SignOut(r.Context()); err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if h.onSignOut != nil {
		h.onSignOut(r.Context(), store.Key())
	}

	h.logger.Info("signed out")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	resp := meResponse{}
	if user, ok := store.Current(); ok {
		resp.Authenticated = true
		resp.User = &user
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (*Store, bool) {
	s := FromContext(r.Context())
	if s == nil {
		h.logger.Error("session store missing from request context", "path", r.URL.Path)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return nil, false
	}
	return s, true
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
