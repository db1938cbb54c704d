// Package email is the mock mail sender used for order notifications.
package email

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/ekla-marketplace/internal/api"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

const StatusSent = "sent"

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (m Message) Validate() error {
	v := &domain.ValidationError{}
	switch to := strings.TrimSpace(m.To); {
	case to == "":
		v.Add("to", "recipient is required")
	case !domain.ValidEmail(to):
		v.Add("to", "recipient is not a valid email address")
	}
	if strings.TrimSpace(m.Subject) == "" {
		v.Add("subject", "subject is required")
	}
	return v.Err()
}

type Receipt struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

type Handler struct {
	logger  *slog.Logger
	latency func() time.Duration
}

type Option func(*Handler)

// WithLatency replaces the simulated delivery delay.
func WithLatency(fn func() time.Duration) Option {
	return func(h *Handler) {
		h.latency = fn
	}
}

func NewHandler(logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger: logger,
		latency: func() time.Duration {
			return time.Duration(50+rand.IntN(151)) * time.Millisecond
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := api.DecodeJSON(r, &msg); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := msg.Validate(); err != nil {
		api.WriteFailure(w, r, h.logger, err)
		return
	}

	select {
	case <-time.After(h.latency()):
	case <-r.Context().Done():
		h.writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}

	receipt := Receipt{Status: StatusSent, ID: uuid.NewString()}
	h.logger.Info("email sent", "id", receipt.ID, "to", msg.To, "subject", msg.Subject)
	h.writeJSON(w, http.StatusOK, receipt)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	api.WriteJSON(w, h.logger, status, data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	api.WriteError(w, h.logger, status, message)
}
