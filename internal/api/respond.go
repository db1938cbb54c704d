// Package api holds the JSON response helpers shared by the storefront
// handlers, including the mapping from domain errors to HTTP responses.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

// NotFoundRedirect is the recovery link offered with every not-found response.
const NotFoundRedirect = "/products"

func WriteJSON(w http.ResponseWriter, logger *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func WriteError(w http.ResponseWriter, logger *slog.Logger, status int, message string) {
	WriteJSON(w, logger, status, map[string]string{"error": message})
}

type validationBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type redirectBody struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

// WriteFailure maps err onto the error taxonomy: validation failures are
// 400 with per-field messages, missing records 404 with a recovery link,
// missing or wrong identity 401 with a sign-in redirect. Anything else is
// logged and reported as a 500.
func WriteFailure(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var (
		verr *domain.ValidationError
		nf   *domain.NotFoundError
		ae   *domain.AuthorizationError
	)
	switch {
	case errors.As(err, &verr):
		WriteJSON(w, logger, http.StatusBadRequest, validationBody{Error: "validation failed", Fields: verr.Fields})
	case errors.As(err, &nf):
		WriteJSON(w, logger, http.StatusNotFound, redirectBody{Error: nf.Error(), Redirect: NotFoundRedirect})
	case errors.As(err, &ae):
		WriteJSON(w, logger, http.StatusUnauthorized, redirectBody{Error: "sign in required", Redirect: SignInRedirect(r)})
	default:
		logger.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		WriteError(w, logger, http.StatusInternalServerError, "internal server error")
	}
}

// SignInRedirect builds the login location that returns to the current page.
func SignInRedirect(r *http.Request) string {
	return "/login?" + url.Values{"from": {r.URL.Path}}.Encode()
}

// DecodeJSON reads a JSON request body into dst. Unknown fields are rejected.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
