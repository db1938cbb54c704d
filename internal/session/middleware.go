package session

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/joao-fontenele/ekla-marketplace/internal/api"
	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

const CookieName = "sid"

type contextKey struct{}

// Manager builds a session store for every request from the durable record,
// so an expired or deleted record signs the session out on the next request.
type Manager struct {
	records   Records
	directory Directory
	logger    *slog.Logger
}

func NewManager(records Records, directory Directory, logger *slog.Logger) *Manager {
	return &Manager{
		records:   records,
		directory: directory,
		logger:    logger,
	}
}

func (m *Manager) Directory() Directory {
	return m.directory
}

// Middleware makes sure the request carries a session cookie, rehydrates the
// matching store and places it in the request context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ""
		if c, err := r.Cookie(CookieName); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				key = c.Value
			}
		}
		if key == "" {
			key = uuid.New().String()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    key,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		store := NewStore(key, m.records, m.directory)
		if err := store.Rehydrate(r.Context()); err != nil {
			api.WriteFailure(w, r, m.logger, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithStore(r.Context(), store)))
	})
}

// RequireRole rejects requests whose session does not hold one of roles.
// With no roles any signed-in user passes.
func (m *Manager) RequireRole(roles ...domain.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, err := Authorize(r.Context(), roles...); err != nil {
				api.WriteFailure(w, r, m.logger, err)
				return
			}
			next(w, r)
		}
	}
}

func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's store, or nil outside the middleware.
func FromContext(ctx context.Context) *Store {
	s, _ := ctx.Value(contextKey{}).(*Store)
	return s
}

// KeyFromContext returns the session key of the request, or "".
func KeyFromContext(ctx context.Context) string {
	if s := FromContext(ctx); s != nil {
		return s.Key()
	}
	return ""
}

// Authorize resolves the request's user against roles.
func Authorize(ctx context.Context, roles ...domain.Role) (domain.User, error) {
	s := FromContext(ctx)
	if s == nil {
		return domain.User{}, &domain.AuthorizationError{Required: roles}
	}
	return s.Authorize(roles...)
}
