package admin

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

// UserFilter narrows the admin user table. An empty Role keeps every role.
type UserFilter struct {
	Query string
	Role  domain.Role
}

func ParseUserFilter(q url.Values) (UserFilter, error) {
	f := UserFilter{Query: q.Get("search")}

	raw := strings.TrimSpace(q.Get("role"))
	if raw == "" || strings.EqualFold(raw, "all") {
		return f, nil
	}
	role, err := domain.ParseRole(raw)
	if err != nil {
		return UserFilter{}, domain.NewValidationError("role", "unknown role")
	}
	f.Role = role
	return f, nil
}

// Apply keeps users whose name or email contains the query.
func (f UserFilter) Apply(users []domain.User) []domain.User {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(f.Query))

	out := []domain.User{}
	for _, u := range users {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if q != "" && !strings.Contains(fold.String(u.Name), q) && !strings.Contains(fold.String(u.Email), q) {
			continue
		}
		out = append(out, u)
	}
	return out
}
