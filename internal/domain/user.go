package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidEmail is the loose address shape check shared by the forms.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Role is the closed set of identities a session can act as.
type Role string

const (
	RoleBuyer   Role = "buyer"
	RoleArtisan Role = "artisan"
	RoleAdmin   Role = "admin"
)

// Roles lists every valid role in display order.
func Roles() []Role {
	return []Role{RoleBuyer, RoleArtisan, RoleAdmin}
}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleArtisan, RoleAdmin:
		return true
	}
	return false
}

// Label is the human readable name shown in role badges.
func (r Role) Label() string {
	switch r {
	case RoleBuyer:
		return "Buyer"
	case RoleArtisan:
		return "Artisan"
	case RoleAdmin:
		return "Admin"
	default:
		panic(fmt.Sprintf("domain: unhandled role %q", string(r)))
	}
}

func (r Role) MarshalText() ([]byte, error) {
	if r != "" && !r.Valid() {
		return nil, fmt.Errorf("unknown role %q", string(r))
	}
	return []byte(r), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type User struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Email     string `json:"email" yaml:"email"`
	Role      Role   `json:"role" yaml:"role"`
	AvatarURL string `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
}

func (u User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// FirstName and LastName split the display name the way the checkout form
// prefills it: first word, second word.
func (u User) FirstName() string {
	parts := strings.Fields(u.Name)
	if len(parts) == 0 {
		return ""
	}
	return parts[0]
}

func (u User) LastName() string {
	parts := strings.Fields(u.Name)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

type Artisan struct {
	User        `yaml:",inline"`
	Bio         string    `json:"bio" yaml:"bio"`
	Location    string    `json:"location" yaml:"location"`
	Specialties []string  `json:"specialties" yaml:"specialties"`
	Rating      float64   `json:"rating" yaml:"rating"`
	JoinedDate  time.Time `json:"joined_date" yaml:"joined_date"`
}

func (a Artisan) Validate() error {
	if a.Role != RoleArtisan {
		return fmt.Errorf("artisan %s: role is %q, want %q", a.ID, a.Role, RoleArtisan)
	}
	if a.Rating < 0 || a.Rating > 5 {
		return fmt.Errorf("artisan %s: rating %.1f out of range", a.ID, a.Rating)
	}
	return nil
}

// SharesSpecialty reports whether the two artisans have at least one
// specialty in common.
func (a Artisan) SharesSpecialty(other Artisan) bool {
	for _, s := range a.Specialties {
		for _, o := range other.Specialties {
			if s == o {
				return true
			}
		}
	}
	return false
}
