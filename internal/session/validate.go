package session

import (
	"slices"
	"strings"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

const minPasswordLength = 6

// BuyerRegistration is the sign-up form of a buyer account.
type BuyerRegistration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r BuyerRegistration) Validate() error {
	v := &domain.ValidationError{}
	r.validate(v)
	return v.Err()
}

func (r BuyerRegistration) validate(v *domain.ValidationError) {
	if strings.TrimSpace(r.Name) == "" {
		v.Add("name", "name is required")
	}
	switch {
	case strings.TrimSpace(r.Email) == "":
		v.Add("email", "email is required")
	case !domain.ValidEmail(r.Email):
		v.Add("email", "email is invalid")
	}
	switch {
	case r.Password == "":
		v.Add("password", "password is required")
	case len(r.Password) < minPasswordLength:
		v.Add("password", "password must be at least 6 characters")
	}
	switch {
	case r.ConfirmPassword == "":
		v.Add("confirm_password", "please confirm your password")
	case r.ConfirmPassword != r.Password:
		v.Add("confirm_password", "passwords do not match")
	}
}

// ArtisanProfile is the sign-up form of a seller account.
type ArtisanProfile struct {
	BuyerRegistration
	Bio         string   `json:"bio"`
	Location    string   `json:"location"`
	Specialties []string `json:"specialties"`
}

func (p ArtisanProfile) Validate() error {
	v := &domain.ValidationError{}
	p.validate(v)
	if strings.TrimSpace(p.Bio) == "" {
		v.Add("bio", "bio is required")
	}
	if strings.TrimSpace(p.Location) == "" {
		v.Add("location", "location is required")
	}
	if len(NormalizeSpecialties(p.Specialties)) == 0 {
		v.Add("specialties", "add at least one specialty")
	}
	return v.Err()
}

// NormalizeSpecialties trims every entry, drops blanks and keeps the first
// occurrence of each.
func NormalizeSpecialties(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
