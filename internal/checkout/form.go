// Package checkout turns a session's cart into a placed order.
package checkout

import (
	"regexp"
	"strings"

	"github.com/joao-fontenele/ekla-marketplace/internal/domain"
)

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit-card"
	PaymentPayPal     PaymentMethod = "paypal"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// Form is the shipping and payment form submitted at checkout. Card fields
// are only read for credit card payments and are never stored.
type Form struct {
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	Email         string        `json:"email"`
	Address       string        `json:"address"`
	City          string        `json:"city"`
	State         string        `json:"state"`
	ZipCode       string        `json:"zip_code"`
	Country       string        `json:"country"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CardNumber    string        `json:"card_number,omitempty"`
	CardName      string        `json:"card_name,omitempty"`
	ExpiryDate    string        `json:"expiry_date,omitempty"`
	CVV           string        `json:"cvv,omitempty"`
}

// PrefillForm seeds a form from the signed-in user.
func PrefillForm(user domain.User) Form {
	first, last, _ := strings.Cut(strings.TrimSpace(user.Name), " ")
	return Form{
		FirstName:     first,
		LastName:      strings.TrimSpace(last),
		Email:         user.Email,
		PaymentMethod: PaymentCreditCard,
	}
}

func (f Form) CustomerName() string {
	return strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
}

func (f Form) ShippingAddress() domain.Address {
	return domain.Address{
		Street:  strings.TrimSpace(f.Address),
		City:    strings.TrimSpace(f.City),
		State:   strings.TrimSpace(f.State),
		ZipCode: strings.TrimSpace(f.ZipCode),
		Country: strings.TrimSpace(f.Country),
	}
}

func (f Form) Validate() error {
	v := &domain.ValidationError{}
	f.validate(v)
	return v.Err()
}

func (f Form) validate(v *domain.ValidationError) {
	required := []struct {
		field, value string
	}{
		{"first_name", f.FirstName},
		{"last_name", f.LastName},
		{"email", f.Email},
		{"address", f.Address},
		{"city", f.City},
		{"state", f.State},
		{"zip_code", f.ZipCode},
		{"country", f.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			v.Add(r.field, "this field is required")
		}
	}

	if email := strings.TrimSpace(f.Email); email != "" && !domain.ValidEmail(email) {
		v.Add("email", "please enter a valid email address")
	}

	switch f.PaymentMethod {
	case PaymentCreditCard:
		f.validateCard(v)
	case PaymentPayPal:
	case "":
		v.Add("payment_method", "payment method is required")
	default:
		v.Add("payment_method", "unsupported payment method")
	}
}

func (f Form) validateCard(v *domain.ValidationError) {
	switch number := strings.Join(strings.Fields(f.CardNumber), ""); {
	case number == "":
		v.Add("card_number", "card number is required")
	case !cardNumberPattern.MatchString(number):
		v.Add("card_number", "please enter a valid 16-digit card number")
	}

	if strings.TrimSpace(f.CardName) == "" {
		v.Add("card_name", "name on card is required")
	}

	switch {
	case f.ExpiryDate == "":
		v.Add("expiry_date", "expiry date is required")
	case !expiryPattern.MatchString(f.ExpiryDate):
		v.Add("expiry_date", "please use MM/YY format")
	}

	switch {
	case f.CVV == "":
		v.Add("cvv", "CVV is required")
	case !cvvPattern.MatchString(f.CVV):
		v.Add("cvv", "CVV must be 3 or 4 digits")
	}
}
