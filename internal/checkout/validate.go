package checkout

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrValidationFailed = errors.New("validation failed")

// ValidationError lists the form fields that blocked a step transition.
type ValidationError struct {
	Step   Step
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s step: invalid %s", e.Step, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

var (
	emailRe  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	cardRe   = regexp.MustCompile(`^\d{13,19}$`)
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cvvRe    = regexp.MustCompile(`^\d{3,4}$`)
)

type Contact struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type Shipping struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

const (
	MethodCard     = "card"
	MethodPayPal   = "paypal"
	MethodApplePay = "applepay"
)

type Payment struct {
	Method     string `json:"method"`
	CardName   string `json:"cardName,omitempty"`
	CardNumber string `json:"cardNumber,omitempty"`
	Expiry     string `json:"expiry,omitempty"`
	CVV        string `json:"cvv,omitempty"`
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func (c Contact) invalidFields() []string {
	var bad []string
	if blank(c.FirstName) {
		bad = append(bad, "firstName")
	}
	if blank(c.LastName) {
		bad = append(bad, "lastName")
	}
	if !emailRe.MatchString(strings.TrimSpace(c.Email)) {
		bad = append(bad, "email")
	}
	if blank(c.Phone) {
		bad = append(bad, "phone")
	}
	return bad
}

func (s Shipping) invalidFields() []string {
	var bad []string
	if blank(s.Address) {
		bad = append(bad, "address")
	}
	if blank(s.City) {
		bad = append(bad, "city")
	}
	if blank(s.State) {
		bad = append(bad, "state")
	}
	if blank(s.Zip) {
		bad = append(bad, "zip")
	}
	if blank(s.Country) {
		bad = append(bad, "country")
	}
	return bad
}

// invalidFields checks card details only for card payments; wallets need no form.
func (p Payment) invalidFields() []string {
	switch p.Method {
	case MethodPayPal, MethodApplePay:
		return nil
	case MethodCard:
	default:
		return []string{"method"}
	}

	var bad []string
	if blank(p.CardName) {
		bad = append(bad, "cardName")
	}
	if !cardRe.MatchString(strings.ReplaceAll(p.CardNumber, " ", "")) {
		bad = append(bad, "cardNumber")
	}
	if !expiryRe.MatchString(strings.TrimSpace(p.Expiry)) {
		bad = append(bad, "expiry")
	}
	if !cvvRe.MatchString(strings.TrimSpace(p.CVV)) {
		bad = append(bad, "cvv")
	}
	return bad
}

// masked keeps the last four card digits for display.
func (p Payment) masked() Payment {
	digits := strings.ReplaceAll(p.CardNumber, " ", "")
	if len(digits) > 4 {
		p.CardNumber = strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
	}
	p.CVV = ""
	return p
}
