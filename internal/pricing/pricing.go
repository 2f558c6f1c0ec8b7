package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"github.com/shopspring/decimal"
)

var ErrInvalidPromo = errors.New("invalid promo code")

type Promo struct {
	Code string          `json:"code"`
	Rate decimal.Decimal `json:"rate"`
}

type PromoRegistry struct {
	codes map[string]decimal.Decimal
}

func NewPromoRegistry(codes map[string]float64) *PromoRegistry {
	r := &PromoRegistry{codes: make(map[string]decimal.Decimal, len(codes))}
	for code, rate := range codes {
		r.codes[code] = decimal.NewFromFloat(rate)
	}
	return r
}

func DefaultPromos() *PromoRegistry {
	return NewPromoRegistry(map[string]float64{
		"BEAUTY10":  0.10,
		"SAVE15":    0.15,
		"WELCOME20": 0.20,
	})
}

// Lookup matches codes exactly; "save15" is not "SAVE15".
func (r *PromoRegistry) Lookup(code string) (Promo, error) {
	rate, ok := r.codes[code]
	if !ok {
		return Promo{}, fmt.Errorf("%q: %w", code, ErrInvalidPromo)
	}
	return Promo{Code: code, Rate: rate}, nil
}

type ShippingRule struct {
	free map[string]struct{}
	flat decimal.Decimal
}

func NewShippingRule(freeRegions []string, flat float64) ShippingRule {
	r := ShippingRule{free: make(map[string]struct{}, len(freeRegions)), flat: decimal.NewFromFloat(flat)}
	for _, reg := range freeRegions {
		r.free[normRegion(reg)] = struct{}{}
	}
	return r
}

func DefaultShipping() ShippingRule {
	return NewShippingRule([]string{"NY", "CA"}, 9.99)
}

func (r ShippingRule) Cost(region string) decimal.Decimal {
	if _, ok := r.free[normRegion(region)]; ok {
		return decimal.Zero
	}
	return r.flat
}

func normRegion(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

type Totals struct {
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	TaxableAmount decimal.Decimal
	Tax           decimal.Decimal
	Shipping      decimal.Decimal
	GrandTotal    decimal.Decimal
}

// DisplayTotals is Totals rounded to cents.
type DisplayTotals struct {
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	TaxableAmount float64 `json:"taxableAmount"`
	Tax           float64 `json:"tax"`
	Shipping      float64 `json:"shipping"`
	GrandTotal    float64 `json:"total"`
}

func (t Totals) Display() DisplayTotals {
	return DisplayTotals{
		Subtotal:      cents(t.Subtotal),
		Discount:      cents(t.Discount),
		TaxableAmount: cents(t.TaxableAmount),
		Tax:           cents(t.Tax),
		Shipping:      cents(t.Shipping),
		GrandTotal:    cents(t.GrandTotal),
	}
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

type Engine struct {
	TaxRate decimal.Decimal
}

func NewEngine(taxRate float64) *Engine {
	return &Engine{TaxRate: decimal.NewFromFloat(taxRate)}
}

// Compute derives order totals. The discount is taken off the subtotal before tax.
func (e *Engine) Compute(items []models.LineItem, promo *Promo, shipping decimal.Decimal) Totals {
	subtotal := Subtotal(items)

	discount := decimal.Zero
	if promo != nil {
		discount = subtotal.Mul(promo.Rate)
	}
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(e.TaxRate)

	return Totals{
		Subtotal:      subtotal,
		Discount:      discount,
		TaxableAmount: taxable,
		Tax:           tax,
		Shipping:      shipping,
		GrandTotal:    taxable.Add(tax).Add(shipping),
	}
}

func Subtotal(items []models.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}
