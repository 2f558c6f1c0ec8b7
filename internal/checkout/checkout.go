package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/events"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/pricing"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderPlaced = errors.New("order already placed")
	ErrWrongStep   = errors.New("operation not allowed at this step")
	ErrEmptyCart   = errors.New("cart is empty")
	ErrPlacing     = errors.New("order is being placed")
)

type Step int

const (
	StepContact Step = iota + 1
	StepShipping
	StepPayment
	StepReview
	StepPlaced
)

func (s Step) String() string {
	switch s {
	case StepContact:
		return "contact"
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	case StepPlaced:
		return "placed"
	default:
		return "step(" + strconv.Itoa(int(s)) + ")"
	}
}

type Cart interface {
	Snapshot() []models.LineItem
	Clear(ctx context.Context)
}

type OrderBook interface {
	RecordOrder(ctx context.Context, order models.Order, customer models.Customer) error
}

type Deps struct {
	Cart     Cart
	Engine   *pricing.Engine
	Promos   *pricing.PromoRegistry
	Shipping pricing.ShippingRule
	Orders   OrderBook
	Events   events.Publisher
	Delay    time.Duration
	Log      *slog.Logger
}

// Flow walks one checkout session through contact, shipping, payment and
// review. Once an order is placed the session is frozen until Reset.
type Flow struct {
	mu sync.Mutex
	d  Deps

	step         Step
	contact      Contact
	shipping     Shipping
	payment      Payment
	promo        *pricing.Promo
	shippingCost decimal.Decimal
	placing      bool
	orderID      string

	now func() time.Time
}

func New(d Deps) *Flow {
	if d.Events == nil {
		d.Events = events.Nop{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	d.Log = d.Log.With("component", "checkout")
	return &Flow{d: d, step: StepContact, payment: Payment{Method: MethodCard}, now: time.Now}
}

// View is a read-only copy of the session for presentation.
type View struct {
	Step     int                   `json:"step"`
	StepName string                `json:"stepName"`
	Contact  Contact               `json:"contact"`
	Shipping Shipping              `json:"shipping"`
	Payment  Payment               `json:"payment"`
	Promo    string                `json:"promo,omitempty"`
	Items    []models.LineItem     `json:"items"`
	Totals   pricing.DisplayTotals `json:"totals"`
	Placed   bool                  `json:"placed"`
	OrderID  string                `json:"orderId,omitempty"`
}

func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.d.Cart.Snapshot()
	v := View{
		Step:     int(f.step),
		StepName: f.step.String(),
		Contact:  f.contact,
		Shipping: f.shipping,
		Payment:  f.payment.masked(),
		Items:    items,
		Totals:   f.totalsLocked(items).Display(),
		Placed:   f.step == StepPlaced,
		OrderID:  f.orderID,
	}
	if f.promo != nil {
		v.Promo = f.promo.Code
	}
	return v
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Reset starts a fresh session, discarding any placed order.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.placing {
		return
	}
	f.step = StepContact
	f.contact = Contact{}
	f.shipping = Shipping{}
	f.payment = Payment{Method: MethodCard}
	f.promo = nil
	f.shippingCost = decimal.Zero
	f.orderID = ""
}

// SetContact and the other Set methods replace one form. Editing a form the session has already
// validated moves it back to that form's step, so it must pass Advance again.
func (f *Flow) SetContact(c Contact) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return err
	}
	f.contact = c
	f.rewindLocked(StepContact)
	return nil
}

func (f *Flow) SetShipping(s Shipping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return err
	}
	f.shipping = s
	f.rewindLocked(StepShipping)
	return nil
}

func (f *Flow) SetPayment(p Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return err
	}
	f.payment = p
	f.rewindLocked(StepPayment)
	return nil
}

// Advance validates the current step and moves to the next one. On a
// validation failure the step is left unchanged.
func (f *Flow) Advance() (Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return f.step, err
	}

	var bad []string
	switch f.step {
	case StepContact:
		bad = f.contact.invalidFields()
	case StepShipping:
		bad = f.shipping.invalidFields()
	case StepPayment:
		bad = f.payment.invalidFields()
	default:
		return f.step, fmt.Errorf("advance from %s: %w", f.step, ErrWrongStep)
	}
	if len(bad) > 0 {
		return f.step, &ValidationError{Step: f.step, Fields: bad}
	}

	if f.step == StepShipping {
		f.shippingCost = f.d.Shipping.Cost(f.shipping.State)
	}
	f.step++
	return f.step, nil
}

// Retreat moves back to any earlier step without validation.
func (f *Flow) Retreat(to Step) (Step, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return f.step, err
	}
	if to < StepContact || to >= f.step {
		return f.step, fmt.Errorf("retreat from %s to %s: %w", f.step, to, ErrWrongStep)
	}
	f.step = to
	return f.step, nil
}

// ApplyPromo replaces the active promo. An unknown code leaves the current promo in place.
func (f *Flow) ApplyPromo(code string) (pricing.Totals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.mutableLocked(); err != nil {
		return pricing.Totals{}, err
	}

	p, err := f.d.Promos.Lookup(strings.TrimSpace(code))
	if err != nil {
		return f.totalsLocked(f.d.Cart.Snapshot()), err
	}
	f.promo = &p
	return f.totalsLocked(f.d.Cart.Snapshot()), nil
}

func (f *Flow) Totals() pricing.Totals {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalsLocked(f.d.Cart.Snapshot())
}

// PlaceOrder waits out the processing delay and records the order. Canceling
// ctx during the wait abandons the order and leaves the session at Review.
func (f *Flow) PlaceOrder(ctx context.Context) (models.Order, error) {
	f.mu.Lock()
	if err := f.mutableLocked(); err != nil {
		f.mu.Unlock()
		return models.Order{}, err
	}
	if f.step != StepReview {
		step := f.step
		f.mu.Unlock()
		return models.Order{}, fmt.Errorf("place order at %s: %w", step, ErrWrongStep)
	}
	if err := f.revalidateLocked(); err != nil {
		f.mu.Unlock()
		return models.Order{}, err
	}
	if len(f.d.Cart.Snapshot()) == 0 {
		f.mu.Unlock()
		return models.Order{}, ErrEmptyCart
	}
	f.placing = true
	f.mu.Unlock()

	timer := time.NewTimer(f.d.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		f.mu.Lock()
		f.placing = false
		f.mu.Unlock()
		f.d.Log.Info("order_abandoned", "reason", "context done during processing", "error", ctx.Err())
		return models.Order{}, ctx.Err()
	case <-timer.C:
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.placing = false

	// the cart is not frozen while placing, so it may have been emptied
	items := f.d.Cart.Snapshot()
	if len(items) == 0 {
		f.d.Log.Info("order_abandoned", "reason", "cart emptied during processing")
		return models.Order{}, ErrEmptyCart
	}
	totals := f.totalsLocked(items)
	now := f.now().UTC()
	order := models.Order{
		ID:       "BH" + strconv.FormatInt(now.UnixMilli(), 10),
		Customer: strings.TrimSpace(f.contact.FirstName + " " + f.contact.LastName),
		Date:     now,
		Total:    totals.Display().GrandTotal,
		Status:   models.OrderStatusPending,
	}
	customer := models.Customer{
		Name:   order.Customer,
		Email:  strings.TrimSpace(f.contact.Email),
		Phone:  f.contact.Phone,
		Joined: now,
	}

	// detached so a late cancel cannot split the order from the cleared cart
	wctx := context.WithoutCancel(ctx)
	if f.d.Orders != nil {
		if err := f.d.Orders.RecordOrder(wctx, order, customer); err != nil {
			f.d.Log.Error("order_record_failed", "order_id", order.ID, "error", err)
			return models.Order{}, fmt.Errorf("record order %s: %w", order.ID, err)
		}
	}
	f.d.Cart.Clear(wctx)
	f.step = StepPlaced
	f.orderID = order.ID

	_ = f.d.Events.Publish(wctx, events.Event{
		Type: events.TypeOrderPlaced,
		Key:  order.ID,
		At:   now,
		Payload: map[string]any{
			"order_id": order.ID,
			"total":    order.Total,
			"items":    len(items),
			"promo":    promoCode(f.promo),
		},
	})
	f.d.Log.Info("order_placed", "order_id", order.ID, "total", order.Total, "items", len(items))
	return order, nil
}

func (f *Flow) rewindLocked(owner Step) {
	if f.step > owner {
		f.step = owner
	}
}

// revalidateLocked checks every form again before an order is placed and
// refreshes the shipping cost from the current region.
func (f *Flow) revalidateLocked() error {
	forms := []struct {
		step Step
		bad  []string
	}{
		{StepContact, f.contact.invalidFields()},
		{StepShipping, f.shipping.invalidFields()},
		{StepPayment, f.payment.invalidFields()},
	}
	for _, form := range forms {
		if len(form.bad) > 0 {
			f.step = form.step
			return &ValidationError{Step: form.step, Fields: form.bad}
		}
	}
	f.shippingCost = f.d.Shipping.Cost(f.shipping.State)
	return nil
}

func (f *Flow) mutableLocked() error {
	if f.step == StepPlaced {
		return ErrOrderPlaced
	}
	if f.placing {
		return ErrPlacing
	}
	return nil
}

func (f *Flow) totalsLocked(items []models.LineItem) pricing.Totals {
	return f.d.Engine.Compute(items, f.promo, f.shippingCost)
}

func promoCode(p *pricing.Promo) string {
	if p == nil {
		return ""
	}
	return p.Code
}
