package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/admin"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/cart"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/catalog"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/events"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/pricing"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	flow   *Flow
	cart   *cart.Store
	orders *admin.Dashboard
	events []events.Event
}

func newFixture(t *testing.T, delay time.Duration) *fixture {
	t.Helper()
	kv := storage.NewMemoryStore()
	cat := catalog.New(catalog.Fallback)
	fx := &fixture{orders: admin.NewDashboard(kv, nil)}

	bus := events.NewBus(nil, nil)
	bus.Subscribe(func(e events.Event) { fx.events = append(fx.events, e) })

	fx.cart = cart.New(cat, kv, bus, nil)
	fx.flow = New(Deps{
		Cart:     fx.cart,
		Engine:   pricing.NewEngine(0.08),
		Promos:   pricing.DefaultPromos(),
		Shipping: pricing.DefaultShipping(),
		Orders:   fx.orders,
		Events:   bus,
		Delay:    delay,
	})
	fx.flow.now = func() time.Time { return time.UnixMilli(1767225600000) }
	return fx
}

func validContact() Contact {
	return Contact{FirstName: "Ana", LastName: "Lee", Email: "ana@example.com", Phone: "555-0100"}
}

func validShipping(state string) Shipping {
	return Shipping{Address: "1 Main St", City: "Austin", State: state, Zip: "73301", Country: "US"}
}

func validCard() Payment {
	return Payment{Method: MethodCard, CardName: "Ana Lee", CardNumber: "4111 1111 1111 1111", Expiry: "12/29", CVV: "123"}
}

func (fx *fixture) toReview(t *testing.T, state string) {
	t.Helper()
	require.NoError(t, fx.flow.SetContact(validContact()))
	_, err := fx.flow.Advance()
	require.NoError(t, err)
	require.NoError(t, fx.flow.SetShipping(validShipping(state)))
	_, err = fx.flow.Advance()
	require.NoError(t, err)
	require.NoError(t, fx.flow.SetPayment(validCard()))
	step, err := fx.flow.Advance()
	require.NoError(t, err)
	require.Equal(t, StepReview, step)
}

func TestAdvance_ShippingMissingField(t *testing.T) {
	fx := newFixture(t, 0)
	require.NoError(t, fx.flow.SetContact(validContact()))
	_, err := fx.flow.Advance()
	require.NoError(t, err)

	s := validShipping("TX")
	s.City = ""
	require.NoError(t, fx.flow.SetShipping(s))

	step, err := fx.flow.Advance()
	require.ErrorIs(t, err, ErrValidationFailed)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"city"}, verr.Fields)
	assert.Equal(t, StepShipping, step)
	assert.Equal(t, StepShipping, fx.flow.Step())
}

func TestAdvance_ContactValidation(t *testing.T) {
	tests := []struct {
		name string
		c    Contact
		want []string
	}{
		{name: "empty", c: Contact{}, want: []string{"firstName", "lastName", "email", "phone"}},
		{name: "bad email", c: Contact{FirstName: "A", LastName: "B", Email: "a@b", Phone: "1"}, want: []string{"email"}},
		{name: "email with space", c: Contact{FirstName: "A", LastName: "B", Email: "a b@c.d", Phone: "1"}, want: []string{"email"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, 0)
			require.NoError(t, fx.flow.SetContact(tt.c))
			_, err := fx.flow.Advance()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.want, verr.Fields)
		})
	}
}

func TestPaymentValidation(t *testing.T) {
	tests := []struct {
		name string
		p    Payment
		want []string
	}{
		{name: "valid card", p: validCard()},
		{name: "paypal needs no card", p: Payment{Method: MethodPayPal}},
		{name: "applepay", p: Payment{Method: MethodApplePay}},
		{name: "unknown method", p: Payment{Method: "cash"}, want: []string{"method"}},
		{name: "short number", p: Payment{Method: MethodCard, CardName: "A", CardNumber: "4111 1111", Expiry: "01/30", CVV: "123"}, want: []string{"cardNumber"}},
		{name: "month 13", p: Payment{Method: MethodCard, CardName: "A", CardNumber: "4111111111111", Expiry: "13/30", CVV: "1234"}, want: []string{"expiry"}},
		{name: "cvv letters", p: Payment{Method: MethodCard, CardName: "", CardNumber: "4111111111111", Expiry: "09/30", CVV: "12a"}, want: []string{"cardName", "cvv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.invalidFields())
		})
	}
}

func TestAdvance_ShippingSetsCost(t *testing.T) {
	ctx := context.Background()

	for state, want := range map[string]float64{"NY": 0, "CA": 0, "TX": 9.99} {
		t.Run(state, func(t *testing.T) {
			fx := newFixture(t, 0)
			require.NoError(t, fx.cart.Add(ctx, 1))
			fx.toReview(t, state)
			assert.Equal(t, want, fx.flow.Totals().Display().Shipping)
		})
	}
}

func TestRetreat(t *testing.T) {
	fx := newFixture(t, 0)
	fx.toReview(t, "NY")

	step, err := fx.flow.Retreat(StepContact)
	require.NoError(t, err)
	assert.Equal(t, StepContact, step)

	_, err = fx.flow.Retreat(StepPayment)
	require.ErrorIs(t, err, ErrWrongStep)
}

func TestApplyPromo(t *testing.T) {
	fx := newFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, fx.cart.Add(ctx, 1))

	totals, err := fx.flow.ApplyPromo(" SAVE15 ")
	require.NoError(t, err)
	assert.Equal(t, 6.9, totals.Display().Discount)

	before := fx.flow.Totals()
	after, err := fx.flow.ApplyPromo("BOGUS")
	require.ErrorIs(t, err, pricing.ErrInvalidPromo)
	assert.True(t, before.GrandTotal.Equal(after.GrandTotal))
	assert.Equal(t, "SAVE15", fx.flow.View().Promo)
}

func TestPlaceOrder_Save15Scenario(t *testing.T) {
	fx := newFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, fx.cart.Add(ctx, 1))
	_, err := fx.flow.ApplyPromo("SAVE15")
	require.NoError(t, err)
	fx.toReview(t, "TX")

	order, err := fx.flow.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BH1767225600000", order.ID)
	assert.Equal(t, 52.21, order.Total)
	assert.Equal(t, "Ana Lee", order.Customer)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	assert.Zero(t, fx.cart.TotalItemCount())
	assert.Equal(t, StepPlaced, fx.flow.Step())

	orders, err := fx.orders.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	customers, err := fx.orders.SearchCustomers(ctx, "ana@")
	require.NoError(t, err)
	assert.Len(t, customers, 1)

	last := fx.events[len(fx.events)-1]
	assert.Equal(t, events.TypeOrderPlaced, last.Type)
	assert.Equal(t, order.ID, last.Key)
}

func TestPlaceOrder_FrozenAfterPlaced(t *testing.T) {
	fx := newFixture(t, 0)
	ctx := context.Background()
	require.NoError(t, fx.cart.Add(ctx, 1))
	fx.toReview(t, "NY")
	_, err := fx.flow.PlaceOrder(ctx)
	require.NoError(t, err)

	require.ErrorIs(t, fx.flow.SetContact(validContact()), ErrOrderPlaced)
	_, err = fx.flow.Advance()
	require.ErrorIs(t, err, ErrOrderPlaced)
	_, err = fx.flow.Retreat(StepContact)
	require.ErrorIs(t, err, ErrOrderPlaced)
	_, err = fx.flow.ApplyPromo("SAVE15")
	require.ErrorIs(t, err, ErrOrderPlaced)
	_, err = fx.flow.PlaceOrder(ctx)
	require.ErrorIs(t, err, ErrOrderPlaced)

	fx.flow.Reset()
	assert.Equal(t, StepContact, fx.flow.Step())
}

func TestPlaceOrder_Preconditions(t *testing.T) {
	ctx := context.Background()

	fx := newFixture(t, 0)
	_, err := fx.flow.PlaceOrder(ctx)
	require.ErrorIs(t, err, ErrWrongStep)

	fx.toReview(t, "NY")
	_, err = fx.flow.PlaceOrder(ctx)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrder_CanceledDuringDelay(t *testing.T) {
	fx := newFixture(t, time.Hour)
	require.NoError(t, fx.cart.Add(context.Background(), 1))
	fx.toReview(t, "NY")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := fx.flow.PlaceOrder(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StepReview, fx.flow.Step())
	assert.Equal(t, 1, fx.cart.TotalItemCount())

	orders, err := fx.orders.ListOrders(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestView_MasksCard(t *testing.T) {
	fx := newFixture(t, 0)
	require.NoError(t, fx.flow.SetPayment(validCard()))

	v := fx.flow.View()
	assert.Equal(t, "************1111", v.Payment.CardNumber)
	assert.Empty(t, v.Payment.CVV)
	assert.Equal(t, "contact", v.StepName)
}

func TestSetAfterReview_RewindsToOwningStep(t *testing.T) {
	ctx := context.Background()

	fx := newFixture(t, 0)
	require.NoError(t, fx.cart.Add(ctx, 1))
	fx.toReview(t, "NY")
	assert.Zero(t, fx.flow.Totals().Display().Shipping)

	require.NoError(t, fx.flow.SetShipping(validShipping("TX")))
	assert.Equal(t, StepShipping, fx.flow.Step())

	_, err := fx.flow.PlaceOrder(ctx)
	require.ErrorIs(t, err, ErrWrongStep)

	require.NoError(t, fx.flow.SetContact(Contact{Email: "not-an-email"}))
	assert.Equal(t, StepContact, fx.flow.Step())
	_, err = fx.flow.Advance()
	require.ErrorIs(t, err, ErrValidationFailed)

	// payment edits before reaching payment do not move the session forward
	require.NoError(t, fx.flow.SetPayment(Payment{Method: MethodCard}))
	assert.Equal(t, StepContact, fx.flow.Step())
}

func TestPlaceOrder_RechecksFormsAndShipping(t *testing.T) {
	ctx := context.Background()

	fx := newFixture(t, 0)
	require.NoError(t, fx.cart.Add(ctx, 1))
	fx.toReview(t, "NY")

	fx.flow.mu.Lock()
	fx.flow.shipping.State = "TX"
	fx.flow.mu.Unlock()
	want := pricing.NewEngine(0.08).
		Compute(fx.cart.Snapshot(), nil, pricing.DefaultShipping().Cost("TX")).
		Display().GrandTotal

	order, err := fx.flow.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, order.Total)
}

func TestPlaceOrder_InvalidFormAtReview(t *testing.T) {
	ctx := context.Background()

	fx := newFixture(t, 0)
	require.NoError(t, fx.cart.Add(ctx, 1))
	fx.toReview(t, "NY")

	fx.flow.mu.Lock()
	fx.flow.contact.Email = "not-an-email"
	fx.flow.mu.Unlock()

	_, err := fx.flow.PlaceOrder(ctx)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, StepContact, verr.Step)
	assert.Equal(t, []string{"email"}, verr.Fields)
	assert.Equal(t, StepContact, fx.flow.Step())

	orders, err := fx.orders.ListOrders(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrder_CartEmptiedDuringDelay(t *testing.T) {
	ctx := context.Background()

	fx := newFixture(t, 200*time.Millisecond)
	require.NoError(t, fx.cart.Add(ctx, 1))
	fx.toReview(t, "NY")

	errc := make(chan error, 1)
	go func() {
		_, err := fx.flow.PlaceOrder(ctx)
		errc <- err
	}()

	require.Eventually(t, func() bool {
		_, err := fx.flow.ApplyPromo("")
		return errors.Is(err, ErrPlacing)
	}, time.Second, 5*time.Millisecond)
	fx.cart.Clear(ctx)

	require.ErrorIs(t, <-errc, ErrEmptyCart)
	assert.Equal(t, StepReview, fx.flow.Step())

	orders, err := fx.orders.ListOrders(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, orders)
}
