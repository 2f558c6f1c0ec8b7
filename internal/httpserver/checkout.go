package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/checkout"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/logging"
)

type CheckoutHTTP struct {
	Flow *checkout.Flow
}

func (h *CheckoutHTTP) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Flow.View())
}

func (h *CheckoutHTTP) Start(c echo.Context) error {
	h.Flow.Reset()
	return c.JSON(http.StatusCreated, h.Flow.View())
}

func (h *CheckoutHTTP) SetContact(c echo.Context) error {
	var req checkout.Contact
	if err := c.Bind(&req); err != nil {
		return h.badBody(c, "set.contact", err)
	}
	return h.respond(c, "set.contact", h.Flow.SetContact(req))
}

func (h *CheckoutHTTP) SetShipping(c echo.Context) error {
	var req checkout.Shipping
	if err := c.Bind(&req); err != nil {
		return h.badBody(c, "set.shipping", err)
	}
	return h.respond(c, "set.shipping", h.Flow.SetShipping(req))
}

func (h *CheckoutHTTP) SetPayment(c echo.Context) error {
	var req checkout.Payment
	if err := c.Bind(&req); err != nil {
		return h.badBody(c, "set.payment", err)
	}
	return h.respond(c, "set.payment", h.Flow.SetPayment(req))
}

func (h *CheckoutHTTP) Advance(c echo.Context) error {
	_, err := h.Flow.Advance()
	return h.respond(c, "advance.checkout", err)
}

func (h *CheckoutHTTP) Retreat(c echo.Context) error {
	var req struct {
		Step int `json:"step"`
	}
	if err := c.Bind(&req); err != nil {
		return h.badBody(c, "retreat.checkout", err)
	}
	_, err := h.Flow.Retreat(checkout.Step(req.Step))
	return h.respond(c, "retreat.checkout", err)
}

func (h *CheckoutHTTP) Place(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "place.order")

	order, err := h.Flow.PlaceOrder(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			l.Warn("place_order_error", "status", 408, "reason", "request ended during processing", "error", err)
			return c.JSON(http.StatusRequestTimeout, errBody("order processing canceled"))
		}
		return h.respond(c, "place.order", err)
	}

	l.Info("order placed", "order_id", order.ID)
	return c.JSON(http.StatusCreated, map[string]any{"order": order, "checkout": h.Flow.View()})
}

func (h *CheckoutHTTP) badBody(c echo.Context, handler string, err error) error {
	logging.FromContext(c.Request().Context()).Warn(handler+"_error", "status", 400, "reason", "invalid body", "error", err)
	return c.JSON(http.StatusBadRequest, errBody("invalid body"))
}

func (h *CheckoutHTTP) respond(c echo.Context, handler string, err error) error {
	l := logging.FromContext(c.Request().Context()).With("handler", handler)

	var verr *checkout.ValidationError
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, h.Flow.View())
	case errors.As(err, &verr):
		l.Warn(handler+"_error", "status", 422, "fields", verr.Fields)
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":  "please fill in all required " + verr.Step.String() + " information",
			"step":   int(verr.Step),
			"fields": verr.Fields,
		})
	case errors.Is(err, checkout.ErrOrderPlaced),
		errors.Is(err, checkout.ErrWrongStep),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrPlacing):
		l.Warn(handler+"_error", "status", 409, "error", err)
		return c.JSON(http.StatusConflict, errBody(err.Error()))
	default:
		l.Error(handler+"_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("internal error"))
	}
}
