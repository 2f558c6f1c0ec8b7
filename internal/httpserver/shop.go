package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/cart"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/checkout"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/dispatch"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/logging"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/pricing"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/wishlist"
)

// ShopHTTP turns cart, wishlist and promo requests into dispatcher intents.
type ShopHTTP struct {
	Dispatcher *dispatch.Dispatcher
}

func (h *ShopHTTP) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Dispatcher.View())
}

func (h *ShopHTTP) GetWishlist(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Dispatcher.View().Wishlist)
}

func (h *ShopHTTP) AddToCart(c echo.Context) error {
	var req struct {
		ProductID int `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil || req.ProductID == 0 {
		logging.FromContext(c.Request().Context()).Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return c.JSON(http.StatusBadRequest, errBody("product_id required"))
	}
	return h.dispatch(c, "add.cart", http.StatusCreated, dispatch.AddToCart{ProductID: req.ProductID})
}

func (h *ShopHTTP) ChangeQuantity(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid product id"))
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.Bind(&req); err != nil {
		logging.FromContext(c.Request().Context()).Warn("change_quantity_error", "status", 400, "reason", "invalid body", "error", err)
		return c.JSON(http.StatusBadRequest, errBody("invalid body"))
	}
	return h.dispatch(c, "change.quantity", http.StatusOK, dispatch.ChangeQuantity{ProductID: id, Delta: req.Delta})
}

func (h *ShopHTTP) RemoveFromCart(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid product id"))
	}
	return h.dispatch(c, "remove.cart", http.StatusOK, dispatch.RemoveFromCart{ProductID: id})
}

func (h *ShopHTTP) ClearCart(c echo.Context) error {
	return h.dispatch(c, "clear.cart", http.StatusOK, dispatch.ClearCart{})
}

func (h *ShopHTTP) ToggleWishlist(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errBody("invalid product id"))
	}
	return h.dispatch(c, "toggle.wishlist", http.StatusOK, dispatch.ToggleWishlist{ProductID: id})
}

func (h *ShopHTTP) ApplyPromo(c echo.Context) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		logging.FromContext(c.Request().Context()).Warn("apply_promo_error", "status", 400, "reason", "invalid body", "error", err)
		return c.JSON(http.StatusBadRequest, errBody("invalid body"))
	}
	return h.dispatch(c, "apply.promo", http.StatusOK, dispatch.ApplyPromo{Code: req.Code})
}

func (h *ShopHTTP) dispatch(c echo.Context, handler string, okStatus int, in dispatch.Intent) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	res, err := h.Dispatcher.Dispatch(ctx, in)
	switch {
	case err == nil:
		if res.Degraded {
			l.Warn("storage_degraded", "reason", "state kept in memory only")
		}
		return c.JSON(okStatus, res)
	case errors.Is(err, cart.ErrNotFound), errors.Is(err, wishlist.ErrNotFound):
		l.Warn(handler+"_error", "status", 404, "error", err)
		return c.JSON(http.StatusNotFound, errBody("product not found"))
	case errors.Is(err, pricing.ErrInvalidPromo):
		l.Warn(handler+"_error", "status", 422, "error", err)
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{"error": "invalid promo code", "cart": res})
	case errors.Is(err, checkout.ErrOrderPlaced), errors.Is(err, checkout.ErrPlacing):
		l.Warn(handler+"_error", "status", 409, "error", err)
		return c.JSON(http.StatusConflict, errBody(err.Error()))
	default:
		l.Error(handler+"_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("internal error"))
	}
}
