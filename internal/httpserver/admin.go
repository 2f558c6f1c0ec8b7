package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/admin"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/logging"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
)

type AdminHTTP struct {
	Auth      admin.Authenticator
	Sessions  *admin.SessionStore
	Tokens    admin.Tokens
	Dashboard *admin.Dashboard

	// SecureCookie marks the session cookie Secure; enable it behind TLS.
	SecureCookie bool
}

func (h *AdminHTTP) cookie(value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     admin.CookieName,
		Value:    value,
		Path:     "/admin",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AdminHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.login")

	var req admin.Credentials
	if err := c.Bind(&req); err != nil {
		l.Warn("admin_login_error", "status", 400, "reason", "invalid body", "error", err)
		return c.JSON(http.StatusBadRequest, errBody("invalid body"))
	}

	sess, err := h.Auth.Authenticate(ctx, req)
	if err != nil {
		if errors.Is(err, admin.ErrInvalidCredentials) {
			l.Warn("admin_login_error", "status", 401, "username", req.Username)
			return c.JSON(http.StatusUnauthorized, errBody("invalid username or password"))
		}
		l.Error("admin_login_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("internal error"))
	}

	if err := h.Sessions.Save(ctx, *sess); err != nil {
		l.Error("admin_login_error", "status", 500, "reason", "save session", "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("internal error"))
	}
	token, err := h.Tokens.Sign(*sess)
	if err != nil {
		l.Error("admin_login_error", "status", 500, "reason", "sign token", "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("internal error"))
	}

	c.SetCookie(h.cookie(token, sess.LoginTime.Add(admin.SessionTTL)))
	l.Info("admin logged in", "username", sess.Username)
	return c.JSON(http.StatusOK, sess)
}

func (h *AdminHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.logout")

	if err := h.Sessions.Delete(ctx); err != nil {
		l.Error("admin_logout_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("internal error"))
	}
	c.SetCookie(h.cookie("", time.Unix(0, 0)))
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	products, err := h.Dashboard.ListProducts(ctx)
	if err != nil {
		return h.fail(c, "admin.list.products", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	var req models.AdminProduct
	if err := c.Bind(&req); err != nil {
		return h.fail(c, "admin.create.product", errInvalidBody)
	}
	p, err := h.Dashboard.CreateProduct(ctx, req)
	if err != nil {
		return h.fail(c, "admin.create.product", err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return h.fail(c, "admin.update.product", errInvalidBody)
	}
	var req models.AdminProduct
	if err := c.Bind(&req); err != nil {
		return h.fail(c, "admin.update.product", errInvalidBody)
	}
	p, err := h.Dashboard.UpdateProduct(ctx, id, req)
	if err != nil {
		return h.fail(c, "admin.update.product", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return h.fail(c, "admin.delete.product", errInvalidBody)
	}
	if err := h.Dashboard.DeleteProduct(ctx, id); err != nil {
		return h.fail(c, "admin.delete.product", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	orders, err := h.Dashboard.ListOrders(ctx, c.QueryParam("status"))
	if err != nil {
		return h.fail(c, "admin.list.orders", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHTTP) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return h.fail(c, "admin.update.order", errInvalidBody)
	}
	o, err := h.Dashboard.UpdateOrderStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		return h.fail(c, "admin.update.order", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *AdminHTTP) SearchCustomers(c echo.Context) error {
	ctx := c.Request().Context()
	customers, err := h.Dashboard.SearchCustomers(ctx, c.QueryParam("q"))
	if err != nil {
		return h.fail(c, "admin.search.customers", err)
	}
	return c.JSON(http.StatusOK, customers)
}

func (h *AdminHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	stats, err := h.Dashboard.Stats(ctx)
	if err != nil {
		return h.fail(c, "admin.stats", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHTTP) GetSettings(c echo.Context) error {
	ctx := c.Request().Context()
	s, err := h.Dashboard.Settings(ctx)
	if err != nil {
		return h.fail(c, "admin.get.settings", err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *AdminHTTP) SaveSettings(c echo.Context) error {
	ctx := c.Request().Context()
	var req models.Settings
	if err := c.Bind(&req); err != nil {
		return h.fail(c, "admin.save.settings", errInvalidBody)
	}
	if err := h.Dashboard.SaveSettings(ctx, req); err != nil {
		return h.fail(c, "admin.save.settings", err)
	}
	return c.JSON(http.StatusOK, req)
}

var errInvalidBody = errors.New("invalid body")

func (h *AdminHTTP) fail(c echo.Context, handler string, err error) error {
	l := logging.FromContext(c.Request().Context()).With("handler", handler)

	switch {
	case errors.Is(err, errInvalidBody):
		l.Warn(handler+"_error", "status", 400, "error", err)
		return c.JSON(http.StatusBadRequest, errBody(err.Error()))
	case errors.Is(err, admin.ErrNotFound):
		l.Warn(handler+"_error", "status", 404, "error", err)
		return c.JSON(http.StatusNotFound, errBody(err.Error()))
	case errors.Is(err, admin.ErrValidation), errors.Is(err, admin.ErrInvalidStatus):
		l.Warn(handler+"_error", "status", 422, "error", err)
		return c.JSON(http.StatusUnprocessableEntity, errBody(err.Error()))
	default:
		l.Error(handler+"_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("internal error"))
	}
}
