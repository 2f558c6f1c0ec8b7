package adminguard

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/admin"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/logging"
)

const ContextKeyAdmin = "admin_username"

type Guard struct {
	Tokens   admin.Tokens
	Sessions *admin.SessionStore
	Now      func() time.Time
}

// RequireAdmin accepts a request only with a valid admin token cookie whose
// subject matches a stored session younger than 24 hours.
func (g *Guard) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "admin.guard")

		cookie, err := c.Cookie(admin.CookieName)
		if err != nil || cookie.Value == "" {
			l.Warn("admin_guard_denied", "status", 401, "reason", "missing admin cookie")
			return echo.NewHTTPError(http.StatusUnauthorized, "missing admin cookie")
		}
		user, err := g.Tokens.Parse(cookie.Value)
		if err != nil {
			l.Warn("admin_guard_denied", "status", 401, "reason", "bad token", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin token")
		}

		now := time.Now
		if g.Now != nil {
			now = g.Now
		}
		sess, err := g.Sessions.Check(ctx, now())
		switch {
		case errors.Is(err, admin.ErrSessionExpired), errors.Is(err, admin.ErrNoSession):
			l.Warn("admin_guard_denied", "status", 401, "reason", "no live session", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		case err != nil:
			l.Error("admin_guard_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if sess.Username != user {
			l.Warn("admin_guard_denied", "status", 401, "reason", "token does not match session")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin token")
		}

		c.Set(ContextKeyAdmin, user)
		return next(c)
	}
}
