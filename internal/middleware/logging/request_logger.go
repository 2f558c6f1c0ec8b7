package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/logging"
)

type Config struct {
	Logger *slog.Logger
	// Quiet requests still get a scoped logger but no completion line.
	Quiet func(c echo.Context) bool
	// Requests slower than Slow are raised to warn. Zero disables the check.
	Slow time.Duration
}

// HealthProbes silences liveness and readiness polling.
func HealthProbes(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/health/")
}

func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return WithConfig(Config{Logger: base, Quiet: HealthProbes})
}

// WithConfig installs a request-scoped logger carrying the request id in the
// request context and logs one line per request once the handler returns.
func WithConfig(cfg Config) echo.MiddlewareFunc {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := requestID(c)

			l := cfg.Logger.With("request_id", rid, "method", req.Method, "route", c.Path())
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			if cfg.Quiet != nil && cfg.Quiet(c) {
				return nil
			}

			res := c.Response()
			took := time.Since(start)
			attrs := []any{
				"status", res.Status,
				"duration_ms", took.Milliseconds(),
				"bytes", res.Size,
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}
			l.Log(req.Context(), levelFor(res.Status, took, cfg.Slow), "request completed", attrs...)
			return nil
		}
	}
}

// requestID echoes the caller's X-Request-ID or mints one.
func requestID(c echo.Context) string {
	rid := c.Request().Header.Get(echo.HeaderXRequestID)
	if rid == "" {
		rid = uuid.NewString()
	}
	c.Response().Header().Set(echo.HeaderXRequestID, rid)
	return rid
}

func levelFor(status int, took, slow time.Duration) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case slow > 0 && took > slow:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
