package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/brightpath/school-portal/internal/api/metrics"
	"github.com/brightpath/school-portal/internal/core/ports"
)

// KeyFunc derives the rate-limit key for a request.
type KeyFunc func(c echo.Context) string

// DefaultKey groups requests by client IP and path.
func DefaultKey(c echo.Context) string {
	return c.RealIP() + ":" + c.Request().URL.Path
}

// BySubject keys the limit on the caller's identity rather than the address.
// Claims are not in the context yet when the quota runs (the gate checks the
// quota before it verifies the token), so the key is derived from the bearer
// token itself: a digest of the presented credential. Requests without a
// bearer token fall back to the client IP.
func BySubject(c echo.Context) string {
	if sub, ok := c.Get("subject").(string); ok && sub != "" {
		return sub + ":" + c.Request().URL.Path
	}
	if token, ok := bearerToken(c); ok && token != "" {
		sum := sha256.Sum256([]byte(token))
		return "tok:" + hex.EncodeToString(sum[:8]) + ":" + c.Request().URL.Path
	}
	return DefaultKey(c)
}

// RateLimit enforces a preset quota on unauthenticated endpoints (login,
// refresh). Guarded routes get the same check through Admission instead.
func RateLimit(limiter ports.RateLimiter, preset ports.Preset, key KeyFunc) echo.MiddlewareFunc {
	if key == nil {
		key = DefaultKey
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			dec := limiter.Check(c.Request().Context(), key(c), preset)
			setRateHeaders(c, dec)
			if !dec.Allowed {
				metrics.RateLimitDecisionsTotal.WithLabelValues(preset.Name, "reject").Inc()
				c.Response().Header().Set("Retry-After", strconv.Itoa(dec.RetryAfterSeconds()))
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			metrics.RateLimitDecisionsTotal.WithLabelValues(preset.Name, "allow").Inc()
			return next(c)
		}
	}
}

// setRateHeaders exposes the window state on every response, allowed or not.
func setRateHeaders(c echo.Context, d ports.Decision) {
	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
}
