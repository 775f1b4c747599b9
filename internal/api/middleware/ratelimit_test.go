package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brightpath/school-portal/internal/core/ports"
	"github.com/brightpath/school-portal/internal/core/service"
	"github.com/brightpath/school-portal/internal/infrastructure/db/memory"
)

func newLimitedEcho(t *testing.T, preset ports.Preset) *echo.Echo {
	t.Helper()
	store := memory.NewCounterStore(time.Hour)
	t.Cleanup(store.Close)

	limiter := service.NewRateLimiter(store, zerolog.Nop())

	e := echo.New()
	e.POST("/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(limiter, preset, nil))
	return e
}

func doLogin(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set(echo.HeaderXRealIP, ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_AllowsWithinQuotaAndSetsHeaders(t *testing.T) {
	e := newLimitedEcho(t, ports.Preset{Name: "auth", MaxRequests: 5, Window: 15 * time.Minute})

	rec := doLogin(e, "10.0.0.1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("X-RateLimit-Limit = %q, want 5", got)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "4" {
		t.Fatalf("X-RateLimit-Remaining = %q, want 4", got)
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatalf("X-RateLimit-Reset missing")
	}
}

func TestRateLimit_SixthLoginAttemptIsRejected(t *testing.T) {
	e := newLimitedEcho(t, ports.Preset{Name: "auth", MaxRequests: 5, Window: 15 * time.Minute})

	for i := 1; i <= 5; i++ {
		if rec := doLogin(e, "10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("attempt %d: status = %d, want 200", i, rec.Code)
		}
	}

	rec := doLogin(e, "10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("attempt 6: status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Fatalf("X-RateLimit-Remaining = %q, want 0", got)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("Retry-After missing on 429")
	}

	// A different client keeps its own window.
	if rec := doLogin(e, "10.0.0.2"); rec.Code != http.StatusOK {
		t.Fatalf("other client: status = %d, want 200", rec.Code)
	}
}
