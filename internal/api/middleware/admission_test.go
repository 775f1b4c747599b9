package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brightpath/school-portal/internal/core/domain"
	"github.com/brightpath/school-portal/internal/core/ports"
	"github.com/brightpath/school-portal/internal/core/service"
	"github.com/brightpath/school-portal/internal/infrastructure/db/memory"
)

type admissionFixture struct {
	echo   *echo.Echo
	tokens *service.TokenService
}

// newAdmissionFixture wires a guarded admin route through the real gate,
// limiter, and token service.
func newAdmissionFixture(t *testing.T, preset ports.Preset) *admissionFixture {
	return newAdmissionFixtureOpts(t, AdmissionOptions{
		Preset: preset,
		Roles:  []string{domain.RoleAdmin},
	})
}

func newAdmissionFixtureOpts(t *testing.T, opts AdmissionOptions) *admissionFixture {
	t.Helper()

	tokens, err := service.NewTokenService(service.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	store := memory.NewCounterStore(time.Hour)
	t.Cleanup(store.Close)
	limiter := service.NewRateLimiter(store, zerolog.Nop())
	gate := service.NewAdmissionGate(limiter, tokens, zerolog.Nop())

	e := echo.New()
	e.POST("/admin/only", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"subject": c.Get("subject"),
			"role":    c.Get("role"),
		})
	}, Admission(gate, opts))

	return &admissionFixture{echo: e, tokens: tokens}
}

func (f *admissionFixture) accessToken(t *testing.T, role string) string {
	return f.accessTokenFor(t, "user_9", role)
}

func (f *admissionFixture) accessTokenFor(t *testing.T, id, role string) string {
	t.Helper()
	pair, err := f.tokens.Issue(&domain.User{
		ID:     id,
		Email:  id + "@school.test",
		Role:   role,
		Status: domain.StatusActive,
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return pair.AccessToken
}

func (f *admissionFixture) request(token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/only", nil)
	req.Header.Set(echo.HeaderXRealIP, "10.0.0.1")
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func TestAdmission_MissingAuthorizationHeader(t *testing.T) {
	f := newAdmissionFixture(t, ports.Preset{Name: "api", MaxRequests: 100, Window: 15 * time.Minute})

	rec := f.request("")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAdmission_MalformedBearerScheme(t *testing.T) {
	f := newAdmissionFixture(t, ports.Preset{Name: "api", MaxRequests: 100, Window: 15 * time.Minute})

	req := httptest.NewRequest(http.MethodPost, "/admin/only", nil)
	req.Header.Set(echo.HeaderAuthorization, "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAdmission_InvalidToken(t *testing.T) {
	f := newAdmissionFixture(t, ports.Preset{Name: "api", MaxRequests: 100, Window: 15 * time.Minute})

	rec := f.request("not.a.token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAdmission_WrongRole(t *testing.T) {
	f := newAdmissionFixture(t, ports.Preset{Name: "api", MaxRequests: 100, Window: 15 * time.Minute})

	rec := f.request(f.accessToken(t, domain.RoleStudent))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAdmission_AdmitsAndInjectsIdentity(t *testing.T) {
	f := newAdmissionFixture(t, ports.Preset{Name: "api", MaxRequests: 100, Window: 15 * time.Minute})

	rec := f.request(f.accessToken(t, domain.RoleAdmin))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{`"subject":"user_9"`, `"role":"admin"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body %q missing %q", body, want)
		}
	}
	if rec.Header().Get("X-RateLimit-Limit") == "" {
		t.Fatalf("rate headers missing on admitted response")
	}
}

func TestAdmission_RateLimitShortCircuits(t *testing.T) {
	f := newAdmissionFixture(t, ports.Preset{Name: "tight", MaxRequests: 2, Window: time.Hour})
	token := f.accessToken(t, domain.RoleAdmin)

	for i := 1; i <= 2; i++ {
		if rec := f.request(token); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	rec := f.request(token)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("Retry-After missing on 429")
	}
}

// Two admins behind one NAT address must not share a BySubject window.
func TestAdmission_BySubjectKeysPerCredential(t *testing.T) {
	f := newAdmissionFixtureOpts(t, AdmissionOptions{
		Preset: ports.Preset{Name: "tight", MaxRequests: 2, Window: time.Hour},
		Roles:  []string{domain.RoleAdmin},
		Key:    BySubject,
	})

	tokenA := f.accessTokenFor(t, "admin-a", domain.RoleAdmin)
	tokenB := f.accessTokenFor(t, "admin-b", domain.RoleAdmin)

	for i := 1; i <= 2; i++ {
		if rec := f.request(tokenA); rec.Code != http.StatusOK {
			t.Fatalf("admin-a request %d: status = %d, want 200", i, rec.Code)
		}
	}

	// admin-a exhausted its own window.
	if rec := f.request(tokenA); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("admin-a over quota: status = %d, want 429", rec.Code)
	}

	// admin-b shares the IP but carries its own credential, so it gets a
	// fresh window.
	if rec := f.request(tokenB); rec.Code != http.StatusOK {
		t.Fatalf("admin-b first request: status = %d, want 200", rec.Code)
	}
}
