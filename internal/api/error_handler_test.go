package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brightpath/school-portal/internal/core/domain"
)

func testContext() echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestResolveError_DomainMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"account disabled", domain.ErrAccountDisabled, http.StatusForbidden, "account disabled"},
		{"expired token", domain.ErrTokenExpired, http.StatusUnauthorized, "invalid token"},
		{"bad signature", domain.ErrTokenSignatureInvalid, http.StatusUnauthorized, "invalid token"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"invalid role", domain.ErrInvalidRole, http.StatusBadRequest, "invalid role"},
		{"duplicate user", domain.ErrUserExists, http.StatusConflict, "user already exists"},
		{"sequence exhausted", domain.ErrSequenceExhausted, http.StatusInternalServerError, "could not allocate identifier"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, msg := resolveError(tc.err, zerolog.Nop(), testContext())
			if code != tc.wantCode || msg != tc.wantMsg {
				t.Fatalf("resolveError(%v) = (%d, %q), want (%d, %q)", tc.err, code, msg, tc.wantCode, tc.wantMsg)
			}
		})
	}
}

func TestResolveError_EchoHTTPErrorPassthrough(t *testing.T) {
	code, msg := resolveError(echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded"), zerolog.Nop(), testContext())
	if code != http.StatusTooManyRequests || msg != "rate limit exceeded" {
		t.Fatalf("got (%d, %q)", code, msg)
	}
}

func TestResolveError_UnexpectedErrorIsGeneric(t *testing.T) {
	code, msg := resolveError(errors.New("mongo: socket closed"), zerolog.Nop(), testContext())
	if code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", code)
	}
	if msg != "internal server error" {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}
