package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/brightpath/school-portal/internal/core/domain"
	"github.com/brightpath/school-portal/internal/core/ports"
)

// stubAuthService returns canned results so the handler's binding, validation,
// and error passthrough can be tested in isolation.
type stubAuthService struct {
	user       *domain.User
	pair       domain.TokenPair
	loginErr   error
	regErr     error
	refreshErr error
}

func (s *stubAuthService) Register(_ context.Context, input ports.RegisterInput) (*domain.User, error) {
	if s.regErr != nil {
		return nil, s.regErr
	}
	return &domain.User{
		ID:       "user_1",
		FullName: input.FullName,
		Email:    input.Email,
		Role:     input.Role,
		Status:   domain.StatusActive,
	}, nil
}

func (s *stubAuthService) Login(context.Context, string, string) (domain.TokenPair, *domain.User, error) {
	if s.loginErr != nil {
		return domain.TokenPair{}, nil, s.loginErr
	}
	return s.pair, s.user, nil
}

func (s *stubAuthService) Refresh(context.Context, string) (domain.TokenPair, error) {
	if s.refreshErr != nil {
		return domain.TokenPair{}, s.refreshErr
	}
	return s.pair, nil
}

func newHandlerContext(body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Login_Success(t *testing.T) {
	svc := &stubAuthService{
		pair: domain.TokenPair{AccessToken: "acc", RefreshToken: "ref"},
		user: &domain.User{ID: "user_1", Email: "a@school.test", Role: domain.RoleTeacher},
	}
	h := NewAuthHandler(svc)

	c, rec := newHandlerContext(`{"email":"a@school.test","password":"s3cret-pass"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"access_token":"acc"`) || !strings.Contains(body, `"refresh_token":"ref"`) {
		t.Fatalf("token pair missing from body: %s", body)
	}
	if strings.Contains(body, "password") {
		t.Fatalf("response leaks password material: %s", body)
	}
}

func TestAuthHandler_Login_InvalidCredentialsPassthrough(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{loginErr: domain.ErrInvalidCredentials})

	c, _ := newHandlerContext(`{"email":"a@school.test","password":"wrong-pass"}`)
	err := h.Login(c)
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthHandler_Login_RejectsBadPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	cases := []string{
		`{not json`,
		`{"email":"not-an-email","password":"x"}`,
		`{"password":"x"}`,
		`{"email":"a@school.test"}`,
	}
	for _, body := range cases {
		c, _ := newHandlerContext(body)
		err := h.Login(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("body %q: err = %v, want 400", body, err)
		}
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{pair: domain.TokenPair{AccessToken: "acc2", RefreshToken: "ref"}})

	c, rec := newHandlerContext(`{"refresh_token":"ref"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"access_token":"acc2"`) {
		t.Fatalf("fresh access token missing: %s", rec.Body.String())
	}
}

func TestAuthHandler_Refresh_ExpiredTokenPassthrough(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{refreshErr: domain.ErrTokenExpired})

	c, _ := newHandlerContext(`{"refresh_token":"stale"}`)
	if err := h.Refresh(c); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newHandlerContext(`{"full_name":"New Teacher","email":"t@school.test","password":"longenough","role":"teacher"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"email":"t@school.test"`) {
		t.Fatalf("created user missing from body: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_ValidationRules(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	cases := []string{
		// short password
		`{"full_name":"N","email":"t@school.test","password":"short","role":"teacher"}`,
		// role outside the enum
		`{"full_name":"N","email":"t@school.test","password":"longenough","role":"superuser"}`,
	}
	for _, body := range cases {
		c, _ := newHandlerContext(body)
		err := h.Register(c)
		var he *echo.HTTPError
		if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
			t.Fatalf("body %q: err = %v, want 400", body, err)
		}
	}
}

func TestAuthHandler_Register_DuplicatePassthrough(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{regErr: domain.ErrUserExists})

	c, _ := newHandlerContext(`{"full_name":"N","email":"t@school.test","password":"longenough","role":"teacher"}`)
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("err = %v, want ErrUserExists", err)
	}
}
