package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/brightpath/school-portal/internal/core/domain"
	"github.com/brightpath/school-portal/internal/core/ports"
)

const (
	defaultAccessTTL  = 7 * 24 * time.Hour
	defaultRefreshTTL = 30 * 24 * time.Hour
)

// TokenConfig carries the signing material, TTLs, and clock for the token
// service. Both secrets are required and must differ; a shared secret would
// let an access token pass refresh verification.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// RotateRefresh re-issues the refresh token on every Refresh call instead
	// of reusing the presented one.
	RotateRefresh bool
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// TokenService issues and verifies the HS256-signed session token pair.
// Tokens are stateless and self-describing: verification needs no store
// lookup, which trades instant revocation for horizontal scalability.
type TokenService struct {
	cfg TokenConfig
}

// NewTokenService validates the signing configuration once at startup; a
// missing secret is a configuration error, never a per-request failure.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token service: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("token service: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenService{cfg: cfg}, nil
}

// Issue signs an access/refresh pair for the given principal.
func (s *TokenService) Issue(user *domain.User) (domain.TokenPair, error) {
	access, err := s.sign(user, ports.TokenUseAccess, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.sign(user, ports.TokenUseRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess checks an access token's signature and expiry and returns its
// claims. Failures map onto the domain token-error taxonomy.
func (s *TokenService) VerifyAccess(token string) (*ports.Claims, error) {
	return s.verify(token, ports.TokenUseAccess, s.cfg.AccessSecret)
}

// VerifyRefresh is VerifyAccess for the refresh token class.
func (s *TokenService) VerifyRefresh(token string) (*ports.Claims, error) {
	return s.verify(token, ports.TokenUseRefresh, s.cfg.RefreshSecret)
}

// Refresh verifies the presented refresh token and re-issues an access token
// with a fresh issued-at/expiry. The refresh token is reused as-is unless
// rotation is enabled.
func (s *TokenService) Refresh(refreshToken string) (domain.TokenPair, error) {
	claims, err := s.VerifyRefresh(refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}

	user := &domain.User{ID: claims.Subject, Email: claims.Email, Role: claims.Role}
	access, err := s.sign(user, ports.TokenUseAccess, s.cfg.AccessSecret, s.cfg.AccessTTL)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	pair := domain.TokenPair{AccessToken: access, RefreshToken: refreshToken}
	if s.cfg.RotateRefresh {
		rotated, err := s.sign(user, ports.TokenUseRefresh, s.cfg.RefreshSecret, s.cfg.RefreshTTL)
		if err != nil {
			return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
		}
		pair.RefreshToken = rotated
	}
	return pair, nil
}

func (s *TokenService) sign(user *domain.User, use, secret string, ttl time.Duration) (string, error) {
	now := s.cfg.Now().UTC()
	claims := ports.Claims{
		Email:    user.Email,
		Role:     user.Role,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *TokenService) verify(token, use, secret string) (*ports.Claims, error) {
	claims := &ports.Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.cfg.Now))
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if !parsed.Valid {
		return nil, domain.ErrTokenMalformed
	}
	// Secrets already keep the classes apart; the claim check guards against
	// a future signer that shares key material.
	if claims.TokenUse != use {
		return nil, domain.ErrTokenMalformed
	}
	return claims, nil
}

// classifyTokenError maps jwt parse failures onto the domain taxonomy.
// Garbage input that never was a token lands on Malformed.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return domain.ErrTokenSignatureInvalid
	default:
		return domain.ErrTokenMalformed
	}
}
