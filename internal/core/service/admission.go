package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/brightpath/school-portal/internal/core/domain"
	"github.com/brightpath/school-portal/internal/core/ports"
)

// AdmissionStatus is the composite outcome of the gate for one request.
type AdmissionStatus int

const (
	Admitted AdmissionStatus = iota
	RateLimited
	Unauthenticated
	Forbidden
)

// AdmissionRequest carries everything the gate needs to decide one request.
// BearerToken is empty when the request carried no usable Authorization
// header; RequiredRoles empty means any authenticated role is admitted.
type AdmissionRequest struct {
	RateKey       string
	Preset        ports.Preset
	BearerToken   string
	RequiredRoles []string
}

// AdmissionResult is the gate's decision. Claims is set when the token
// verified; Decision reflects the rate check that always runs first; Cause
// holds the token error behind Unauthenticated for logging.
type AdmissionResult struct {
	Status   AdmissionStatus
	Claims   *ports.Claims
	Decision ports.Decision
	Cause    error
}

// AdmissionGate composes the rate limiter, token verification, and the role
// check into a single decision. It holds no state of its own.
type AdmissionGate struct {
	limiter ports.RateLimiter
	tokens  ports.TokenService
	logger  zerolog.Logger
}

func NewAdmissionGate(limiter ports.RateLimiter, tokens ports.TokenService, logger zerolog.Logger) *AdmissionGate {
	return &AdmissionGate{limiter: limiter, tokens: tokens, logger: logger}
}

// Admit runs the checks in fixed order: quota first, so abusive traffic is
// rejected before any signature work is paid for and failed-login floods are
// throttled whether or not credentials are ever valid; then the token; then
// the role.
func (g *AdmissionGate) Admit(ctx context.Context, req AdmissionRequest) AdmissionResult {
	dec := g.limiter.Check(ctx, req.RateKey, req.Preset)
	if !dec.Allowed {
		return AdmissionResult{Status: RateLimited, Decision: dec}
	}

	if req.BearerToken == "" {
		return AdmissionResult{Status: Unauthenticated, Decision: dec, Cause: domain.ErrTokenMissing}
	}

	claims, err := g.tokens.VerifyAccess(req.BearerToken)
	if err != nil {
		g.logger.Debug().Err(err).Str("key", req.RateKey).Msg("token rejected")
		return AdmissionResult{Status: Unauthenticated, Decision: dec, Cause: err}
	}

	if len(req.RequiredRoles) > 0 && !roleAllowed(claims.Role, req.RequiredRoles) {
		return AdmissionResult{Status: Forbidden, Decision: dec, Claims: claims}
	}

	return AdmissionResult{Status: Admitted, Decision: dec, Claims: claims}
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
