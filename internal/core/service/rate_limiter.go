package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightpath/school-portal/internal/core/ports"
)

// Endpoint-class presets. Auth endpoints get a strict window as brute-force
// defense; bulk registration-number generation is close to a one-off.
var (
	PresetAuth      = ports.Preset{Name: "auth", MaxRequests: 5, Window: 15 * time.Minute}
	PresetAPI       = ports.Preset{Name: "api", MaxRequests: 100, Window: 15 * time.Minute}
	PresetSensitive = ports.Preset{Name: "sensitive", MaxRequests: 10, Window: time.Hour}
)

// RateLimiter enforces fixed-window quotas per key. All counter state lives
// behind ports.CounterStore, so a multi-instance deployment can move to a
// shared backend without touching any caller.
type RateLimiter struct {
	store  ports.CounterStore
	logger zerolog.Logger
}

func NewRateLimiter(store ports.CounterStore, logger zerolog.Logger) *RateLimiter {
	return &RateLimiter{store: store, logger: logger}
}

// Check counts one request against the key's window and decides Allow or
// Reject. It never returns an error: a failing store allows the request and
// logs, since dropping all traffic on a counter outage is the worse failure.
func (l *RateLimiter) Check(ctx context.Context, key string, p ports.Preset) ports.Decision {
	count, resetAt, err := l.store.Incr(ctx, key, p.Window)
	if err != nil {
		l.logger.Error().Err(err).Str("key", key).Str("preset", p.Name).
			Msg("rate limit store unavailable, allowing request")
		// The store never produced a window; synthesize a reset time so the
		// response headers stay sane.
		return ports.Decision{Allowed: true, Limit: p.MaxRequests, Remaining: p.MaxRequests, ResetAt: time.Now().Add(p.Window)}
	}

	remaining := p.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	d := ports.Decision{Limit: p.MaxRequests, Remaining: remaining, ResetAt: resetAt}

	if count > int64(p.MaxRequests) {
		d.RetryAfter = time.Until(resetAt)
		l.logger.Warn().Str("key", key).Str("preset", p.Name).Int64("count", count).
			Msg("rate limit exceeded")
		return d
	}

	d.Allowed = true
	return d
}
