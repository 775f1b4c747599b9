package ports

import (
	"context"
	"math"
	"time"
)

// Preset bundles the quota policy for one endpoint class.
type Preset struct {
	Name        string
	MaxRequests int
	Window      time.Duration
}

// Decision is the outcome of one rate-limit check. Reject is a normal result,
// not an error: every check resolves to a Decision.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
	ResetAt    time.Time
}

// RetryAfterSeconds rounds the retry hint up to whole seconds, minimum 1, for
// use in a Retry-After header.
func (d Decision) RetryAfterSeconds() int {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// CounterStore is the storage seam behind the rate limiter. Incr counts one
// request against the key's current window, starting a new window at count 1
// when none is active, and reports the post-increment count and when the
// window resets. Implementations must make the increment atomic: two
// concurrent Incr calls for the same key must observe distinct counts.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int64, resetAt time.Time, err error)
	Delete(ctx context.Context, key string) error
}

// RateLimiter answers Allow/Reject for a key against a preset quota.
type RateLimiter interface {
	Check(ctx context.Context, key string, p Preset) Decision
}
