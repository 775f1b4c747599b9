package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightpath/school-portal/internal/core/ports"
)

// stubCounterStore is an in-test CounterStore with a fixed window end and an
// optional injected failure.
type stubCounterStore struct {
	mu      sync.Mutex
	counts  map[string]int64
	resetAt time.Time
	err     error
}

func newStubCounterStore() *stubCounterStore {
	return &stubCounterStore{
		counts:  make(map[string]int64),
		resetAt: time.Now().Add(time.Minute),
	}
}

func (s *stubCounterStore) Incr(_ context.Context, key string, _ time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, time.Time{}, s.err
	}
	s.counts[key]++
	return s.counts[key], s.resetAt, nil
}

func (s *stubCounterStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, key)
	return nil
}

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	store := newStubCounterStore()
	limiter := NewRateLimiter(store, zerolog.Nop())
	preset := ports.Preset{Name: "test", MaxRequests: 3, Window: time.Minute}

	for i := 1; i <= 3; i++ {
		d := limiter.Check(context.Background(), "client-1", preset)
		if !d.Allowed {
			t.Fatalf("request %d unexpectedly rejected", i)
		}
		if want := 3 - i; d.Remaining != want {
			t.Fatalf("request %d: remaining = %d, want %d", i, d.Remaining, want)
		}
		if d.Limit != 3 {
			t.Fatalf("request %d: limit = %d, want 3", i, d.Limit)
		}
	}

	d := limiter.Check(context.Background(), "client-1", preset)
	if d.Allowed {
		t.Fatalf("request over limit unexpectedly allowed")
	}
	if d.Remaining != 0 {
		t.Fatalf("rejected decision remaining = %d, want 0", d.Remaining)
	}
	if d.RetryAfter <= 0 {
		t.Fatalf("rejected decision RetryAfter = %s, want > 0", d.RetryAfter)
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	store := newStubCounterStore()
	limiter := NewRateLimiter(store, zerolog.Nop())
	preset := ports.Preset{Name: "test", MaxRequests: 1, Window: time.Minute}

	if d := limiter.Check(context.Background(), "client-a", preset); !d.Allowed {
		t.Fatalf("first request for client-a rejected")
	}
	if d := limiter.Check(context.Background(), "client-a", preset); d.Allowed {
		t.Fatalf("second request for client-a allowed")
	}
	if d := limiter.Check(context.Background(), "client-b", preset); !d.Allowed {
		t.Fatalf("client-b should not share client-a's window")
	}
}

func TestRateLimiter_FailsOpenOnStoreError(t *testing.T) {
	store := newStubCounterStore()
	store.err = errors.New("backend down")
	limiter := NewRateLimiter(store, zerolog.Nop())
	preset := ports.Preset{Name: "test", MaxRequests: 1, Window: time.Minute}

	for i := 0; i < 5; i++ {
		d := limiter.Check(context.Background(), "client-1", preset)
		if !d.Allowed {
			t.Fatalf("request %d rejected while store is down", i)
		}
		if d.ResetAt.IsZero() || !d.ResetAt.After(time.Now()) {
			t.Fatalf("request %d: fail-open decision carries unusable reset time %v", i, d.ResetAt)
		}
	}
}

func TestDecision_RetryAfterSeconds(t *testing.T) {
	cases := []struct {
		retryAfter time.Duration
		want       int
	}{
		{90 * time.Second, 90},
		{1500 * time.Millisecond, 2},
		{200 * time.Millisecond, 1},
		{0, 1},
	}
	for _, tc := range cases {
		d := ports.Decision{RetryAfter: tc.retryAfter}
		if got := d.RetryAfterSeconds(); got != tc.want {
			t.Errorf("RetryAfterSeconds(%s) = %d, want %d", tc.retryAfter, got, tc.want)
		}
	}
}
