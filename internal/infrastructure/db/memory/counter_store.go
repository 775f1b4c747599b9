// Package memory provides the in-process rate-limit counter backend. State is
// local to the process, so limits hold per instance, not across a fleet; the
// Redis store covers that case behind the same interface.
package memory

import (
	"context"
	"sync"
	"time"
)

const defaultSweepInterval = 5 * time.Minute

type entry struct {
	count   int64
	resetAt time.Time
}

// CounterStore keeps fixed-window counters in a mutex-guarded map. Increment
// and window reset happen under one lock, so concurrent requests to the same
// key never lose updates. A background sweep drops lapsed windows to bound
// memory growth from long-tail keys.
type CounterStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// NewCounterStore starts the sweep goroutine and returns the store. A
// non-positive sweepEvery falls back to the default interval. Call Close to
// stop the sweep.
func NewCounterStore(sweepEvery time.Duration) *CounterStore {
	if sweepEvery <= 0 {
		sweepEvery = defaultSweepInterval
	}
	s := &CounterStore{
		entries: make(map[string]*entry),
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go s.sweepLoop(sweepEvery)
	return s
}

// Incr counts one request against the key's window. A fresh key, or a key
// whose window has lapsed, restarts at count 1 with a new reset time.
func (s *CounterStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Time, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(window)}
		s.entries[key] = e
		return 1, e.resetAt, nil
	}

	e.count++
	return e.count, e.resetAt, nil
}

func (s *CounterStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Close stops the background sweep. Safe to call more than once.
func (s *CounterStore) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *CounterStore) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep(s.now())
		}
	}
}

// sweep deletes entries whose window has lapsed. It runs under the same lock
// as Incr, so it can never delete an entry a concurrent request just
// refreshed.
func (s *CounterStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, e := range s.entries {
		if !now.Before(e.resetAt) {
			delete(s.entries, key)
		}
	}
}
