package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/brightpath/school-portal/internal/core/domain"
	"github.com/brightpath/school-portal/internal/core/ports"
)

const (
	maxAllocateAttempts = 5
	retryBackoff        = 25 * time.Millisecond
	fallbackSuffixBytes = 2 // 4 hex chars
)

// SequenceService allocates unique, year-scoped registration numbers. The
// uniqueness guarantee comes from the repository's atomic Reserve; this
// service's retry loop only converts "reservation lost" into "pick the next
// candidate".
type SequenceService struct {
	repo   ports.SequenceRepository
	audit  ports.AuditSink
	logger zerolog.Logger
	now    func() time.Time
}

// NewSequenceService wires the allocator. audit may be nil; fallback
// allocations then go unrecorded but still succeed.
func NewSequenceService(repo ports.SequenceRepository, audit ports.AuditSink, logger zerolog.Logger) *SequenceService {
	return &SequenceService{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// Allocate reserves the next free identifier in the scope derived from cfg
// and the current year. Lost races retry from a fresh read up to
// maxAllocateAttempts; after that a random-suffix fallback keeps the
// operation live. The returned Allocation marks which path produced it.
func (s *SequenceService) Allocate(ctx context.Context, cfg ports.ScopeConfig) (domain.Allocation, error) {
	cfg = cfg.WithDefaults()
	scope := s.scopePattern(cfg)

	var lastErr error
	for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return domain.Allocation{}, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}

		candidate, seq, err := s.nextCandidate(ctx, scope, cfg.Padding)
		if err != nil {
			lastErr = err
			continue
		}

		err = s.repo.Reserve(ctx, scope, candidate, seq)
		if err == nil {
			return domain.Allocation{ID: candidate}, nil
		}
		if errors.Is(err, domain.ErrSequenceTaken) {
			// A concurrent allocator won the race; re-read and go again.
			lastErr = err
			continue
		}
		// Store hiccup: retried under the same bounded policy.
		lastErr = err
	}

	return s.allocateFallback(ctx, scope, cfg.Padding, lastErr)
}

// AllocateBatch repeats Allocate n times sequentially. Reserving a contiguous
// block instead would widen the collision window for concurrent allocators.
func (s *SequenceService) AllocateBatch(ctx context.Context, cfg ports.ScopeConfig, n int) ([]domain.Allocation, error) {
	out := make([]domain.Allocation, 0, n)
	for i := 0; i < n; i++ {
		a, err := s.Allocate(ctx, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// nextCandidate reads the highest reserved position in the scope and proposes
// its successor, or 1 for a fresh scope. Positions past the padding width
// simply print wider, so the sequence keeps counting past 10^padding.
func (s *SequenceService) nextCandidate(ctx context.Context, scope string, padding int) (string, int, error) {
	seq := 0
	last, err := s.repo.LastSeq(ctx, scope)
	switch {
	case err == nil:
		seq = last
	case errors.Is(err, domain.ErrSequenceNotFound):
		// fresh scope, sequence starts at 1
	default:
		return "", 0, err
	}
	next := seq + 1
	return fmt.Sprintf("%s%0*d", scope, padding, next), next, nil
}

// allocateFallback trades the clean sequence for liveness: a short random
// suffix makes the identifier unique regardless of what the sequential
// candidates kept colliding with. The fallback records the same numeric
// position as the candidate it decorates, so the sequence advances past it.
func (s *SequenceService) allocateFallback(ctx context.Context, scope string, padding int, lastErr error) (domain.Allocation, error) {
	candidate, seq, err := s.nextCandidate(ctx, scope, padding)
	if err != nil {
		seq = 1
		candidate = fmt.Sprintf("%s%0*d", scope, padding, seq)
	}
	id := candidate + "-" + randomSuffix()

	if err := s.repo.Reserve(ctx, scope, id, seq); err != nil {
		s.logger.Error().Err(err).Str("scope", scope).Msg("fallback reservation failed")
		return domain.Allocation{}, fmt.Errorf("allocate %s: %w (last: %v)", scope, domain.ErrSequenceExhausted, lastErr)
	}

	s.logger.Warn().Str("id", id).Str("scope", scope).Msg("sequence allocated via fallback")
	if s.audit != nil {
		s.audit.Enqueue(domain.AuditEvent{
			Kind:    domain.AuditSequenceFallback,
			Subject: scope,
			Detail:  id,
			At:      s.now().UTC(),
		})
	}
	return domain.Allocation{ID: id, Fallback: true}, nil
}

// scopePattern derives the prefix+year partition all identifiers of this
// allocation share.
func (s *SequenceService) scopePattern(cfg ports.ScopeConfig) string {
	year := s.now().UTC().Year()
	if cfg.YearFormat == ports.YearFormatFull {
		return fmt.Sprintf("%s%04d", cfg.Prefix, year)
	}
	return fmt.Sprintf("%s%02d", cfg.Prefix, year%100)
}

func randomSuffix() string {
	b := make([]byte, fallbackSuffixBytes)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("%04x", time.Now().UnixNano()&0xFFFF)
	}
	return hex.EncodeToString(b)
}
