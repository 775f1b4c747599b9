package ports

import (
	"context"

	"github.com/brightpath/school-portal/internal/core/domain"
)

// Year encodings for the sequence scope.
const (
	YearFormatShort = "short" // two digits, e.g. 25
	YearFormatFull  = "full"  // four digits, e.g. 2025
)

// ScopeConfig controls how one registration-number scope is derived.
// Identifiers are unique within (Prefix, year); a new year opens a fresh
// sequence space.
type ScopeConfig struct {
	Prefix     string
	YearFormat string
	Padding    int
}

// WithDefaults fills the portal defaults: REG prefix, two-digit year, three
// digits of zero padding.
func (c ScopeConfig) WithDefaults() ScopeConfig {
	if c.Prefix == "" {
		c.Prefix = "REG"
	}
	if c.YearFormat != YearFormatFull {
		c.YearFormat = YearFormatShort
	}
	if c.Padding <= 0 {
		c.Padding = 3
	}
	return c
}

// SequenceRepository is the persistence seam for allocated identifiers.
// Reserve must be an atomic insert-if-absent on id: when two allocators race
// for the same candidate, exactly one Reserve succeeds and the loser sees
// domain.ErrSequenceTaken. seq is the identifier's numeric position within
// the scope; LastSeq reads the highest reserved position, so ordering stays
// correct after the sequence outgrows its zero padding.
type SequenceRepository interface {
	LastSeq(ctx context.Context, scope string) (int, error)
	Reserve(ctx context.Context, scope, id string, seq int) error
}

type SequenceService interface {
	Allocate(ctx context.Context, cfg ScopeConfig) (domain.Allocation, error)
	AllocateBatch(ctx context.Context, cfg ScopeConfig, n int) ([]domain.Allocation, error)
}
