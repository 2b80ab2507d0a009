package service

import (
	"context"
	"fmt"

	"github.com/agrodev/tractor-maintenance/internal/db"
)

// ServiceRequestSequence is the counter row backing service request slugs.
const ServiceRequestSequence = "serviceRequest"

// Sequencer produces unique, monotonically increasing human-readable
// identifiers from a persisted named counter.
type Sequencer struct {
	counters db.CounterCollection
}

// NewSequencer creates a sequencer over a counter collection.
func NewSequencer(counters db.CounterCollection) *Sequencer {
	return &Sequencer{counters: counters}
}

// NextSlug atomically increments the named counter and formats the new value
// as "SR-###". The padding is three digits; past 999 the number simply grows.
func (s *Sequencer) NextSlug(ctx context.Context, name string) (string, error) {
	seq, err := s.counters.NextSequence(ctx, name)
	if err != nil {
		return "", &PersistenceError{Op: "next sequence " + name, Err: err}
	}
	return fmt.Sprintf("SR-%03d", seq), nil
}
