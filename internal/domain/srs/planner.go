package srs

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/engram-api/internal/domain"
)

// Candidate pairs a card ID with its memory state for session planning.
// Memory is nil for never-reviewed cards.
type Candidate struct {
	CardID uuid.UUID
	Memory *domain.MemoryState
}

// Plan selects and orders the cards for one review session from the
// caller-supplied pool. A candidate is eligible when it has never been
// reviewed or its due date is not after now. Eligible cards are ordered
// by due date ascending, with never-reviewed cards slotted at now (after
// strictly overdue cards, before future ones) and ties broken by card ID
// for determinism. The result is truncated to cfg.MaxCardsPerSession,
// keeping the earliest due.
//
// Plan reads its inputs and nothing else: no mutation, no I/O, identical
// inputs always yield the identical queue.
func Plan(candidates []Candidate, now time.Time, cfg SchedulingConfig) ([]uuid.UUID, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	type entry struct {
		id  uuid.UUID
		due time.Time
	}

	eligible := make([]entry, 0, len(candidates))
	for _, c := range candidates {
		switch {
		case c.Memory == nil:
			eligible = append(eligible, entry{id: c.CardID, due: now})
		case c.Memory.DueAt(now):
			eligible = append(eligible, entry{id: c.CardID, due: c.Memory.Due})
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		if !eligible[i].due.Equal(eligible[j].due) {
			return eligible[i].due.Before(eligible[j].due)
		}
		return bytes.Compare(eligible[i].id[:], eligible[j].id[:]) < 0
	})

	if len(eligible) > cfg.MaxCardsPerSession {
		eligible = eligible[:cfg.MaxCardsPerSession]
	}

	queue := make([]uuid.UUID, len(eligible))
	for i, e := range eligible {
		queue[i] = e.id
	}
	return queue, nil
}
