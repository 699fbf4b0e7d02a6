package srs

import (
	"fmt"
	"time"

	"github.com/phrazzld/engram-api/internal/domain"
)

// Service defines the interface for scheduling operations.
type Service interface {
	// Schedule computes the memory state resulting from one review.
	// prior is nil for a card's first review. now is the review moment;
	// if it precedes prior.LastReviewed, elapsed time clamps to zero.
	//
	// Returns domain.ErrInvalidRating for a rating outside the four-value
	// enumeration, domain.ErrInvalidConfig for an out-of-range config and
	// domain.ErrInvalidState when prior fails validation (corrupted
	// storage). Otherwise the call cannot fail: the recurrence is total.
	Schedule(
		prior *domain.MemoryState,
		rating domain.Rating,
		now time.Time,
		cfg SchedulingConfig,
	) (domain.MemoryState, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a scheduling service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a scheduling service with custom
// parameters. Panics if params is nil or invalid: parameters are wired at
// startup and a bad vector is a programming error, not a runtime
// condition.
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		panic("srs.NewServiceWithParams: params cannot be nil")
	}
	if err := params.Validate(); err != nil {
		panic(fmt.Sprintf("srs.NewServiceWithParams: %v", err))
	}
	return &defaultService{
		params: params,
	}
}

// Schedule implements the Service interface.
func (s *defaultService) Schedule(
	prior *domain.MemoryState,
	rating domain.Rating,
	now time.Time,
	cfg SchedulingConfig,
) (domain.MemoryState, error) {
	if !rating.IsValid() {
		return domain.MemoryState{}, fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(rating))
	}

	if err := cfg.Validate(); err != nil {
		return domain.MemoryState{}, err
	}

	if prior != nil {
		if err := prior.Validate(); err != nil {
			return domain.MemoryState{}, err
		}
	}

	next := schedule(s.params.Weights, prior, rating, now, cfg.DesiredRetention, s.params.MaxIntervalDays)
	return next, nil
}
