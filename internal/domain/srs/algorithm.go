package srs

import (
	"math"
	"time"

	"github.com/phrazzld/engram-api/internal/domain"
)

// Forgetting-curve constants. decay is the exponent of the power-law
// curve; factor is chosen so that retrievability is exactly 0.9 when the
// elapsed time equals the stability: (1 + factor·S/S)^decay = 0.9.
const (
	decay  = -0.5
	factor = 19.0 / 81.0
)

// minStability is the floor every stability output is clamped to. A
// zero stability would make the forgetting curve degenerate (division
// by zero in retrievability) and fail MemoryState.Validate, so the
// recurrence never produces one even from edge-case weight vectors.
const minStability = 0.001

// retrievability returns the estimated probability of successful recall
// after elapsedDays at the given stability:
//
//	R(t, S) = (1 + factor·t/S)^decay
//
// R(0, S) = 1 and R(S, S) = 0.9. Strictly decreasing in t.
func retrievability(elapsedDays, stability float64) float64 {
	return math.Pow(1+factor*elapsedDays/stability, decay)
}

// initialStability returns the stability assigned by a card's first
// rating: one of the first four weights, floored at minStability.
func initialStability(w Weights, rating domain.Rating) float64 {
	return clampStability(w[rating.Index()])
}

// initialDifficulty returns the difficulty assigned by a card's first
// rating, centered on w4 for Good and shifted by w5 per rating step:
//
//	D0(r) = clamp(w4 − (r − 3)·w5, 1, 10)
func initialDifficulty(w Weights, rating domain.Rating) float64 {
	return clampDifficulty(w[4] - float64(int(rating)-int(domain.RatingGood))*w[5])
}

// nextDifficulty shifts difficulty by the rating's distance from Good and
// mean-reverts toward the initial-Easy baseline, so repeated identical
// ratings cannot pin difficulty at an extreme:
//
//	D'  = D − w6·(r − 3)
//	D'' = clamp(w7·D0(Easy) + (1 − w7)·D', 1, 10)
func nextDifficulty(w Weights, difficulty float64, rating domain.Rating) float64 {
	shifted := difficulty - w[6]*float64(int(rating)-int(domain.RatingGood))
	return clampDifficulty(w[7]*initialDifficulty(w, domain.RatingEasy) + (1-w[7])*shifted)
}

// nextRecallStability returns the post-review stability for a successful
// recall (Hard, Good or Easy):
//
//	S' = S·(e^w8 · (11 − D) · S^(−w9) · (e^(w10·(1−R)) − 1) · H · E + 1)
//
// where H = w15 for Hard, E = w16 for Easy, both 1 otherwise. Growth is
// largest when retrievability was low: recalling a nearly forgotten card
// is more informative than recalling a fresh one.
func nextRecallStability(
	w Weights,
	difficulty, stability, retr float64,
	rating domain.Rating,
) float64 {
	hardPenalty := 1.0
	if rating == domain.RatingHard {
		hardPenalty = w[15]
	}
	easyBonus := 1.0
	if rating == domain.RatingEasy {
		easyBonus = w[16]
	}

	growth := math.Exp(w[8]) *
		(11 - difficulty) *
		math.Pow(stability, -w[9]) *
		(math.Exp(w[10]*(1-retr)) - 1) *
		hardPenalty *
		easyBonus

	return clampStability(stability * (growth + 1))
}

// nextForgetStability returns the post-review stability after a failed
// recall (Again):
//
//	S' = min(S, w11 · D^(−w12) · ((S+1)^w13 − 1) · e^(w14·(1−R)))
//
// The min guarantees failure never increases stability.
func nextForgetStability(w Weights, difficulty, stability, retr float64) float64 {
	next := w[11] *
		math.Pow(difficulty, -w[12]) *
		(math.Pow(stability+1, w[13]) - 1) *
		math.Exp(w[14]*(1-retr))

	return clampStability(math.Min(stability, next))
}

// nextInterval derives the review interval in whole days from the new
// stability: the elapsed time at which the forgetting curve predicts
// retrievability equal to the desired retention.
//
//	I = clamp(round((S/factor)·(r_d^(1/decay) − 1)), 1, maxDays)
func nextInterval(stability, desiredRetention float64, maxDays int) int {
	raw := stability / factor * (math.Pow(desiredRetention, 1/decay) - 1)
	ivl := int(math.Round(raw))
	if ivl < 1 {
		return 1
	}
	if ivl > maxDays {
		return maxDays
	}
	return ivl
}

// elapsedDays returns the whole days between the last review and now,
// clamped at zero so clock skew never produces a negative elapsed time.
func elapsedDays(lastReviewed, now time.Time) float64 {
	days := math.Floor(now.Sub(lastReviewed).Hours() / 24)
	return math.Max(0, days)
}

// clampDifficulty bounds difficulty to the domain range [1,10].
func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, domain.MinDifficulty), domain.MaxDifficulty)
}

// clampStability floors stability at minStability.
func clampStability(s float64) float64 {
	return math.Max(s, minStability)
}

// schedule is the pure scheduling recurrence: given the prior memory
// state (nil for a first review), a validated rating, the review moment
// and the desired retention, it computes the next memory state. No I/O,
// no shared state; identical inputs always produce identical output.
//
// The success branch has no upper clamp on stability, only the derived
// interval is capped at maxDays.
func schedule(
	w Weights,
	prior *domain.MemoryState,
	rating domain.Rating,
	now time.Time,
	desiredRetention float64,
	maxDays int,
) domain.MemoryState {
	var stability, difficulty float64

	if prior == nil {
		stability = initialStability(w, rating)
		difficulty = initialDifficulty(w, rating)
	} else {
		retr := retrievability(elapsedDays(prior.LastReviewed, now), prior.Stability)
		difficulty = nextDifficulty(w, prior.Difficulty, rating)
		if rating.Success() {
			stability = nextRecallStability(w, difficulty, prior.Stability, retr, rating)
		} else {
			stability = nextForgetStability(w, difficulty, prior.Stability, retr)
		}
	}

	ivl := nextInterval(stability, desiredRetention, maxDays)

	return domain.MemoryState{
		Stability:    stability,
		Difficulty:   difficulty,
		Due:          now.AddDate(0, 0, ivl),
		LastReviewed: now,
	}
}
