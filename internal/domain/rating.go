package domain

import (
	"fmt"
	"strings"
)

// Rating represents the user's self-reported recall outcome at a review.
// The numeric values 1..4 are meaningful: the scheduling recurrence uses
// the rating's distance from Good (r - 3) to shift difficulty, and the
// values are what the database persists in smallint columns.
type Rating int

// Possible rating values, totally ordered Again < Hard < Good < Easy.
const (
	RatingAgain Rating = iota + 1 // Failed to recall.
	RatingHard                    // Recalled with significant effort.
	RatingGood                    // Recalled correctly.
	RatingEasy                    // Recalled without effort.
)

var ratingNames = map[Rating]string{
	RatingAgain: "again",
	RatingHard:  "hard",
	RatingGood:  "good",
	RatingEasy:  "easy",
}

// ParseRating converts user-supplied text into a Rating. Matching is
// case-insensitive and tolerates surrounding whitespace. "difficult" is
// accepted as an alias for "hard"; it is the spoken form some upstream
// clients produce.
// Returns ErrInvalidRating for anything outside the known vocabulary.
func ParseRating(s string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "again":
		return RatingAgain, nil
	case "hard", "difficult":
		return RatingHard, nil
	case "good":
		return RatingGood, nil
	case "easy":
		return RatingEasy, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRating, s)
	}
}

// IsValid reports whether r is one of the four defined ratings.
func (r Rating) IsValid() bool {
	return r >= RatingAgain && r <= RatingEasy
}

// String returns the lowercase name of the rating, or "rating(n)" for
// out-of-range values.
func (r Rating) String() string {
	if name, ok := ratingNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rating(%d)", int(r))
}

// Index returns the zero-based weight index for the rating: Again=0,
// Hard=1, Good=2, Easy=3. Only meaningful for valid ratings.
func (r Rating) Index() int {
	return int(r) - 1
}

// Success reports whether the rating counts as a successful recall.
// Again is the only failure outcome.
func (r Rating) Success() bool {
	return r != RatingAgain
}

// MarshalText implements encoding.TextMarshaler. Ratings serialize as
// their lowercase names.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseRating
// semantics.
func (r *Rating) UnmarshalText(text []byte) error {
	parsed, err := ParseRating(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
