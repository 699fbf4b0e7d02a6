package generation

import (
	"context"
	"strings"
)

// CardDraft is one generated flashcard before it becomes a domain Card:
// plain front/back text with no identity or deck attached yet.
type CardDraft struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Valid reports whether the draft has usable content on both sides.
func (d CardDraft) Valid() bool {
	return strings.TrimSpace(d.Front) != "" && strings.TrimSpace(d.Back) != ""
}

// Generator defines the interface for drafting flashcards from a
// user-supplied prompt (a topic, notes, or source text).
type Generator interface {
	// GenerateCards drafts flashcards covering the prompt's material.
	// It returns at least one draft on success.
	//
	// Errors are classified with the sentinels in errors.go: transient
	// failures (ErrTransientFailure) may be retried by the caller, the
	// rest are permanent for this prompt.
	GenerateCards(ctx context.Context, prompt string) ([]CardDraft, error)
}
