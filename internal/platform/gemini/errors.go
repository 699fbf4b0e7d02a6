package gemini

import "errors"

// Errors specific to the Gemini generator. API-level failures use the
// generation package sentinels.
var (
	// ErrEmptyPrompt is returned when GenerateCards is called with an
	// empty prompt.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)
