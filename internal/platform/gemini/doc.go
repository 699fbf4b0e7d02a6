// Package gemini implements the generation.Generator interface on top
// of Google's Gemini API. Responses are requested in JSON mode and
// parsed into card drafts; transient API failures are retried with
// exponential backoff and jitter, permanent ones (safety blocks,
// malformed responses) are returned immediately.
package gemini
