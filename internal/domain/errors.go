package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an identifier is malformed.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidRating is returned when a rating falls outside the
	// four-symbol set {again, hard, good, easy}. This indicates a caller
	// bug: ratings must be validated before they reach the scheduler.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrInvalidConfig is returned when scheduling configuration is out of
	// range: desired retention outside (0,1) or a non-positive session cap.
	ErrInvalidConfig = errors.New("invalid scheduling config")

	// ErrInvalidState is returned when a persisted memory state fails
	// validation on load: difficulty outside [1,10], non-positive
	// stability, or a half-present stability/difficulty pair. Callers
	// should treat this as a data-repair signal, not a user error.
	ErrInvalidState = errors.New("invalid memory state")

	// ErrUnauthorized is returned when an operation is not permitted,
	// e.g. accessing a deck owned by another user.
	ErrUnauthorized = errors.New("unauthorized operation")
)
