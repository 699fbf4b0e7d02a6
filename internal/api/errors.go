package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/engram-api/internal/api/shared"
	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/service"
	"github.com/phrazzld/engram-api/internal/service/auth"
	"github.com/phrazzld/engram-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Ownership
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Duplicates
	case store.IsDuplicateError(err):
		return http.StatusConflict

	// Bad input
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrNoCardsImported):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for the error,
// hiding internal detail.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"
	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken):
		return "Invalid refresh token"
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid email or password"
	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized operation"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this resource"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"
	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case store.IsNotFoundError(err):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"
	case errors.Is(err, store.ErrDeckNameExists):
		return "A deck with this name already exists"
	case store.IsDuplicateError(err):
		return "Already exists"

	case errors.Is(err, domain.ErrInvalidRating):
		return "Invalid rating"
	case errors.Is(err, domain.ErrInvalidConfig):
		return "Invalid settings value"
	case errors.Is(err, service.ErrNoCardsImported):
		return "No valid cards found in import"
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the response for err: status from
// MapErrorToStatusCode, message from userMessage when non-empty or
// GetSafeErrorMessage otherwise, and logs the underlying error.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}

// SanitizeValidationError converts a validator error into a short
// user-facing message naming the offending field but not the payload.
func SanitizeValidationError(err error) string {
	msg := err.Error()
	if !strings.Contains(msg, "Field validation") {
		return "Validation error"
	}

	// validator errors look like:
	// Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag
	_, detail, ok := strings.Cut(msg, "Error:")
	if !ok {
		return "Validation error"
	}
	parts := strings.Split(detail, "'")
	if len(parts) < 2 {
		return "Validation error"
	}
	field := parts[1]
	if len(parts) >= 4 {
		return "Invalid " + field + ": " + validationTagMessage(parts[3])
	}
	return "Invalid " + field
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
