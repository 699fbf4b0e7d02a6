package service

import "errors"

// Common service errors. Services return these sentinels for expected
// failure conditions; callers check them with errors.Is and the API layer
// maps them to HTTP status codes.
var (
	// ErrNotOwned indicates a resource is owned by a different user than
	// the one making the request. Maps to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials indicates an email/password pair that does not
	// match a registered user. Deliberately silent about which half was
	// wrong. Maps to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNoCardsImported indicates an import payload that produced no
	// valid cards after parsing. Maps to HTTP 400 Bad Request.
	ErrNoCardsImported = errors.New("no valid cards found in import")
)
