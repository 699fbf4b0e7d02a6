package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Password length bounds. The upper bound is bcrypt's input limit; the
// lower bound favors length over character-class rules.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 72
)

// Common validation errors for User
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// User represents a registered account. Password carries the plaintext
// only between request decoding and hashing; it is never persisted and
// never serialized.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email and plaintext password.
// It generates a new UUID for the user ID and sets the creation/update
// timestamps. The caller is responsible for hashing the password before
// the user is stored. Returns an error if validation fails.
func NewUser(email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validEmail(u.Email) {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			return ErrPasswordTooShort
		}
		if len(u.Password) > MaxPasswordLength {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// A user loaded from storage has no plaintext password, but must
		// carry the hash.
		return ErrEmptyPassword
	}

	return nil
}

// validEmail performs a shallow structural check: one @ with a non-empty
// local part, and a domain containing an interior dot. Full RFC 5322
// validation is deliberately out of scope; delivery failures are the real
// arbiter of a bad address.
func validEmail(email string) bool {
	local, dom, ok := strings.Cut(email, "@")
	if !ok || local == "" || dom == "" {
		return false
	}
	if strings.Contains(dom, "@") {
		return false
	}
	dot := strings.Index(dom, ".")
	return dot > 0 && dot < len(dom)-1
}
