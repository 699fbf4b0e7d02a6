package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	tests := []struct {
		name     string
		deckName string
		wantErr  error
	}{
		{"valid", "Cantonese vocabulary", nil},
		{"trims whitespace", "  Go idioms  ", nil},
		{"empty name", "", ErrEmptyDeckName},
		{"whitespace name", "   ", ErrEmptyDeckName},
		{"name too long", strings.Repeat("x", MaxDeckNameLength+1), ErrDeckNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			deck, err := NewDeck(userID, tt.deckName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDeck returned error: %v", err)
			}
			if deck.ID == uuid.Nil {
				t.Error("deck ID not generated")
			}
			if deck.UserID != userID {
				t.Errorf("user ID = %v, want %v", deck.UserID, userID)
			}
			if deck.Name != strings.TrimSpace(tt.deckName) {
				t.Errorf("name = %q, want trimmed input", deck.Name)
			}
		})
	}
}

func TestNewDeckRequiresOwner(t *testing.T) {
	t.Parallel()

	_, err := NewDeck(uuid.Nil, "orphan")
	if !errors.Is(err, ErrEmptyDeckUserID) {
		t.Errorf("error = %v, want ErrEmptyDeckUserID", err)
	}
}

func TestDeckRename(t *testing.T) {
	t.Parallel()

	deck, err := NewDeck(uuid.New(), "before")
	if err != nil {
		t.Fatalf("NewDeck returned error: %v", err)
	}

	if err := deck.Rename("after"); err != nil {
		t.Fatalf("Rename returned error: %v", err)
	}
	if deck.Name != "after" {
		t.Errorf("name = %q, want %q", deck.Name, "after")
	}

	if err := deck.Rename(""); !errors.Is(err, ErrEmptyDeckName) {
		t.Errorf("error = %v, want ErrEmptyDeckName", err)
	}
	if deck.Name != "after" {
		t.Error("failed rename must not change the name")
	}
}
