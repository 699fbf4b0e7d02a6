package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/engram-api/internal/store"
)

func TestEntityErrorsWrapGenericOnes(t *testing.T) {
	t.Parallel()

	notFound := []error{
		store.ErrUserNotFound,
		store.ErrDeckNotFound,
		store.ErrCardNotFound,
		store.ErrSettingsNotFound,
	}
	for _, err := range notFound {
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.True(t, store.IsNotFoundError(err))
		assert.False(t, store.IsDuplicateError(err))
	}

	duplicates := []error{store.ErrEmailExists, store.ErrDeckNameExists}
	for _, err := range duplicates {
		assert.ErrorIs(t, err, store.ErrDuplicate)
		assert.True(t, store.IsDuplicateError(err))
		assert.False(t, store.IsNotFoundError(err))
	}
}

func TestHelpersFollowWrappedErrors(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("loading card: %w", store.ErrCardNotFound)
	assert.True(t, store.IsNotFoundError(wrapped))

	assert.False(t, store.IsNotFoundError(errors.New("unrelated")))
	assert.False(t, store.IsNotFoundError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	t.Run("formats with wrapped error", func(t *testing.T) {
		t.Parallel()
		err := store.NewStoreError("card", "update", "row vanished", store.ErrCardNotFound)
		assert.Contains(t, err.Error(), "update operation on card failed")
		assert.Contains(t, err.Error(), "row vanished")
		assert.ErrorIs(t, err, store.ErrCardNotFound)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("formats without wrapped error", func(t *testing.T) {
		t.Parallel()
		err := store.NewStoreError("user", "create", "nil user", nil)
		assert.Equal(t, "create operation on user failed: nil user", err.Error())
		assert.Nil(t, errors.Unwrap(err))
	})

	t.Run("errors.As finds the type", func(t *testing.T) {
		t.Parallel()
		wrapped := fmt.Errorf("outer: %w",
			store.NewStoreError("deck", "delete", "gone", store.ErrDeckNotFound))
		var storeErr *store.StoreError
		assert.True(t, errors.As(wrapped, &storeErr))
		assert.Equal(t, "deck", storeErr.Entity)
	})
}
