package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler implements EventHandler for testing.
type recordingHandler struct {
	events []*TaskRequestEvent
	err    error
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *TaskRequestEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTaskRequestEvent(t *testing.T) {
	t.Parallel()

	type payload struct {
		DeckID string `json:"deck_id"`
		Prompt string `json:"prompt"`
	}

	event, err := NewTaskRequestEvent("card_generation", payload{DeckID: "d1", Prompt: "ribosomes"})
	require.NoError(t, err)

	assert.NotZero(t, event.ID)
	assert.Equal(t, "card_generation", event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded payload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, "d1", decoded.DeckID)
	assert.Equal(t, "ribosomes", decoded.Prompt)
}

func TestNewTaskRequestEvent_UnserializablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewTaskRequestEvent("card_generation", make(chan int))
	assert.Error(t, err)
}

func TestInMemoryEventEmitter_NoHandlers(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(discardLogger())
	event, err := NewTaskRequestEvent("card_generation", nil)
	require.NoError(t, err)

	// An event nobody listens for is logged and dropped, not an error.
	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
}

func TestInMemoryEventEmitter_AllHandlersSeeEvent(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(discardLogger())
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event, err := NewTaskRequestEvent("card_generation", nil)
	require.NoError(t, err)
	require.NoError(t, emitter.EmitEvent(context.Background(), event))

	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	assert.Equal(t, event.ID, first.events[0].ID)
	assert.Equal(t, event.ID, second.events[0].ID)
}

func TestInMemoryEventEmitter_FirstErrorReturnedAfterAllRun(t *testing.T) {
	t.Parallel()

	emitter := NewInMemoryEventEmitter(discardLogger())
	firstErr := errors.New("first handler failed")
	failing := &recordingHandler{err: firstErr}
	alsoFailing := &recordingHandler{err: errors.New("second handler failed")}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(alsoFailing)
	emitter.RegisterHandler(healthy)

	event, err := NewTaskRequestEvent("card_generation", nil)
	require.NoError(t, err)

	got := emitter.EmitEvent(context.Background(), event)
	assert.ErrorIs(t, got, firstErr)

	// A failing handler does not stop delivery to the rest.
	assert.Len(t, healthy.events, 1)
}
