package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/generation"
	"github.com/phrazzld/engram-api/internal/platform/logger"
)

// Dependency validation errors for CardGenerationTask.
var (
	ErrNilGenerator = errors.New("generator cannot be nil")
	ErrNilCardSaver = errors.New("card saver cannot be nil")
	ErrEmptyDeckID  = errors.New("deck ID cannot be empty")
	ErrEmptyPrompt  = errors.New("prompt cannot be empty")
)

// CardSaver persists generated card drafts into a deck. Implementations
// insert the whole batch in one transaction.
type CardSaver interface {
	SaveGeneratedCards(ctx context.Context, deckID uuid.UUID, drafts []generation.CardDraft) (int, error)
}

// cardGenerationPayload is the serialized task data persisted with the
// task row. It carries everything needed to re-run the task after a
// crash.
type cardGenerationPayload struct {
	DeckID uuid.UUID `json:"deck_id"`
	Prompt string    `json:"prompt"`
}

// CardGenerationTask implements the Task interface for generating
// flashcards for a deck from a prompt via the LLM.
type CardGenerationTask struct {
	id        uuid.UUID
	payload   cardGenerationPayload
	generator generation.Generator
	saver     CardSaver
	logger    *slog.Logger
	status    TaskStatus
}

// NewCardGenerationTask creates a new card generation task with a fresh
// task ID.
func NewCardGenerationTask(
	deckID uuid.UUID,
	prompt string,
	generator generation.Generator,
	saver CardSaver,
	log *slog.Logger,
) (*CardGenerationTask, error) {
	return newCardGenerationTask(
		uuid.New(),
		cardGenerationPayload{DeckID: deckID, Prompt: prompt},
		generator,
		saver,
		log,
	)
}

// NewCardGenerationTaskFactory returns the Factory the runner uses to
// rebuild persisted card-generation tasks after a restart.
func NewCardGenerationTaskFactory(
	generator generation.Generator,
	saver CardSaver,
	log *slog.Logger,
) Factory {
	return func(id uuid.UUID, raw []byte) (Task, error) {
		var payload cardGenerationPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode card generation payload: %w", err)
		}
		return newCardGenerationTask(id, payload, generator, saver, log)
	}
}

func newCardGenerationTask(
	id uuid.UUID,
	payload cardGenerationPayload,
	generator generation.Generator,
	saver CardSaver,
	log *slog.Logger,
) (*CardGenerationTask, error) {
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if saver == nil {
		return nil, ErrNilCardSaver
	}
	if payload.DeckID == uuid.Nil {
		return nil, ErrEmptyDeckID
	}
	if payload.Prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if log == nil {
		log = slog.Default()
	}

	return &CardGenerationTask{
		id:        id,
		payload:   payload,
		generator: generator,
		saver:     saver,
		logger:    log.With(slog.String("component", "card_generation_task")),
		status:    TaskStatusPending,
	}, nil
}

// Ensure CardGenerationTask implements the Task interface
var _ Task = (*CardGenerationTask)(nil)

// ID implements Task.ID.
func (t *CardGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type implements Task.Type.
func (t *CardGenerationTask) Type() string {
	return TaskTypeCardGeneration
}

// Payload implements Task.Payload.
func (t *CardGenerationTask) Payload() []byte {
	data, err := json.Marshal(t.payload)
	if err != nil {
		// A struct of a UUID and a string cannot fail to marshal.
		panic(fmt.Sprintf("failed to marshal card generation payload: %v", err))
	}
	return data
}

// Status implements Task.Status.
func (t *CardGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute implements Task.Execute: it asks the generator for card
// drafts and saves the valid ones into the deck in one batch.
func (t *CardGenerationTask) Execute(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, t.logger).With(
		slog.String("task_id", t.id.String()),
		slog.String("deck_id", t.payload.DeckID.String()))

	log.Info("generating cards", slog.Int("prompt_len", len(t.payload.Prompt)))

	drafts, err := t.generator.GenerateCards(ctx, t.payload.Prompt)
	if err != nil {
		return fmt.Errorf("card generation failed for deck %s: %w", t.payload.DeckID, err)
	}

	valid := drafts[:0]
	for _, d := range drafts {
		if d.Valid() {
			valid = append(valid, d)
		}
	}
	if len(valid) == 0 {
		return fmt.Errorf("%w: generator produced no usable cards", generation.ErrInvalidResponse)
	}

	saved, err := t.saver.SaveGeneratedCards(ctx, t.payload.DeckID, valid)
	if err != nil {
		return fmt.Errorf("failed to save generated cards for deck %s: %w", t.payload.DeckID, err)
	}

	log.Info("cards generated", slog.Int("saved_count", saved))
	return nil
}
