package task

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

// Possible task status values.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type identifiers.
const (
	// TaskTypeCardGeneration generates flashcards for a deck from a
	// user-supplied prompt via the LLM.
	TaskTypeCardGeneration = "card_generation"
)

// Task represents a unit of background work to be processed.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type returns the task type identifier.
	Type() string

	// Payload returns the task data as a byte slice. Payloads must be
	// self-contained: a task recovered after a crash is rebuilt from its
	// payload alone.
	Payload() []byte

	// Status returns the current task status.
	Status() TaskStatus

	// Execute runs the task logic.
	Execute(ctx context.Context) error
}

// Factory rebuilds an executable task from its persisted payload. The
// runner keeps one factory per task type so tasks recovered from the
// database regain their execution logic.
type Factory func(id uuid.UUID, payload []byte) (Task, error)

// TaskStore defines the interface for persisting tasks.
type TaskStore interface {
	// SaveTask persists a task with pending status.
	SaveTask(ctx context.Context, t Task) error

	// UpdateTaskStatus updates the status of a task and records an
	// error message for failed tasks. Updating a task that no longer
	// exists is a no-op.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks with pending status, oldest
	// first.
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks retrieves tasks with processing status. When
	// olderThan is non-zero only tasks that have sat in that state
	// longer than the duration are returned.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)

	// WithTx returns a new TaskStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) TaskStore
}
