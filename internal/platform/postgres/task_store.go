package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/platform/logger"
	"github.com/phrazzld/engram-api/internal/store"
	"github.com/phrazzld/engram-api/internal/task"
)

// TaskStore implements the task.TaskStore interface using a PostgreSQL
// database as the storage backend.
type TaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewTaskStore creates a new PostgreSQL implementation of the
// task.TaskStore interface. If log is nil the default logger is used.
func NewTaskStore(db store.DBTX, log *slog.Logger) *TaskStore {
	if db == nil {
		panic("postgres.NewTaskStore: db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &TaskStore{
		db:     db,
		logger: log.With(slog.String("component", "task_store")),
	}
}

// Ensure TaskStore implements task.TaskStore interface
var _ task.TaskStore = (*TaskStore)(nil)

// WithTx implements task.TaskStore.WithTx.
func (s *TaskStore) WithTx(tx *sql.Tx) task.TaskStore {
	return &TaskStore{db: tx, logger: s.logger}
}

// SaveTask implements task.TaskStore.SaveTask.
func (s *TaskStore) SaveTask(ctx context.Context, t task.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO tasks (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	now := time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		query,
		t.ID(),
		t.Type(),
		t.Payload(),
		string(task.TaskStatusPending),
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save task",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.String("error", err.Error()))
		return mapError(err)
	}
	return nil
}

// UpdateTaskStatus implements task.TaskStore.UpdateTaskStatus. Updating
// a vanished task is deliberately a no-op: the runner may race a
// cascade delete and there is nothing useful to do about it.
func (s *TaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE tasks
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query, string(status), errorMsg, time.Now().UTC(), taskID)
	if err != nil {
		log.Error("failed to update task status",
			slog.String("task_id", taskID.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return mapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		log.Warn("no task found to update", slog.String("task_id", taskID.String()))
	}
	return nil
}

// GetPendingTasks implements task.TaskStore.GetPendingTasks.
func (s *TaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusPending, 0)
}

// GetProcessingTasks implements task.TaskStore.GetProcessingTasks.
func (s *TaskStore) GetProcessingTasks(
	ctx context.Context,
	olderThan time.Duration,
) ([]task.Task, error) {
	return s.getTasksByStatus(ctx, task.TaskStatusProcessing, olderThan)
}

func (s *TaskStore) getTasksByStatus(
	ctx context.Context,
	status task.TaskStatus,
	olderThan time.Duration,
) ([]task.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, type, payload, status
		FROM tasks
		WHERE status = $1
	`
	args := []any{string(status)}
	if olderThan > 0 {
		query += ` AND updated_at < $2`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks by status",
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]task.Task, 0)
	for rows.Next() {
		var row persistedTask
		if err := rows.Scan(&row.id, &row.taskType, &row.payload, &row.status); err != nil {
			return nil, mapError(err)
		}
		tasks = append(tasks, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return tasks, nil
}

// persistedTask is the inert form of a task loaded from the database:
// identity, type and payload but no execution logic. The runner rebuilds
// an executable task from it through the registered Factory before
// queueing.
type persistedTask struct {
	id       uuid.UUID
	taskType string
	payload  []byte
	status   string
}

// Ensure persistedTask implements the task.Task interface
var _ task.Task = (*persistedTask)(nil)

func (t *persistedTask) ID() uuid.UUID           { return t.id }
func (t *persistedTask) Type() string            { return t.taskType }
func (t *persistedTask) Payload() []byte         { return t.payload }
func (t *persistedTask) Status() task.TaskStatus { return task.TaskStatus(t.status) }

// Execute always fails: persisted tasks must be rebuilt through their
// factory before they can run.
func (t *persistedTask) Execute(ctx context.Context) error {
	return errors.New("persisted task has no execution logic; rebuild it through its factory")
}
