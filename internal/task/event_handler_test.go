package task

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/engram-api/internal/events"
)

func newTestEvent(t *testing.T, eventType string) *events.TaskRequestEvent {
	t.Helper()
	event, err := events.NewTaskRequestEvent(eventType, map[string]string{"kind": "stub"})
	require.NoError(t, err)
	return event
}

func TestTaskRequestEventHandler_SubmitsBuiltTask(t *testing.T) {
	t.Parallel()

	store := newMemTaskStore()
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())

	var builtID uuid.UUID
	handler := NewTaskRequestEventHandler(runner, testLogger())
	handler.RegisterFactory("stub", func(id uuid.UUID, payload []byte) (Task, error) {
		builtID = id
		return &stubTask{id: id, taskType: "stub", payload: payload, status: TaskStatusPending}, nil
	})

	event := newTestEvent(t, "stub")
	require.NoError(t, handler.HandleEvent(context.Background(), event))

	// The event ID carries through to the task so the 202 response's
	// task_id matches the persisted row.
	assert.Equal(t, event.ID, builtID)
	status, _ := store.statusOf(event.ID)
	assert.Equal(t, TaskStatusPending, status)
}

func TestTaskRequestEventHandler_UnknownEventType(t *testing.T) {
	t.Parallel()

	runner := NewTaskRunner(newMemTaskStore(), DefaultTaskRunnerConfig(), testLogger())
	handler := NewTaskRequestEventHandler(runner, testLogger())

	err := handler.HandleEvent(context.Background(), newTestEvent(t, "unregistered"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no task factory registered")
}

func TestTaskRequestEventHandler_FactoryFailure(t *testing.T) {
	t.Parallel()

	runner := NewTaskRunner(newMemTaskStore(), DefaultTaskRunnerConfig(), testLogger())
	handler := NewTaskRequestEventHandler(runner, testLogger())
	handler.RegisterFactory("stub", func(id uuid.UUID, payload []byte) (Task, error) {
		return nil, errors.New("malformed payload")
	})

	err := handler.HandleEvent(context.Background(), newTestEvent(t, "stub"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to build task")
}

func TestTaskRequestEventHandler_SubmitFailure(t *testing.T) {
	t.Parallel()

	store := newMemTaskStore()
	store.saveFn = func(ctx context.Context, task Task) error {
		return errors.New("database down")
	}
	runner := NewTaskRunner(store, DefaultTaskRunnerConfig(), testLogger())
	handler := NewTaskRequestEventHandler(runner, testLogger())
	handler.RegisterFactory("stub", func(id uuid.UUID, payload []byte) (Task, error) {
		return &stubTask{id: id, taskType: "stub", payload: payload, status: TaskStatusPending}, nil
	})

	err := handler.HandleEvent(context.Background(), newTestEvent(t, "stub"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to submit task")
}

func TestNewTaskRequestEventHandler_NilRunnerPanics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewTaskRequestEventHandler(nil, testLogger())
	})
}
