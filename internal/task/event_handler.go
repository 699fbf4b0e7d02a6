package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/engram-api/internal/events"
	"github.com/phrazzld/engram-api/internal/platform/logger"
)

// TaskRequestEventHandler turns TaskRequestEvents into persisted,
// queued tasks. It is the bridge between the events package (which
// request handlers emit into) and the task runner.
type TaskRequestEventHandler struct {
	runner    *TaskRunner
	factories map[string]Factory
	logger    *slog.Logger
}

// NewTaskRequestEventHandler creates a handler that submits built tasks
// to the given runner. Task types are registered with RegisterFactory.
func NewTaskRequestEventHandler(runner *TaskRunner, log *slog.Logger) *TaskRequestEventHandler {
	if runner == nil {
		panic("task.NewTaskRequestEventHandler: runner cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &TaskRequestEventHandler{
		runner:    runner,
		factories: make(map[string]Factory),
		logger:    log.With(slog.String("component", "task_event_handler")),
	}
}

// Ensure TaskRequestEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskRequestEventHandler)(nil)

// RegisterFactory associates an event/task type with the factory that
// builds its task.
func (h *TaskRequestEventHandler) RegisterFactory(taskType string, factory Factory) {
	h.factories[taskType] = factory
}

// HandleEvent implements events.EventHandler. The event's ID becomes the
// task's ID so a request can be traced through to its task row.
func (h *TaskRequestEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	log := logger.FromContextOrDefault(ctx, h.logger)

	factory, ok := h.factories[event.Type]
	if !ok {
		return fmt.Errorf("no task factory registered for event type %q", event.Type)
	}

	t, err := factory(event.ID, event.Payload)
	if err != nil {
		return fmt.Errorf("failed to build task for event %s: %w", event.ID, err)
	}

	if err := h.runner.Submit(ctx, t); err != nil {
		return fmt.Errorf("failed to submit task for event %s: %w", event.ID, err)
	}

	log.Debug("task submitted from event",
		slog.String("event_id", event.ID.String()),
		slog.String("task_type", event.Type))
	return nil
}
