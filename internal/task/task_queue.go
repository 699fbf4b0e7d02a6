package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the TaskQueue.
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueueReader provides read-only access to the task channel,
// allowing workers to consume tasks without the ability to enqueue.
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks.
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue, allowing
// services to enqueue tasks for processing.
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing.
	// Returns ErrQueueFull or ErrQueueClosed when it cannot.
	Enqueue(t Task) error

	// Close closes the task queue, preventing further task submission.
	Close()
}

// TaskQueue is a bounded in-memory task queue satisfying both
// TaskQueueReader and TaskQueueWriter. Enqueue never blocks: a full
// queue is an error the caller surfaces instead of hidden backpressure.
type TaskQueue struct {
	tasks  chan Task
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewTaskQueue creates a new task queue with the specified buffer size.
func NewTaskQueue(size int, log *slog.Logger) *TaskQueue {
	if log == nil {
		log = slog.Default()
	}
	return &TaskQueue{
		tasks:  make(chan Task, size),
		logger: log.With(slog.String("component", "task_queue")),
	}
}

// Enqueue implements TaskQueueWriter.Enqueue.
func (q *TaskQueue) Enqueue(t Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- t:
		q.logger.Debug("task enqueued",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.Int("queue_len", len(q.tasks)))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.tasks))
	}
}

// Close implements TaskQueueWriter.Close.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.tasks)
		q.logger.Info("task queue closed")
	}
}

// GetChannel implements TaskQueueReader.GetChannel.
func (q *TaskQueue) GetChannel() <-chan Task {
	return q.tasks
}
