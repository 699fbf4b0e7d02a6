package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TaskRunnerConfig holds configuration for the task runner.
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks.
	WorkerCount int

	// QueueSize determines the buffer size of the in-memory task queue.
	QueueSize int

	// StuckTaskAge defines how long a task may sit in processing state
	// before it is considered stuck and reset to pending.
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck
	// tasks. If zero, defaults to 5 minutes.
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults.
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              50,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner manages background task processing: it persists submitted
// tasks before queueing them, runs a fixed worker pool over the queue,
// recovers unfinished tasks at startup, and periodically resets tasks
// stuck in processing state.
type TaskRunner struct {
	store     TaskStore
	queue     *TaskQueue
	factories map[string]Factory
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	config    TaskRunnerConfig
	logger    *slog.Logger
}

// NewTaskRunner creates a new TaskRunner. Task types are registered with
// RegisterFactory before Start so recovered tasks can be rebuilt.
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, log *slog.Logger) *TaskRunner {
	if config.WorkerCount <= 0 {
		config.WorkerCount = 1
	}
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "task_runner"))

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:     store,
		queue:     NewTaskQueue(config.QueueSize, log),
		factories: make(map[string]Factory),
		ctx:       ctx,
		cancel:    cancel,
		config:    config,
		logger:    log,
	}
}

// RegisterFactory associates a task type with the factory that rebuilds
// it from a persisted payload. Call before Start.
func (r *TaskRunner) RegisterFactory(taskType string, factory Factory) {
	r.factories[taskType] = factory
}

// Submit persists a task and adds it to the queue. If the queue is full
// the task stays persisted as pending and is picked up at the next
// recovery; the returned error tells the caller processing is delayed,
// not lost.
func (r *TaskRunner) Submit(ctx context.Context, t Task) error {
	if err := r.store.SaveTask(ctx, t); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(t); err != nil {
		return fmt.Errorf("task %s persisted but not queued: %w", t.ID(), err)
	}
	return nil
}

// Start recovers unfinished tasks from previous runs and launches the
// worker pool and the stuck-task monitor.
func (r *TaskRunner) Start() error {
	if err := r.recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop gracefully shuts down the task runner: tasks already executing
// finish, queued tasks stay persisted as pending for the next start.
func (r *TaskRunner) Stop() {
	r.cancel()
	r.queue.Close()
	r.wg.Wait()
}

// recover requeues tasks left pending or processing by a previous run.
// Processing tasks are assumed interrupted by a crash and reset to
// pending first.
func (r *TaskRunner) recover() error {
	ctx := context.Background()

	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processing, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		slog.Int("pending_count", len(pending)),
		slog.Int("processing_count", len(processing)))

	for _, t := range pending {
		r.requeue(ctx, t)
	}

	for _, t := range processing {
		if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending, "reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task",
				slog.String("task_id", t.ID().String()),
				slog.String("error", err.Error()))
			continue
		}
		r.requeue(ctx, t)
	}

	return nil
}

// requeue rebuilds a persisted task through its registered factory and
// enqueues it. Tasks of unknown type are marked failed: without a
// factory they can never execute, and leaving them pending would make
// every restart re-report them.
func (r *TaskRunner) requeue(ctx context.Context, t Task) {
	log := r.logger.With(
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()))

	factory, ok := r.factories[t.Type()]
	if !ok {
		log.Error("no factory registered for recovered task type")
		if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusFailed, "unknown task type"); err != nil {
			log.Error("failed to mark unknown task failed", slog.String("error", err.Error()))
		}
		return
	}

	rebuilt, err := factory(t.ID(), t.Payload())
	if err != nil {
		log.Error("failed to rebuild recovered task", slog.String("error", err.Error()))
		if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusFailed, err.Error()); err != nil {
			log.Error("failed to mark unbuildable task failed", slog.String("error", err.Error()))
		}
		return
	}

	if err := r.queue.Enqueue(rebuilt); err != nil {
		// Stays persisted as pending; the next start tries again.
		log.Warn("failed to requeue recovered task", slog.String("error", err.Error()))
	}
}

// worker processes tasks from the queue until shutdown.
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	log := r.logger.With(slog.Int("worker_id", id))
	log.Debug("starting worker")

	for {
		select {
		case <-r.ctx.Done():
			log.Debug("stopping worker")
			return
		case t, ok := <-r.queue.GetChannel():
			if !ok {
				log.Debug("task channel closed, stopping worker")
				return
			}
			r.processTask(t, id)
		}
	}
}

// processTask handles execution of a single task, recording the status
// transitions around it.
func (r *TaskRunner) processTask(t Task, workerID int) {
	ctx := context.Background()
	log := r.logger.With(
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()),
		slog.Int("worker_id", workerID))

	if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to update task status to processing", slog.String("error", err.Error()))
		return
	}

	log.Info("processing task")

	if err := t.Execute(ctx); err != nil {
		log.Error("task execution failed", slog.String("error", err.Error()))
		if updateErr := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to update task status to failed",
				slog.String("error", updateErr.Error()))
		}
		return
	}

	log.Info("task completed")
	if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusCompleted, ""); err != nil {
		log.Error("failed to update task status to completed", slog.String("error", err.Error()))
	}
}

// stuckTaskMonitor periodically resets tasks that have been processing
// longer than the configured age. A worker that died mid-task leaves its
// row in processing forever otherwise.
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			ctx := context.Background()

			stuck, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks", slog.String("error", err.Error()))
				continue
			}
			if len(stuck) == 0 {
				continue
			}

			r.logger.Info("found stuck tasks", slog.Int("count", len(stuck)))
			for _, t := range stuck {
				if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending,
					"reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck task",
						slog.String("task_id", t.ID().String()),
						slog.String("error", err.Error()))
					continue
				}
				r.requeue(ctx, t)
			}
		}
	}
}
