package task

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// stubTask implements the Task interface for testing.
type stubTask struct {
	id       uuid.UUID
	taskType string
	payload  []byte
	status   TaskStatus
	execFn   func(ctx context.Context) error
}

func newStubTask() *stubTask {
	return &stubTask{
		id:       uuid.New(),
		taskType: "stub",
		payload:  []byte(`{"kind":"stub"}`),
		status:   TaskStatusPending,
	}
}

func (s *stubTask) ID() uuid.UUID      { return s.id }
func (s *stubTask) Type() string       { return s.taskType }
func (s *stubTask) Payload() []byte    { return s.payload }
func (s *stubTask) Status() TaskStatus { return s.status }

func (s *stubTask) Execute(ctx context.Context) error {
	if s.execFn != nil {
		return s.execFn(ctx)
	}
	return nil
}

// taskRecord is one row of the in-memory store.
type taskRecord struct {
	task      Task
	status    TaskStatus
	errorMsg  string
	updatedAt time.Time
}

// memTaskStore implements TaskStore over a map. Status lives in the
// store, mirroring how the real store tracks it in the tasks table
// rather than on the task value.
type memTaskStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*taskRecord

	saveFn   func(ctx context.Context, t Task) error
	updateFn func(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{records: make(map[uuid.UUID]*taskRecord)}
}

func (s *memTaskStore) SaveTask(ctx context.Context, t Task) error {
	if s.saveFn != nil {
		return s.saveFn(ctx, t)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[t.ID()] = &taskRecord{task: t, status: TaskStatusPending, updatedAt: time.Now()}
	return nil
}

func (s *memTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, taskID, status, errorMsg)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[taskID]
	if !ok {
		return nil
	}
	rec.status = status
	rec.errorMsg = errorMsg
	rec.updatedAt = time.Now()
	return nil
}

func (s *memTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Task
	for _, rec := range s.records {
		if rec.status == TaskStatusPending {
			out = append(out, rec.task)
		}
	}
	return out, nil
}

func (s *memTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var out []Task
	for _, rec := range s.records {
		if rec.status != TaskStatusProcessing {
			continue
		}
		if olderThan == 0 || now.Sub(rec.updatedAt) > olderThan {
			out = append(out, rec.task)
		}
	}
	return out, nil
}

func (s *memTaskStore) WithTx(tx *sql.Tx) TaskStore { return s }

// statusOf reads a task's stored status without racing the workers.
func (s *memTaskStore) statusOf(taskID uuid.UUID) (TaskStatus, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[taskID]
	if !ok {
		return "", ""
	}
	return rec.status, rec.errorMsg
}

// seed inserts a task directly with the given status, bypassing SaveTask.
func (s *memTaskStore) seed(t Task, status TaskStatus, updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[t.ID()] = &taskRecord{task: t, status: status, updatedAt: updatedAt}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// waitForStatus polls the store until the task reaches the wanted
// status or the deadline passes.
func waitForStatus(s *memTaskStore, taskID uuid.UUID, want TaskStatus, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if got, _ := s.statusOf(taskID); got == want {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}
