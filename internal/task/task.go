// Package task runs fire-and-forget background work whose outcome can
// still be observed.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// Func is the body of a task. It must only read data it was handed.
type Func func(ctx context.Context) error

// Task is a handle to work running on its own goroutine.
type Task struct {
	name    string
	started time.Time
	done    chan struct{}
	err     error
}

// Go starts fn in the background. Panics inside fn are recovered and
// reported as the task's error. A nil logger uses slog.Default.
func Go(ctx context.Context, name string, fn Func, logger *slog.Logger) *Task {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Task{name: name, started: time.Now(), done: make(chan struct{})}
	logger = logger.With("task", name)

	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				t.err = fmt.Errorf("task %s panicked: %v", name, r)
				logger.Error("task panicked", "panic", r, "stack", string(debug.Stack()))
			}
		}()

		logger.Debug("task started")
		t.err = fn(ctx)
		if t.err != nil {
			logger.Error("task failed", "error", t.err, "elapsed", time.Since(t.started))
			return
		}
		logger.Info("task finished", "elapsed", time.Since(t.started))
	}()
	return t
}

// Name returns the task name.
func (t *Task) Name() string {
	return t.name
}

// Done is closed once the task has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the task's error. It is nil while the task is running.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx is cancelled.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
