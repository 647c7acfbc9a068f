package port

import (
	"context"
	"time"
)

// Task is a background job: a stable type identifier plus opaque payload
// bytes. Payload encoding is up to the callers.
type Task struct {
	Type    string
	Payload []byte
}

// Handler processes a Task. A non-nil error signals the adapter to retry,
// so handlers must be idempotent.
type Handler func(ctx context.Context, task Task) error

// EnqueueOption tunes how a task is enqueued. Zero values mean
// "adapter default".
type EnqueueOption struct {
	Queue     string        // logical queue name
	ProcessIn time.Duration // delay before the task becomes runnable
	MaxRetry  int           // retry budget before the task is archived
	Retention time.Duration // keep completed-task metadata for this long
}

// Client enqueues tasks for background processing.
type Client interface {
	Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (id string, err error)
	Close() error
}

// Server runs worker goroutines that consume tasks. Run blocks until the
// context is canceled.
type Server interface {
	Register(taskType string, h Handler)
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
}
