package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the Queue
var (
	ErrQueueClosed = errors.New("reminder queue is closed")
	ErrQueueFull   = errors.New("reminder queue is full")
)

// Queue is a bounded, non-blocking reminder buffer.
type Queue struct {
	mu        sync.RWMutex
	reminders chan *Reminder
	logger    *slog.Logger
	closed    bool
}

// NewQueue creates a queue holding at most size reminders.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		reminders: make(chan *Reminder, size),
		logger:    logger,
	}
}

// Enqueue adds r without blocking. It fails when the queue is full or closed.
func (q *Queue) Enqueue(r *Reminder) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.reminders <- r:
		q.logger.Debug("reminder enqueued",
			"reminder_id", r.ID,
			"kind", r.Event.Kind,
			"queue_len", len(q.reminders),
			"queue_cap", cap(q.reminders))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.reminders))
	}
}

// EnqueueWait adds r, blocking until there is room, the queue is closed
// or ctx is done. Close waits for blocked callers, so ctx must be
// cancelled before Close is called.
func (q *Queue) EnqueueWait(ctx context.Context, r *Reminder) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.reminders <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting reminders. Already queued reminders stay readable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.reminders)
		q.logger.Info("reminder queue closed")
	}
}

// Channel returns the consuming side of the queue.
func (q *Queue) Channel() <-chan *Reminder {
	return q.reminders
}
