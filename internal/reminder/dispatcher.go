package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// Config holds configuration for the Dispatcher.
type Config struct {
	// WorkerCount determines how many reminders are delivered concurrently.
	WorkerCount int

	// QueueSize bounds the in-memory queue.
	QueueSize int

	// StuckAge is how long a reminder may stay pending or processing, outside
	// the queue, before it is re-queued.
	StuckAge time.Duration

	// StuckCheckInterval is how often stuck reminders are looked for.
	StuckCheckInterval time.Duration

	// OperationTimeout bounds each store call and each delivery.
	OperationTimeout time.Duration
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		WorkerCount:        2,
		QueueSize:          100,
		StuckAge:           30 * time.Minute,
		StuckCheckInterval: 5 * time.Minute,
		OperationTimeout:   10 * time.Second,
	}
}

// Dispatcher delivers reminders in the background.
type Dispatcher struct {
	store  Store
	sender Sender
	queue  *Queue
	config Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// queued holds the ids currently in the queue or being delivered.
	mu     sync.Mutex
	queued map[uuid.UUID]struct{}
}

// NewDispatcher creates a Dispatcher. Zero config values fall back to DefaultConfig.
func NewDispatcher(store Store, sender Sender, config Config, logger *slog.Logger) (*Dispatcher, error) {
	if store == nil {
		return nil, fmt.Errorf("reminder store cannot be nil")
	}
	if sender == nil {
		return nil, fmt.Errorf("reminder sender cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultConfig()
	if config.WorkerCount <= 0 {
		config.WorkerCount = defaults.WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if config.StuckAge <= 0 {
		config.StuckAge = defaults.StuckAge
	}
	if config.StuckCheckInterval <= 0 {
		config.StuckCheckInterval = defaults.StuckCheckInterval
	}
	if config.OperationTimeout <= 0 {
		config.OperationTimeout = defaults.OperationTimeout
	}

	logger = logger.With(slog.String("component", "reminder_dispatcher"))
	ctx, cancel := context.WithCancel(context.Background())

	return &Dispatcher{
		store:  store,
		sender: sender,
		queue:  NewQueue(config.QueueSize, logger),
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		queued: make(map[uuid.UUID]struct{}),
	}, nil
}

// Notify stores a pending reminder for userID and queues it without
// blocking. When the queue is full the stored reminder is picked up by a
// later sweep, and the returned error reports the delay.
func (d *Dispatcher) Notify(ctx context.Context, userID uuid.UUID, event domain.TaskEvent) error {
	r := NewReminder(userID, event)
	d.track(r.ID)

	if err := d.store.Save(ctx, r); err != nil {
		d.untrack(r.ID)
		return fmt.Errorf("failed to save %s reminder for task %s: %w", event.Kind, event.TaskID, err)
	}
	if err := d.queue.Enqueue(r); err != nil {
		d.untrack(r.ID)
		return fmt.Errorf("failed to queue %s reminder for task %s: %w", event.Kind, event.TaskID, err)
	}
	return nil
}

// Start re-queues reminders left unfinished by a previous run and starts
// the workers and the stuck-reminder monitor. Recovery feeds the queue as
// the workers drain it, so a backlog larger than the queue is not dropped.
func (d *Dispatcher) Start() error {
	unfinished, err := d.claimUnfinished(0)
	if err != nil {
		return fmt.Errorf("failed to recover reminders: %w", err)
	}

	for i := 0; i < d.config.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	d.wg.Add(1)
	go d.stuckMonitor()

	d.logger.Info("recovering unfinished reminders", slog.Int("count", len(unfinished)))
	for _, r := range unfinished {
		d.requeue(r, "reset after recovery")
	}

	d.logger.Info("reminder dispatcher started",
		slog.Int("worker_count", d.config.WorkerCount),
		slog.Int("queue_size", d.config.QueueSize))
	return nil
}

// Stop cancels pending requeues and the monitor, closes the queue, lets the
// workers drain it and waits for them.
func (d *Dispatcher) Stop() {
	d.cancel()
	d.queue.Close()
	d.wg.Wait()
	d.logger.Info("reminder dispatcher stopped")
}

// claimUnfinished lists pending and processing reminders last updated more
// than olderThan ago and marks the ones not already queued as queued.
// Listing and marking happen under d.mu, and workers only unmark a reminder
// after its final status is stored, so a delivered reminder is never claimed.
func (d *Dispatcher) claimUnfinished(olderThan time.Duration) ([]*Reminder, error) {
	ctx, cancel := context.WithTimeout(d.ctx, d.config.OperationTimeout)
	defer cancel()

	d.mu.Lock()
	defer d.mu.Unlock()

	pending, err := d.store.ListByStatus(ctx, StatusPending, olderThan)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending reminders: %w", err)
	}
	processing, err := d.store.ListByStatus(ctx, StatusProcessing, olderThan)
	if err != nil {
		return nil, fmt.Errorf("failed to get processing reminders: %w", err)
	}

	claimed := make([]*Reminder, 0, len(pending)+len(processing))
	for _, batch := range [][]*Reminder{pending, processing} {
		for _, r := range batch {
			if _, ok := d.queued[r.ID]; ok {
				continue
			}
			d.queued[r.ID] = struct{}{}
			claimed = append(claimed, r)
		}
	}
	return claimed, nil
}

// requeue resets a claimed reminder to pending and waits for room in the
// queue. A reminder that cannot be queued stays pending for the next sweep.
func (d *Dispatcher) requeue(r *Reminder, reason string) {
	if r.Status != StatusPending {
		ctx, cancel := context.WithTimeout(d.ctx, d.config.OperationTimeout)
		err := d.store.UpdateStatus(ctx, r.ID, StatusPending, reason)
		cancel()
		if err != nil {
			d.untrack(r.ID)
			d.logger.Error("failed to reset reminder status",
				slog.String("reminder_id", r.ID.String()),
				slog.String("error", err.Error()))
			return
		}
		r.Status = StatusPending
	}

	if err := d.queue.EnqueueWait(d.ctx, r); err != nil {
		d.untrack(r.ID)
		d.logger.Warn("failed to requeue reminder",
			slog.String("reminder_id", r.ID.String()),
			slog.String("error", err.Error()))
	}
}

func (d *Dispatcher) track(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queued[id] = struct{}{}
}

func (d *Dispatcher) untrack(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.queued, id)
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	d.logger.Debug("starting worker", slog.Int("worker_id", id))
	for r := range d.queue.Channel() {
		d.process(r, id)
	}
	d.logger.Debug("reminder queue drained, stopping worker", slog.Int("worker_id", id))
}

func (d *Dispatcher) process(r *Reminder, workerID int) {
	log := d.logger.With(
		slog.String("reminder_id", r.ID.String()),
		slog.String("kind", string(r.Event.Kind)),
		slog.Int("worker_id", workerID),
	)

	defer d.untrack(r.ID)

	ctx, cancel := context.WithTimeout(context.Background(), d.config.OperationTimeout)
	defer cancel()

	r.Status = StatusProcessing
	r.UpdatedAt = time.Now().UTC()
	if err := d.store.Save(ctx, r); err != nil {
		log.Error("failed to mark reminder processing", slog.String("error", err.Error()))
		return
	}

	if err := d.sender.Send(ctx, r); err != nil {
		log.Error("reminder delivery failed", slog.String("error", err.Error()))
		if updateErr := d.store.UpdateStatus(ctx, r.ID, StatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to mark reminder failed", slog.String("error", updateErr.Error()))
		}
		return
	}

	if err := d.store.UpdateStatus(ctx, r.ID, StatusCompleted, ""); err != nil {
		log.Error("failed to mark reminder completed", slog.String("error", err.Error()))
		return
	}
	log.Debug("reminder delivered")
}

func (d *Dispatcher) stuckMonitor() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.StuckCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
			d.resetStuck()
		}
	}
}

func (d *Dispatcher) resetStuck() {
	stuck, err := d.claimUnfinished(d.config.StuckAge)
	if err != nil {
		d.logger.Error("failed to check for stuck reminders", slog.String("error", err.Error()))
		return
	}
	if len(stuck) == 0 {
		return
	}

	d.logger.Info("found stuck reminders", slog.Int("count", len(stuck)))
	for _, r := range stuck {
		d.requeue(r, "reset after being stuck")
	}
}
