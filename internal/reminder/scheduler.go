package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/robfig/cron/v3"
)

// DueTaskLister finds the tasks a sweep reminds about.
type DueTaskLister interface {
	ListIncompleteDueOn(ctx context.Context, date domain.Date) ([]*domain.Task, error)
}

// Notifier receives the reminders raised by a sweep.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event domain.TaskEvent) error
}

// Scheduler runs the daily due-soon sweep on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	tasks    DueTaskLister
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
	timeout  time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a Scheduler evaluating times in loc.
func NewScheduler(tasks DueTaskLister, notifier Notifier, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc), cron.WithSeconds()),
		tasks:    tasks,
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
		timeout:  time.Minute,
		logger:   logger.With(slog.String("component", "reminder_scheduler")),
	}
}

// ScheduleDaily registers the due-soon sweep at the given HH:MM.
func (s *Scheduler) ScheduleDaily(timeStr string) (cron.EntryID, error) {
	spec, err := buildDailySpec(timeStr)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.SweepDueSoon(ctx); err != nil {
			s.logger.Error("due-soon sweep failed", slog.String("error", err.Error()))
		}
	})
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// SweepDueSoon notifies the owner of every incomplete task due tomorrow and
// returns how many reminders were queued. A failing notification is logged
// and does not stop the sweep.
func (s *Scheduler) SweepDueSoon(ctx context.Context) (int, error) {
	tomorrow := domain.DateOf(s.now().In(s.loc)).AddDays(1)

	tasks, err := s.tasks.ListIncompleteDueOn(ctx, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("failed to list tasks due %s: %w", tomorrow, err)
	}

	queued := 0
	for _, task := range tasks {
		event := domain.TaskEvent{
			Kind:     domain.TaskEventDueSoon,
			TaskID:   task.ID,
			TaskName: task.Name,
			DueDate:  task.DueDate,
		}
		if err := s.notifier.Notify(ctx, task.UserID, event); err != nil {
			s.logger.Warn("failed to queue due-soon reminder",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		queued++
	}

	s.logger.Info("due-soon sweep finished",
		slog.String("due_date", tomorrow.String()),
		slog.Int("task_count", len(tasks)),
		slog.Int("queued", queued))
	return queued, nil
}

func buildDailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
