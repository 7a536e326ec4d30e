package reminder

import (
	"context"
	"log/slog"
)

// LogSender delivers reminders as structured log records.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender writing through logger.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With(slog.String("component", "reminder_sender"))}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, r *Reminder) error {
	s.logger.InfoContext(ctx, "task reminder",
		slog.String("reminder_id", r.ID.String()),
		slog.String("user_id", r.UserID.String()),
		slog.String("kind", string(r.Event.Kind)),
		slog.String("task_id", r.Event.TaskID.String()),
		slog.String("task_name", r.Event.TaskName),
		slog.String("due_date", r.Event.DueDate.String()))
	return nil
}
