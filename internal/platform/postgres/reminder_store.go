package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/reminder"
	"github.com/phrazzld/tasker-api/internal/store"
)

// PostgresReminderStore implements reminder.Store on PostgreSQL.
type PostgresReminderStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReminderStore creates a reminder store over db.
func NewPostgresReminderStore(db store.DBTX, logger *slog.Logger) *PostgresReminderStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReminderStore{
		db:     db,
		logger: logger.With(slog.String("component", "reminder_store")),
	}
}

var _ reminder.Store = (*PostgresReminderStore)(nil)

// Save implements reminder.Store.
func (s *PostgresReminderStore) Save(ctx context.Context, r *reminder.Reminder) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (id, user_id, task_id, kind, task_name, due_date, status, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status, error_message = EXCLUDED.error_message, updated_at = EXCLUDED.updated_at`,
		r.ID,
		r.UserID,
		r.Event.TaskID,
		string(r.Event.Kind),
		r.Event.TaskName,
		r.Event.DueDate,
		string(r.Status),
		r.ErrorMessage,
		r.CreatedAt,
		r.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to save reminder",
			slog.String("reminder_id", r.ID.String()),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to save reminder: %w", MapError(err))
	}
	return nil
}

// UpdateStatus implements reminder.Store.
func (s *PostgresReminderStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status reminder.Status,
	errorMsg string,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `
		UPDATE reminders
		SET status = $1, error_message = NULLIF($2, ''), updated_at = $3
		WHERE id = $4`,
		string(status), errorMsg, time.Now().UTC(), id,
	)
	if err != nil {
		log.Error("failed to update reminder status",
			slog.String("reminder_id", id.String()),
			slog.String("status", string(status)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to update reminder status: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrReminderNotFound)
}

// ListByStatus implements reminder.Store.
func (s *PostgresReminderStore) ListByStatus(
	ctx context.Context,
	status reminder.Status,
	olderThan time.Duration,
) ([]*reminder.Reminder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, task_id, kind, task_name, due_date, status,
		       COALESCE(error_message, ''), created_at, updated_at
		FROM reminders
		WHERE status = $1`
	args := []any{string(status)}
	if olderThan > 0 {
		query += ` AND updated_at < $2`
		args = append(args, time.Now().UTC().Add(-olderThan))
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query reminders", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	reminders := []*reminder.Reminder{}
	for rows.Next() {
		var (
			r            reminder.Reminder
			kind, statusText string
		)
		err := rows.Scan(
			&r.ID,
			&r.UserID,
			&r.Event.TaskID,
			&kind,
			&r.Event.TaskName,
			&r.Event.DueDate,
			&statusText,
			&r.ErrorMessage,
			&r.CreatedAt,
			&r.UpdatedAt,
		)
		if err != nil {
			return nil, MapError(err)
		}
		r.Event.Kind = domain.TaskEventKind(kind)
		r.Status = reminder.Status(statusText)
		reminders = append(reminders, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return reminders, nil
}
