package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

// PostgresTaskStore implements store.TaskStore on PostgreSQL.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a task store over db.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx, logger: s.logger}
}

const taskColumns = `id, user_id, task_name, description, due_date, is_completed, share_token, created_at, updated_at`

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Name,
		&t.Description,
		&t.DueDate,
		&t.IsCompleted,
		&t.ShareToken,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.CategoryIDs = []uuid.UUID{}
	return &t, nil
}

// Create implements store.TaskStore.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		task.ID,
		task.UserID,
		task.Name,
		task.Description,
		task.DueDate,
		task.IsCompleted,
		task.ShareToken,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task",
			slog.String("task_id", task.ID.String()),
			slog.String("user_id", task.UserID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", task.UserID.String()))
	return nil
}

// GetByID implements store.TaskStore.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.getOne(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
}

// GetByShareToken implements store.TaskStore.
func (s *PostgresTaskStore) GetByShareToken(ctx context.Context, token string) (*domain.Task, error) {
	return s.getOne(ctx, `SELECT `+taskColumns+` FROM tasks WHERE share_token = $1`, token)
}

func (s *PostgresTaskStore) getOne(ctx context.Context, query string, arg any) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to load task", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return task, nil
}

// ShareTokenExists implements store.TaskStore.
func (s *PostgresTaskStore) ShareTokenExists(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE share_token = $1)`, token).Scan(&exists)
	if err != nil {
		return false, MapError(err)
	}
	return exists, nil
}

// Update implements store.TaskStore.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET task_name = $1, description = $2, due_date = $3, is_completed = $4, updated_at = $5
		WHERE id = $6`,
		task.Name,
		task.Description,
		task.DueDate,
		task.IsCompleted,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		log.Error("failed to update task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("task_id", id.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// taskFilterClause renders the WHERE clause for filter. Criteria are AND-ed.
func taskFilterClause(filter domain.TaskFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{filter.UserID}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		conds = append(conds, fmt.Sprintf("is_completed = $%d", len(args)))
	}
	if filter.DueDate != nil {
		args = append(args, *filter.DueDate)
		conds = append(conds, fmt.Sprintf("due_date = $%d", len(args)))
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// List implements store.TaskStore.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	filter domain.TaskFilter,
	page domain.PageRequest,
) ([]*domain.Task, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where, args := taskFilterClause(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	if total == 0 || page.Offset() >= total {
		return []*domain.Task{}, total, nil
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + where +
		fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, page.PerPage, page.Offset())

	tasks, err := s.queryTasks(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// ListByCategory implements store.TaskStore.
func (s *PostgresTaskStore) ListByCategory(
	ctx context.Context,
	categoryID, ownerID uuid.UUID,
) ([]*domain.Task, error) {
	return s.queryTasks(ctx, `
		SELECT t.id, t.user_id, t.task_name, t.description, t.due_date, t.is_completed,
		       t.share_token, t.created_at, t.updated_at
		FROM tasks t
		JOIN category_task ct ON ct.task_id = t.id
		WHERE ct.category_id = $1 AND t.user_id = $2
		ORDER BY t.created_at, t.id`, categoryID, ownerID)
}

// ListIncompleteDueOn implements store.TaskStore.
func (s *PostgresTaskStore) ListIncompleteDueOn(ctx context.Context, date domain.Date) ([]*domain.Task, error) {
	return s.queryTasks(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE due_date = $1 AND NOT is_completed
		ORDER BY user_id, created_at`, date)
}

func (s *PostgresTaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	tasks := []*domain.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}
