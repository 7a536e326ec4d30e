package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

// PostgresTaskCategoryStore implements store.TaskCategoryStore over the
// category_task join table.
type PostgresTaskCategoryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskCategoryStore creates a link store over db.
func NewPostgresTaskCategoryStore(db store.DBTX, logger *slog.Logger) *PostgresTaskCategoryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskCategoryStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_category_store")),
	}
}

var _ store.TaskCategoryStore = (*PostgresTaskCategoryStore)(nil)

// WithTx implements store.TaskCategoryStore.
func (s *PostgresTaskCategoryStore) WithTx(tx *sql.Tx) store.TaskCategoryStore {
	return &PostgresTaskCategoryStore{db: tx, logger: s.logger}
}

// Link implements store.TaskCategoryStore.
func (s *PostgresTaskCategoryStore) Link(ctx context.Context, taskID, categoryID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO category_task (category_id, task_id)
		VALUES ($1, $2)
		ON CONFLICT (category_id, task_id) DO NOTHING`,
		categoryID, taskID,
	)
	if err != nil {
		log.Error("failed to link task to category",
			slog.String("task_id", taskID.String()),
			slog.String("category_id", categoryID.String()),
			slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// CategoryIDsByTask implements store.TaskCategoryStore.
func (s *PostgresTaskCategoryStore) CategoryIDsByTask(
	ctx context.Context,
	taskIDs []uuid.UUID,
) (map[uuid.UUID][]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result := make(map[uuid.UUID][]uuid.UUID, len(taskIDs))
	if len(taskIDs) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id, category_id FROM category_task
		WHERE task_id = ANY($1::uuid[])
		ORDER BY task_id, created_at, category_id`,
		uuidStrings(taskIDs),
	)
	if err != nil {
		log.Error("failed to load category links", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer closeRows(rows, log)

	for rows.Next() {
		var taskID, categoryID uuid.UUID
		if err := rows.Scan(&taskID, &categoryID); err != nil {
			return nil, MapError(err)
		}
		result[taskID] = append(result[taskID], categoryID)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return result, nil
}

// uuidStrings renders ids as a text array argument for ANY($n::uuid[]).
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
