package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// TaskStore defines the interface for task persistence.
// Returned tasks do not carry CategoryIDs; see TaskCategoryStore.
type TaskStore interface {
	// Create inserts a new task.
	// Returns ErrShareTokenExists on a share token collision.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetByShareToken returns ErrTaskNotFound if no task carries the token.
	GetByShareToken(ctx context.Context, token string) (*domain.Task, error)

	// ShareTokenExists reports whether any task already uses token.
	ShareTokenExists(ctx context.Context, token string) (bool, error)

	// Update writes the mutable fields (name, description, due date,
	// completion). Owner and share token are never written.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task; its category links and comments go with it.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns one page of the tasks matching filter and the total match count.
	List(ctx context.Context, filter domain.TaskFilter, page domain.PageRequest) ([]*domain.Task, int, error)

	// ListByCategory returns the owner's tasks linked to categoryID.
	ListByCategory(ctx context.Context, categoryID, ownerID uuid.UUID) ([]*domain.Task, error)

	// ListIncompleteDueOn returns every incomplete task due on date.
	ListIncompleteDueOn(ctx context.Context, date domain.Date) ([]*domain.Task, error)

	// WithTx returns a TaskStore bound to the transaction.
	WithTx(tx *sql.Tx) TaskStore
}

// TaskCategoryStore manages the task to category association.
type TaskCategoryStore interface {
	// Link associates a task with a category. Linking twice is a no-op.
	Link(ctx context.Context, taskID, categoryID uuid.UUID) error

	// CategoryIDsByTask returns the linked category ids keyed by task id.
	// Tasks without links are absent from the map.
	CategoryIDsByTask(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)

	// WithTx returns a TaskCategoryStore bound to the transaction.
	WithTx(tx *sql.Tx) TaskCategoryStore
}
