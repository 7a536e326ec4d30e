package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// CategoryStore defines the interface for category persistence.
type CategoryStore interface {
	// Create returns ErrCategoryExists if the name is taken.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID returns ErrCategoryNotFound if the category does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	// GetByIDs returns the categories that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Category, error)

	// ExistsByName reports whether a category with the exact name exists.
	ExistsByName(ctx context.Context, name string) (bool, error)

	// List returns every category ordered by name.
	List(ctx context.Context) ([]*domain.Category, error)

	// WithTx returns a CategoryStore bound to the transaction.
	WithTx(tx *sql.Tx) CategoryStore
}
