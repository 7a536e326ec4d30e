package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// CommentStore defines the interface for comment persistence.
type CommentStore interface {
	// Create inserts a comment. A missing task surfaces as ErrInvalidEntity.
	Create(ctx context.Context, comment *domain.Comment) error

	// ListByTask returns the task's comments, oldest first.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Comment, error)

	// WithTx returns a CommentStore bound to the transaction.
	WithTx(tx *sql.Tx) CommentStore
}
