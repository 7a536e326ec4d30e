package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user. HashedPassword must already be set.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetTokenVersion returns the user's current session generation.
	GetTokenVersion(ctx context.Context, id uuid.UUID) (int, error)

	// IncrementTokenVersion invalidates every token issued so far and
	// returns the new version.
	IncrementTokenVersion(ctx context.Context, id uuid.UUID) (int, error)

	// WithTx returns a UserStore bound to the transaction.
	WithTx(tx *sql.Tx) UserStore
}
