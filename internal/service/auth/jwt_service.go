package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService issues and validates session tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the user at the given
	// session generation.
	GenerateToken(ctx context.Context, userID uuid.UUID, tokenVersion int) (string, error)

	// ValidateToken checks signature and lifetime and returns the claims.
	// It does not know whether the session generation is still current.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the application-level contents of a validated token.
type Claims struct {
	UserID       uuid.UUID
	TokenVersion int
	Subject      string
	IssuedAt     time.Time
	ExpiresAt    time.Time
	ID           string
}
