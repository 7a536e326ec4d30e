package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/phrazzld/tasker-api/internal/store"
)

const userServiceName = "user"

// Session is an authenticated user plus the bearer token issued for them.
type Session struct {
	User  *domain.User
	Token string
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// UserService handles accounts and their sessions.
type UserService interface {
	// Register creates a user and issues its first token.
	Register(ctx context.Context, in RegisterInput) (*Session, error)

	// Login verifies credentials, revokes the user's earlier tokens and issues
	// a new one. Unknown email and wrong password both yield ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*Session, error)

	// Logout revokes every token issued to the user.
	Logout(ctx context.Context, userID uuid.UUID) error

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// ValidateSession checks a bearer token and that it has not been revoked.
	ValidateSession(ctx context.Context, token string) (*auth.Claims, error)
}

type userServiceImpl struct {
	tx     store.Transactor
	users  store.UserStore
	jwt    auth.JWTService
	hasher auth.PasswordHasher
	logger *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	tx store.Transactor,
	users store.UserStore,
	jwt auth.JWTService,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) (UserService, error) {
	switch {
	case tx == nil:
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	case users == nil:
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	case jwt == nil:
		return nil, domain.NewValidationError("jwt", "cannot be nil", domain.ErrValidation)
	case hasher == nil:
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userServiceImpl{
		tx:     tx,
		users:  users,
		jwt:    jwt,
		hasher: hasher,
		logger: logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register
func (s *userServiceImpl) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if in.Password != in.PasswordConfirmation {
		return nil, domain.NewValidationError("password_confirmation",
			ErrPasswordMismatch.Error(), ErrPasswordMismatch)
	}

	user, err := domain.NewUser(in.Name, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, wrapError(userServiceName, "register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to register with existing email", slog.String("email", user.Email))
		} else {
			log.Error("failed to save user", slog.String("error", err.Error()))
		}
		return nil, wrapError(userServiceName, "register", "failed to create user", err)
	}

	token, err := s.jwt.GenerateToken(ctx, user.ID, user.TokenVersion)
	if err != nil {
		return nil, wrapError(userServiceName, "register", "failed to issue token", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return &Session{User: user, Token: token}, nil
}

// Login implements UserService.Login
func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, wrapError(userServiceName, "login", "failed to retrieve user", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	// Signing in revokes the user's sessions on other devices.
	version, err := s.users.IncrementTokenVersion(ctx, user.ID)
	if err != nil {
		return nil, wrapError(userServiceName, "login", "failed to rotate sessions", err)
	}
	user.TokenVersion = version

	token, err := s.jwt.GenerateToken(ctx, user.ID, version)
	if err != nil {
		return nil, wrapError(userServiceName, "login", "failed to issue token", err)
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	return &Session{User: user, Token: token}, nil
}

// Logout implements UserService.Logout
func (s *userServiceImpl) Logout(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.users.IncrementTokenVersion(ctx, userID); err != nil {
		return wrapError(userServiceName, "logout", "failed to revoke sessions", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("user logged out",
		slog.String("user_id", userID.String()))
	return nil
}

// GetUser implements UserService.GetUser
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, wrapError(userServiceName, "get_user", "failed to retrieve user", err)
	}
	return user, nil
}

// ValidateSession implements UserService.ValidateSession
func (s *userServiceImpl) ValidateSession(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwt.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	current, err := s.users.GetTokenVersion(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, wrapError(userServiceName, "validate_session", "failed to read token version", err)
	}
	if current != claims.TokenVersion {
		return nil, auth.ErrRevokedToken
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
