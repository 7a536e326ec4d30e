package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
)

// MockUserService implements service.UserService for testing
type MockUserService struct {
	RegisterFn        func(ctx context.Context, in service.RegisterInput) (*service.Session, error)
	LoginFn           func(ctx context.Context, email, password string) (*service.Session, error)
	LogoutFn          func(ctx context.Context, userID uuid.UUID) error
	GetUserFn         func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ValidateSessionFn func(ctx context.Context, token string) (*auth.Claims, error)

	// Default values used when functions aren't explicitly defined
	Session *service.Session
	User    *domain.User
	Claims  *auth.Claims
	Err     error

	// LogoutCalls records the users logged out.
	LogoutCalls struct {
		mu      sync.Mutex
		UserIDs []uuid.UUID
	}
}

var _ service.UserService = (*MockUserService)(nil)

// Register implements service.UserService
func (m *MockUserService) Register(ctx context.Context, in service.RegisterInput) (*service.Session, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, in)
	}
	return m.Session, m.Err
}

// Login implements service.UserService
func (m *MockUserService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, email, password)
	}
	return m.Session, m.Err
}

// Logout implements service.UserService
func (m *MockUserService) Logout(ctx context.Context, userID uuid.UUID) error {
	m.LogoutCalls.mu.Lock()
	m.LogoutCalls.UserIDs = append(m.LogoutCalls.UserIDs, userID)
	m.LogoutCalls.mu.Unlock()

	if m.LogoutFn != nil {
		return m.LogoutFn(ctx, userID)
	}
	return m.Err
}

// GetUser implements service.UserService
func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, userID)
	}
	return m.User, m.Err
}

// ValidateSession implements service.UserService
func (m *MockUserService) ValidateSession(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateSessionFn != nil {
		return m.ValidateSessionFn(ctx, token)
	}
	return m.Claims, m.Err
}

// LoggedOut returns a copy of the recorded logout user ids.
func (m *MockUserService) LoggedOut() []uuid.UUID {
	m.LogoutCalls.mu.Lock()
	defer m.LogoutCalls.mu.Unlock()
	return append([]uuid.UUID(nil), m.LogoutCalls.UserIDs...)
}
