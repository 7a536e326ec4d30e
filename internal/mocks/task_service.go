package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
)

// MockTaskService implements service.TaskService for testing
type MockTaskService struct {
	CreateTaskFn          func(ctx context.Context, caller uuid.UUID, in service.CreateTaskInput) (*domain.Task, error)
	ListTasksFn           func(ctx context.Context, caller uuid.UUID, in service.ListTasksInput) (*domain.Page[*domain.Task], error)
	GetTaskFn             func(ctx context.Context, caller, taskID uuid.UUID) (*domain.Task, error)
	UpdateTaskFn          func(ctx context.Context, caller, taskID uuid.UUID, in service.UpdateTaskInput) (*domain.Task, error)
	DeleteTaskFn          func(ctx context.Context, caller, taskID uuid.UUID) error
	GetSharedTaskFn       func(ctx context.Context, viewer uuid.UUID, token string) (*domain.Task, error)
	ListTasksByCategoryFn func(ctx context.Context, caller, categoryID uuid.UUID) ([]*domain.Task, error)

	// Default values used when functions aren't explicitly defined
	Task  *domain.Task
	Tasks []*domain.Task
	Err   error

	// Calls records the caller of every invocation, keyed by method name.
	Calls struct {
		mu      sync.Mutex
		Callers map[string][]uuid.UUID
	}
}

var _ service.TaskService = (*MockTaskService)(nil)

func (m *MockTaskService) record(method string, caller uuid.UUID) {
	m.Calls.mu.Lock()
	defer m.Calls.mu.Unlock()
	if m.Calls.Callers == nil {
		m.Calls.Callers = make(map[string][]uuid.UUID)
	}
	m.Calls.Callers[method] = append(m.Calls.Callers[method], caller)
}

// CallersOf returns the callers recorded for method.
func (m *MockTaskService) CallersOf(method string) []uuid.UUID {
	m.Calls.mu.Lock()
	defer m.Calls.mu.Unlock()
	return append([]uuid.UUID(nil), m.Calls.Callers[method]...)
}

// CreateTask implements service.TaskService
func (m *MockTaskService) CreateTask(
	ctx context.Context,
	caller uuid.UUID,
	in service.CreateTaskInput,
) (*domain.Task, error) {
	m.record("CreateTask", caller)
	if m.CreateTaskFn != nil {
		return m.CreateTaskFn(ctx, caller, in)
	}
	return m.Task, m.Err
}

// ListTasks implements service.TaskService
func (m *MockTaskService) ListTasks(
	ctx context.Context,
	caller uuid.UUID,
	in service.ListTasksInput,
) (*domain.Page[*domain.Task], error) {
	m.record("ListTasks", caller)
	if m.ListTasksFn != nil {
		return m.ListTasksFn(ctx, caller, in)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return domain.NewPage(m.Tasks, len(m.Tasks), domain.NewPageRequest(in.Page, 5)), nil
}

// GetTask implements service.TaskService
func (m *MockTaskService) GetTask(ctx context.Context, caller, taskID uuid.UUID) (*domain.Task, error) {
	m.record("GetTask", caller)
	if m.GetTaskFn != nil {
		return m.GetTaskFn(ctx, caller, taskID)
	}
	return m.Task, m.Err
}

// UpdateTask implements service.TaskService
func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	caller, taskID uuid.UUID,
	in service.UpdateTaskInput,
) (*domain.Task, error) {
	m.record("UpdateTask", caller)
	if m.UpdateTaskFn != nil {
		return m.UpdateTaskFn(ctx, caller, taskID, in)
	}
	return m.Task, m.Err
}

// DeleteTask implements service.TaskService
func (m *MockTaskService) DeleteTask(ctx context.Context, caller, taskID uuid.UUID) error {
	m.record("DeleteTask", caller)
	if m.DeleteTaskFn != nil {
		return m.DeleteTaskFn(ctx, caller, taskID)
	}
	return m.Err
}

// GetSharedTask implements service.TaskService
func (m *MockTaskService) GetSharedTask(ctx context.Context, viewer uuid.UUID, token string) (*domain.Task, error) {
	m.record("GetSharedTask", viewer)
	if m.GetSharedTaskFn != nil {
		return m.GetSharedTaskFn(ctx, viewer, token)
	}
	return m.Task, m.Err
}

// ListTasksByCategory implements service.TaskService
func (m *MockTaskService) ListTasksByCategory(
	ctx context.Context,
	caller, categoryID uuid.UUID,
) ([]*domain.Task, error) {
	m.record("ListTasksByCategory", caller)
	if m.ListTasksByCategoryFn != nil {
		return m.ListTasksByCategoryFn(ctx, caller, categoryID)
	}
	return m.Tasks, m.Err
}
