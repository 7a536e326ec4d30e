package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
)

// MockCommentService implements service.CommentService for testing
type MockCommentService struct {
	AddCommentFn   func(ctx context.Context, caller, taskID uuid.UUID, description string) (*domain.Comment, error)
	ListCommentsFn func(ctx context.Context, caller, taskID uuid.UUID) ([]*domain.Comment, error)

	// Default values used when functions aren't explicitly defined
	Comment  *domain.Comment
	Comments []*domain.Comment
	Err      error
}

var _ service.CommentService = (*MockCommentService)(nil)

// AddComment implements service.CommentService
func (m *MockCommentService) AddComment(
	ctx context.Context,
	caller, taskID uuid.UUID,
	description string,
) (*domain.Comment, error) {
	if m.AddCommentFn != nil {
		return m.AddCommentFn(ctx, caller, taskID, description)
	}
	return m.Comment, m.Err
}

// ListComments implements service.CommentService
func (m *MockCommentService) ListComments(
	ctx context.Context,
	caller, taskID uuid.UUID,
) ([]*domain.Comment, error) {
	if m.ListCommentsFn != nil {
		return m.ListCommentsFn(ctx, caller, taskID)
	}
	return m.Comments, m.Err
}
