package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

const commentServiceName = "comment"

// CommentService manages comments on tasks.
type CommentService interface {
	// AddComment attaches a comment by caller to an existing task.
	// Any authenticated user may comment on any task they can name.
	AddComment(ctx context.Context, caller, taskID uuid.UUID, description string) (*domain.Comment, error)

	// ListComments returns the comments of a task the caller owns.
	ListComments(ctx context.Context, caller, taskID uuid.UUID) ([]*domain.Comment, error)
}

type commentServiceImpl struct {
	comments store.CommentStore
	tasks    store.TaskStore
	logger   *slog.Logger
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	comments store.CommentStore,
	tasks store.TaskStore,
	logger *slog.Logger,
) (CommentService, error) {
	if comments == nil {
		return nil, domain.NewValidationError("comments", "cannot be nil", domain.ErrValidation)
	}
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &commentServiceImpl{
		comments: comments,
		tasks:    tasks,
		logger:   logger.With(slog.String("component", "comment_service")),
	}, nil
}

// AddComment implements CommentService.AddComment
func (s *commentServiceImpl) AddComment(
	ctx context.Context,
	caller, taskID uuid.UUID,
	description string,
) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	comment, err := domain.NewComment(taskID, caller, description)
	if err != nil {
		return nil, err
	}

	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		return nil, wrapError(commentServiceName, "add_comment", "failed to retrieve task", err)
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		// The task was deleted between the lookup and the insert.
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to save comment",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, wrapError(commentServiceName, "add_comment", "failed to save comment", err)
	}

	log.Info("comment added",
		slog.String("comment_id", comment.ID.String()),
		slog.String("task_id", taskID.String()),
		slog.String("user_id", caller.String()))

	return comment, nil
}

// ListComments implements CommentService.ListComments
func (s *commentServiceImpl) ListComments(
	ctx context.Context,
	caller, taskID uuid.UUID,
) ([]*domain.Comment, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, wrapError(commentServiceName, "list_comments", "failed to retrieve task", err)
	}
	if !task.IsOwnedBy(caller) {
		return nil, ErrNotOwned
	}

	comments, err := s.comments.ListByTask(ctx, taskID)
	if err != nil {
		return nil, wrapError(commentServiceName, "list_comments", "failed to list comments", err)
	}
	if comments == nil {
		comments = []*domain.Comment{}
	}
	return comments, nil
}
