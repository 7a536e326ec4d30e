package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

// DefaultTasksPerPage is the page size used when none is configured.
const DefaultTasksPerPage = 5

const (
	taskServiceName       = "task"
	maxShareTokenAttempts = 3
)

// CreateTaskInput carries the client-supplied fields of a new task.
type CreateTaskInput struct {
	Name        string
	Description *string
	DueDate     string
	IsCompleted bool
	CategoryIDs []uuid.UUID
}

// UpdateTaskInput carries a partial update. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Name        *string
	Description *string
	DueDate     *string
	IsCompleted *bool
}

// ListTasksInput selects a page of the caller's tasks. Nil filters match everything.
type ListTasksInput struct {
	Completed *bool
	DueDate   *string
	Page      int
}

// TaskService provides task operations on behalf of an authenticated caller.
type TaskService interface {
	// CreateTask creates a task owned by caller and links it to the given
	// categories in one transaction.
	CreateTask(ctx context.Context, caller uuid.UUID, in CreateTaskInput) (*domain.Task, error)

	// ListTasks returns one page of the caller's own tasks.
	ListTasks(ctx context.Context, caller uuid.UUID, in ListTasksInput) (*domain.Page[*domain.Task], error)

	// GetTask returns a task the caller owns.
	GetTask(ctx context.Context, caller, taskID uuid.UUID) (*domain.Task, error)

	// UpdateTask applies a partial update to a task the caller owns.
	UpdateTask(ctx context.Context, caller, taskID uuid.UUID, in UpdateTaskInput) (*domain.Task, error)

	// DeleteTask removes a task the caller owns.
	DeleteTask(ctx context.Context, caller, taskID uuid.UUID) error

	// GetSharedTask resolves a share token without an ownership check.
	// viewer is uuid.Nil for anonymous requests.
	GetSharedTask(ctx context.Context, viewer uuid.UUID, token string) (*domain.Task, error)

	// ListTasksByCategory returns the caller's tasks linked to the category.
	ListTasksByCategory(ctx context.Context, caller, categoryID uuid.UUID) ([]*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tx         store.Transactor
	tasks      store.TaskStore
	links      store.TaskCategoryStore
	categories store.CategoryStore
	notifier   Notifier
	newToken   ShareTokenGenerator
	pageSize   int
	logger     *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tx store.Transactor,
	tasks store.TaskStore,
	links store.TaskCategoryStore,
	categories store.CategoryStore,
	notifier Notifier,
	newToken ShareTokenGenerator,
	pageSize int,
	logger *slog.Logger,
) (TaskService, error) {
	switch {
	case tx == nil:
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	case tasks == nil:
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	case links == nil:
		return nil, domain.NewValidationError("links", "cannot be nil", domain.ErrValidation)
	case categories == nil:
		return nil, domain.NewValidationError("categories", "cannot be nil", domain.ErrValidation)
	case newToken == nil:
		return nil, domain.NewValidationError("newToken", "cannot be nil", domain.ErrValidation)
	}

	if notifier == nil {
		notifier = NopNotifier{}
	}
	if pageSize <= 0 {
		pageSize = DefaultTasksPerPage
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tx:         tx,
		tasks:      tasks,
		links:      links,
		categories: categories,
		notifier:   notifier,
		newToken:   newToken,
		pageSize:   pageSize,
		logger:     logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	caller uuid.UUID,
	in CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}

	token, err := s.newToken()
	if err != nil {
		return nil, wrapError(taskServiceName, "create_task", "share token generation failed", err)
	}

	task, err := domain.NewTask(caller, in.Name, in.Description, dueDate, in.IsCompleted, token)
	if err != nil {
		return nil, err
	}

	if task.ShareToken, err = s.uniqueShareToken(ctx, token); err != nil {
		log.Error("failed to generate share token", slog.String("error", err.Error()))
		return nil, wrapError(taskServiceName, "create_task", "share token generation failed", err)
	}

	categoryIDs := uniqueIDs(in.CategoryIDs)

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.tasks.WithTx(tx).Create(ctx, task); err != nil {
			return err
		}
		if len(categoryIDs) == 0 {
			return nil
		}

		found, err := s.categories.WithTx(tx).GetByIDs(ctx, categoryIDs)
		if err != nil {
			return err
		}
		if missing := missingIDs(categoryIDs, found); len(missing) > 0 {
			return &MissingCategoriesError{IDs: missing}
		}

		txLinks := s.links.WithTx(tx)
		for _, categoryID := range categoryIDs {
			if err := txLinks.Link(ctx, task.ID, categoryID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var missing *MissingCategoriesError
		if errors.As(err, &missing) {
			log.Debug("task references unknown categories",
				slog.String("user_id", caller.String()),
				slog.Int("missing_count", len(missing.IDs)))
		} else {
			log.Error("failed to create task",
				slog.String("error", err.Error()),
				slog.String("user_id", caller.String()))
		}
		return nil, wrapError(taskServiceName, "create_task", "failed to save task", err)
	}

	task.CategoryIDs = categoryIDs

	// Notification runs after commit and never fails the request.
	event := domain.TaskEvent{
		Kind:     domain.TaskEventCreated,
		TaskID:   task.ID,
		TaskName: task.Name,
		DueDate:  task.DueDate,
	}
	if err := s.notifier.Notify(ctx, caller, event); err != nil {
		log.Warn("failed to dispatch task notification",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", caller.String()),
		slog.Int("category_count", len(categoryIDs)))

	return task, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	caller uuid.UUID,
	in ListTasksInput,
) (*domain.Page[*domain.Task], error) {
	filter := domain.TaskFilter{UserID: caller, Completed: in.Completed}
	if in.DueDate != nil {
		dueDate, err := parseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		filter.DueDate = &dueDate
	}

	req := domain.NewPageRequest(in.Page, s.pageSize)
	tasks, total, err := s.tasks.List(ctx, filter, req)
	if err != nil {
		return nil, wrapError(taskServiceName, "list_tasks", "failed to list tasks", err)
	}
	if err := s.attachCategories(ctx, s.links, tasks); err != nil {
		return nil, wrapError(taskServiceName, "list_tasks", "failed to load categories", err)
	}

	return domain.NewPage(tasks, total, req), nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, caller, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.ownedTask(ctx, s.tasks, caller, taskID)
	if err != nil {
		return nil, wrapError(taskServiceName, "get_task", "failed to retrieve task", err)
	}
	if err := s.attachCategories(ctx, s.links, []*domain.Task{task}); err != nil {
		return nil, wrapError(taskServiceName, "get_task", "failed to load categories", err)
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	caller, taskID uuid.UUID,
	in UpdateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	patch := domain.TaskPatch{
		Name:        in.Name,
		Description: in.Description,
		IsCompleted: in.IsCompleted,
	}
	if in.DueDate != nil {
		dueDate, err := parseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		patch.DueDate = &dueDate
	}

	var updated *domain.Task
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := s.ownedTask(ctx, txTasks, caller, taskID)
		if err != nil {
			return err
		}

		if !patch.IsEmpty() {
			if err := task.Apply(patch); err != nil {
				return err
			}
			if err := txTasks.Update(ctx, task); err != nil {
				return err
			}
		}

		if err := s.attachCategories(ctx, s.links.WithTx(tx), []*domain.Task{task}); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return nil, wrapError(taskServiceName, "update_task", "failed to update task", err)
	}

	log.Debug("task updated",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", caller.String()))

	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, caller, taskID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)
		if _, err := s.ownedTask(ctx, txTasks, caller, taskID); err != nil {
			return err
		}
		return txTasks.Delete(ctx, taskID)
	})
	if err != nil {
		return wrapError(taskServiceName, "delete_task", "failed to delete task", err)
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.String("user_id", caller.String()))

	return nil
}

// GetSharedTask implements TaskService.GetSharedTask
func (s *taskServiceImpl) GetSharedTask(
	ctx context.Context,
	viewer uuid.UUID,
	token string,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if token == "" {
		return nil, store.ErrTaskNotFound
	}

	task, err := s.tasks.GetByShareToken(ctx, token)
	if err != nil {
		return nil, wrapError(taskServiceName, "get_shared_task", "failed to resolve share token", err)
	}
	if err := s.attachCategories(ctx, s.links, []*domain.Task{task}); err != nil {
		return nil, wrapError(taskServiceName, "get_shared_task", "failed to load categories", err)
	}

	attrs := []any{slog.String("task_id", task.ID.String())}
	if viewer != uuid.Nil {
		attrs = append(attrs, slog.String("viewer_id", viewer.String()))
	}
	log.Debug("shared task resolved", attrs...)

	return task, nil
}

// ListTasksByCategory implements TaskService.ListTasksByCategory
func (s *taskServiceImpl) ListTasksByCategory(
	ctx context.Context,
	caller, categoryID uuid.UUID,
) ([]*domain.Task, error) {
	if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
		return nil, wrapError(taskServiceName, "list_tasks_by_category", "failed to retrieve category", err)
	}

	tasks, err := s.tasks.ListByCategory(ctx, categoryID, caller)
	if err != nil {
		return nil, wrapError(taskServiceName, "list_tasks_by_category", "failed to list tasks", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	if err := s.attachCategories(ctx, s.links, tasks); err != nil {
		return nil, wrapError(taskServiceName, "list_tasks_by_category", "failed to load categories", err)
	}
	return tasks, nil
}

// ownedTask loads a task and checks that caller owns it. Existence is
// checked before ownership.
func (s *taskServiceImpl) ownedTask(
	ctx context.Context,
	tasks store.TaskStore,
	caller, taskID uuid.UUID,
) (*domain.Task, error) {
	task, err := tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsOwnedBy(caller) {
		logger.FromContextOrDefault(ctx, s.logger).Debug("task access denied",
			slog.String("task_id", taskID.String()),
			slog.String("user_id", caller.String()))
		return nil, ErrNotOwned
	}
	return task, nil
}

// uniqueShareToken returns token if unused, otherwise draws replacements
// until one is unused or the attempts run out.
func (s *taskServiceImpl) uniqueShareToken(ctx context.Context, token string) (string, error) {
	for attempt := 1; ; attempt++ {
		exists, err := s.tasks.ShareTokenExists(ctx, token)
		if err != nil {
			return "", err
		}
		if !exists {
			return token, nil
		}
		logger.FromContextOrDefault(ctx, s.logger).Warn("share token collision",
			slog.Int("attempt", attempt))
		if attempt == maxShareTokenAttempts {
			return "", ErrShareTokenExhausted
		}
		if token, err = s.newToken(); err != nil {
			return "", err
		}
	}
}

func (s *taskServiceImpl) attachCategories(
	ctx context.Context,
	links store.TaskCategoryStore,
	tasks []*domain.Task,
) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	byTask, err := links.CategoryIDsByTask(ctx, ids)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if linked, ok := byTask[t.ID]; ok {
			t.CategoryIDs = linked
		} else {
			t.CategoryIDs = []uuid.UUID{}
		}
	}
	return nil
}

func parseDueDate(value string) (domain.Date, error) {
	d, err := domain.ParseDate(value)
	if err != nil {
		return domain.Date{}, domain.NewValidationError("dueDate",
			fmt.Sprintf("must be a date such as 2006-01-02, got %q", value), err)
	}
	return d, nil
}

// uniqueIDs drops duplicates and keeps first-seen order.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func missingIDs(want []uuid.UUID, found []*domain.Category) []uuid.UUID {
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, c := range found {
		present[c.ID] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range want {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
