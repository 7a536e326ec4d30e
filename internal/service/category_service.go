package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/store"
)

const categoryServiceName = "category"

// CategoryService manages the global set of categories.
type CategoryService interface {
	// ListCategories returns every category.
	ListCategories(ctx context.Context) ([]*domain.Category, error)

	// CreateCategory returns store.ErrCategoryExists if the name is taken.
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
}

type categoryServiceImpl struct {
	categories store.CategoryStore
	logger     *slog.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categories store.CategoryStore, logger *slog.Logger) (CategoryService, error) {
	if categories == nil {
		return nil, domain.NewValidationError("categories", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &categoryServiceImpl{
		categories: categories,
		logger:     logger.With(slog.String("component", "category_service")),
	}, nil
}

// ListCategories implements CategoryService.ListCategories
func (s *categoryServiceImpl) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, wrapError(categoryServiceName, "list_categories", "failed to list categories", err)
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	return categories, nil
}

// CreateCategory implements CategoryService.CreateCategory
func (s *categoryServiceImpl) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	category, err := domain.NewCategory(name)
	if err != nil {
		return nil, err
	}

	exists, err := s.categories.ExistsByName(ctx, category.Name)
	if err != nil {
		return nil, wrapError(categoryServiceName, "create_category", "failed to check category name", err)
	}
	if exists {
		log.Debug("category name already taken", slog.String("name", category.Name))
		return nil, store.ErrCategoryExists
	}

	// The unique constraint still catches a concurrent insert of the same name.
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, wrapError(categoryServiceName, "create_category", "failed to save category", err)
	}

	log.Info("category created",
		slog.String("category_id", category.ID.String()),
		slog.String("name", category.Name))

	return category, nil
}
