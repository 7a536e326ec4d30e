package mocks

import (
	"context"

	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service"
)

// MockCategoryService implements service.CategoryService for testing
type MockCategoryService struct {
	ListCategoriesFn func(ctx context.Context) ([]*domain.Category, error)
	CreateCategoryFn func(ctx context.Context, name string) (*domain.Category, error)

	// Default values used when functions aren't explicitly defined
	Categories []*domain.Category
	Category   *domain.Category
	Err        error
}

var _ service.CategoryService = (*MockCategoryService)(nil)

// ListCategories implements service.CategoryService
func (m *MockCategoryService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	if m.ListCategoriesFn != nil {
		return m.ListCategoriesFn(ctx)
	}
	return m.Categories, m.Err
}

// CreateCategory implements service.CategoryService
func (m *MockCategoryService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	if m.CreateCategoryFn != nil {
		return m.CreateCategoryFn(ctx, name)
	}
	return m.Category, m.Err
}
