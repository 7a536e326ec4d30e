package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/mocks"
	"github.com/phrazzld/tasker-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCategoriesHandler(t *testing.T) {
	t.Parallel()

	categories := &mocks.MockCategoryService{
		Categories: []*domain.Category{
			{ID: uuid.New(), Name: "Home"},
			{ID: uuid.New(), Name: "Work"},
		},
	}
	handler := NewCategoryHandler(categories, testLogger())

	rr := serve(t, testRequest{method: http.MethodGet, pattern: "/categories", path: "/categories", userID: uuid.New()},
		handler.ListCategories)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeResponse[[]CategoryResponse](t, rr)
	require.Len(t, resp, 2)
	assert.Equal(t, "Home", resp[0].Name)

	rr = serve(t, testRequest{method: http.MethodGet, pattern: "/categories", path: "/categories", userID: uuid.New()},
		NewCategoryHandler(&mocks.MockCategoryService{}, testLogger()).ListCategories)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestCreateCategoryHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       interface{}
		err        error
		wantStatus int
	}{
		{"created", map[string]string{"name": "Errands"}, nil, http.StatusCreated},
		{"missing name", map[string]string{}, nil, http.StatusBadRequest},
		{"duplicate name", map[string]string{"name": "Errands"}, store.ErrCategoryExists, http.StatusConflict},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var gotName string
			categories := &mocks.MockCategoryService{
				CreateCategoryFn: func(_ context.Context, name string) (*domain.Category, error) {
					gotName = name
					if tc.err != nil {
						return nil, tc.err
					}
					return &domain.Category{ID: uuid.New(), Name: name}, nil
				},
			}
			handler := NewCategoryHandler(categories, testLogger())

			rr := serve(t, testRequest{
				method: http.MethodPost, pattern: "/categories", path: "/categories", userID: uuid.New(), body: tc.body,
			}, handler.CreateCategory)

			require.Equal(t, tc.wantStatus, rr.Code, rr.Body.String())
			if tc.wantStatus == http.StatusCreated {
				assert.Equal(t, "Errands", gotName)
				assert.Equal(t, "Errands", decodeResponse[CategoryResponse](t, rr).Name)
			}
		})
	}
}
