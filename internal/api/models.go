package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name                 string `json:"name"                  validate:"required,max=255"`
	Email                string `json:"email"                 validate:"required,email"`
	Password             string `json:"password"              validate:"required,min=12,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Name        string   `json:"taskName"     validate:"required,max=255"`
	Description *string  `json:"description"`
	DueDate     string   `json:"dueDate"      validate:"required"`
	IsCompleted *bool    `json:"is_completed"`
	CategoryIDs []string `json:"category_ids" validate:"omitempty,dive,uuid"`
}

// UpdateTaskRequest defines the payload for a partial task update.
// Omitted fields are left unchanged.
type UpdateTaskRequest struct {
	Name        *string `json:"taskName"     validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"      validate:"omitempty,min=1"`
	IsCompleted *bool   `json:"is_completed"`
}

// TaskResponse is the public view of a task.
type TaskResponse struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Name        string      `json:"taskName"`
	Description *string     `json:"description"`
	DueDate     domain.Date `json:"dueDate"`
	IsCompleted bool        `json:"is_completed"`
	ShareToken  string      `json:"share_token"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TaskPageResponse is one page of tasks with its position in the full list.
// From and To are null for an empty page.
type TaskPageResponse struct {
	CurrentPage int            `json:"current_page"`
	Data        []TaskResponse `json:"data"`
	PerPage     int            `json:"per_page"`
	Total       int            `json:"total"`
	LastPage    int            `json:"last_page"`
	From        *int           `json:"from"`
	To          *int           `json:"to"`
}

// CreateCategoryRequest defines the payload for creating a category.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// CategoryResponse is the public view of a category.
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCommentRequest defines the payload for commenting on a task.
type CreateCommentRequest struct {
	Description string `json:"description" validate:"required"`
	TaskID      string `json:"task_id"     validate:"required,uuid"`
}

// CommentResponse is the public view of a comment.
type CommentResponse struct {
	ID          uuid.UUID `json:"id"`
	TaskID      uuid.UUID `json:"task_id"`
	UserID      uuid.UUID `json:"user_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func taskToResponse(t *domain.Task) TaskResponse {
	categoryIDs := t.CategoryIDs
	if categoryIDs == nil {
		categoryIDs = []uuid.UUID{}
	}
	return TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Name:        t.Name,
		Description: t.Description,
		DueDate:     t.DueDate,
		IsCompleted: t.IsCompleted,
		ShareToken:  t.ShareToken,
		CategoryIDs: categoryIDs,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskToResponse(t))
	}
	return out
}

func taskPageToResponse(p *domain.Page[*domain.Task]) TaskPageResponse {
	resp := TaskPageResponse{
		CurrentPage: p.Page,
		Data:        tasksToResponse(p.Items),
		PerPage:     p.PerPage,
		Total:       p.Total,
		LastPage:    p.LastPage(),
	}
	if len(p.Items) > 0 {
		from, to := p.From(), p.To()
		resp.From, resp.To = &from, &to
	}
	return resp
}

func categoryToResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func commentToResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:          c.ID,
		TaskID:      c.TaskID,
		UserID:      c.UserID,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
