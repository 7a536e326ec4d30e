package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Task validation errors.
var (
	ErrEmptyTaskID     = errors.New("task ID cannot be empty")
	ErrEmptyTaskOwner  = errors.New("task owner cannot be empty")
	ErrEmptyTaskName   = errors.New("task name cannot be empty")
	ErrTaskNameTooLong = errors.New("task name must be at most 255 characters")
	ErrMissingDueDate  = errors.New("due date is required")
	ErrEmptyShareToken = errors.New("share token cannot be empty")
)

const maxTaskNameLength = 255

// Task is a unit of work owned by exactly one user.
// UserID and ShareToken are fixed at creation.
type Task struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Name        string      `json:"taskName"`
	Description *string     `json:"description"`
	DueDate     Date        `json:"dueDate"`
	IsCompleted bool        `json:"is_completed"`
	ShareToken  string      `json:"share_token"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// NewTask creates a validated Task owned by userID.
func NewTask(
	userID uuid.UUID,
	name string,
	description *string,
	dueDate Date,
	completed bool,
	shareToken string,
) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Description: description,
		DueDate:     dueDate,
		IsCompleted: completed,
		ShareToken:  shareToken,
		CategoryIDs: []uuid.UUID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", ErrEmptyTaskID.Error(), ErrEmptyTaskID)
	}
	if t.UserID == uuid.Nil {
		return NewValidationError("user_id", ErrEmptyTaskOwner.Error(), ErrEmptyTaskOwner)
	}
	if strings.TrimSpace(t.Name) == "" {
		return NewValidationError("taskName", ErrEmptyTaskName.Error(), ErrEmptyTaskName)
	}
	if utf8.RuneCountInString(t.Name) > maxTaskNameLength {
		return NewValidationError("taskName", ErrTaskNameTooLong.Error(), ErrTaskNameTooLong)
	}
	if t.DueDate.IsZero() {
		return NewValidationError("dueDate", ErrMissingDueDate.Error(), ErrMissingDueDate)
	}
	if t.ShareToken == "" {
		return NewValidationError("share_token", ErrEmptyShareToken.Error(), ErrEmptyShareToken)
	}
	return nil
}

// IsOwnedBy reports whether userID owns the task.
func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t.UserID == userID
}

// TaskPatch holds the fields of a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Name        *string
	Description *string
	DueDate     *Date
	IsCompleted *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.DueDate == nil && p.IsCompleted == nil
}

// Apply copies the supplied fields onto t and re-validates it.
// Owner and share token are never touched.
func (t *Task) Apply(p TaskPatch) error {
	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		t.Description = p.Description
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
	t.UpdatedAt = time.Now().UTC()
	return t.Validate()
}

// TaskFilter selects a user's tasks. Nil criteria match everything.
type TaskFilter struct {
	UserID    uuid.UUID
	Completed *bool
	DueDate   *Date
}
