package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEmptyCommentDescription is returned for a blank comment.
var ErrEmptyCommentDescription = errors.New("comment description cannot be empty")

// Comment is a note left on a task by a user.
type Comment struct {
	ID          uuid.UUID `json:"id"`
	TaskID      uuid.UUID `json:"task_id"`
	UserID      uuid.UUID `json:"user_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewComment creates a validated Comment authored by userID.
func NewComment(taskID, userID uuid.UUID, description string) (*Comment, error) {
	now := time.Now().UTC()
	c := &Comment{
		ID:          uuid.New(),
		TaskID:      taskID,
		UserID:      userID,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks if the Comment has valid data.
func (c *Comment) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", ErrInvalidID.Error(), ErrInvalidID)
	}
	if c.TaskID == uuid.Nil {
		return NewValidationError("task_id", ErrInvalidID.Error(), ErrInvalidID)
	}
	if c.UserID == uuid.Nil {
		return NewValidationError("user_id", ErrEmptyUserID.Error(), ErrEmptyUserID)
	}
	if c.Description == "" {
		return NewValidationError("description", ErrEmptyCommentDescription.Error(), ErrEmptyCommentDescription)
	}
	return nil
}
