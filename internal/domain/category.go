package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Category validation errors.
var (
	ErrEmptyCategoryName   = errors.New("category name cannot be empty")
	ErrCategoryNameTooLong = errors.New("category name must be at most 255 characters")
)

// Category is a globally shared label that tasks can be attached to.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCategory creates a validated Category.
func NewCategory(name string) (*Category, error) {
	now := time.Now().UTC()
	c := &Category{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks if the Category has valid data.
func (c *Category) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", ErrInvalidID.Error(), ErrInvalidID)
	}
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("name", ErrEmptyCategoryName.Error(), ErrEmptyCategoryName)
	}
	if utf8.RuneCountInString(c.Name) > 255 {
		return NewValidationError("name", ErrCategoryNameTooLong.Error(), ErrCategoryNameTooLong)
	}
	return nil
}
