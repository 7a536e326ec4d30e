package reminder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// Status represents the delivery state of a reminder.
type Status string

// Possible reminder status values
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Reminder is one notification addressed to a user about a task.
type Reminder struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Event        domain.TaskEvent
	Status       Status
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewReminder creates a pending reminder for userID.
func NewReminder(userID uuid.UUID, event domain.TaskEvent) *Reminder {
	now := time.Now().UTC()
	return &Reminder{
		ID:        uuid.New(),
		UserID:    userID,
		Event:     event,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store persists reminders and their delivery status.
type Store interface {
	// Save inserts the reminder, or overwrites the status of an existing one.
	Save(ctx context.Context, r *Reminder) error

	// UpdateStatus sets the status and error message of a reminder.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, errorMsg string) error

	// ListByStatus returns reminders in status. A non-zero olderThan keeps
	// only those whose last update is older than that.
	ListByStatus(ctx context.Context, status Status, olderThan time.Duration) ([]*Reminder, error)
}

// Sender delivers a reminder to its user.
type Sender interface {
	Send(ctx context.Context, r *Reminder) error
}
