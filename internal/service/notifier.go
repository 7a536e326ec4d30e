package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// Notifier hands a task event to the user's notification channel.
// Implementations must not block on delivery.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, event domain.TaskEvent) error
}

// NopNotifier discards every event.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, uuid.UUID, domain.TaskEvent) error { return nil }
