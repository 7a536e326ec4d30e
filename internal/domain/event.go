package domain

import "github.com/google/uuid"

// TaskEventKind names why a user is being notified about a task.
type TaskEventKind string

const (
	// TaskEventCreated follows a successful task creation.
	TaskEventCreated TaskEventKind = "task_created"
	// TaskEventDueSoon is raised by the daily sweep for tasks due the next day.
	TaskEventDueSoon TaskEventKind = "task_due"
)

// TaskEvent is the payload handed to a notifier.
type TaskEvent struct {
	Kind     TaskEventKind `json:"kind"`
	TaskID   uuid.UUID     `json:"task_id"`
	TaskName string        `json:"task_name"`
	DueDate  Date          `json:"due_date"`
}
