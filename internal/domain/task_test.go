package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNewTask(t *testing.T) {
	owner := uuid.New()
	due := NewDate(2024, time.May, 1)

	task, err := NewTask(owner, "  Write report  ", ptr("quarterly"), due, false, "tok123")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, owner, task.UserID)
	assert.Equal(t, "Write report", task.Name)
	assert.Equal(t, "quarterly", *task.Description)
	assert.True(t, due.Equal(task.DueDate))
	assert.False(t, task.IsCompleted)
	assert.Equal(t, "tok123", task.ShareToken)
	assert.NotNil(t, task.CategoryIDs)
	assert.True(t, task.IsOwnedBy(owner))
	assert.False(t, task.IsOwnedBy(uuid.New()))
}

func TestNewTaskValidation(t *testing.T) {
	owner := uuid.New()
	due := NewDate(2024, time.May, 1)

	tests := []struct {
		name      string
		owner     uuid.UUID
		taskName  string
		due       Date
		token     string
		wantErr   error
		wantField string
	}{
		{"blank name", owner, "   ", due, "tok", ErrEmptyTaskName, "taskName"},
		{"name too long", owner, strings.Repeat("x", 256), due, "tok", ErrTaskNameTooLong, "taskName"},
		{"missing due date", owner, "name", Date{}, "tok", ErrMissingDueDate, "dueDate"},
		{"missing owner", uuid.Nil, "name", due, "tok", ErrEmptyTaskOwner, "user_id"},
		{"missing share token", owner, "name", due, "", ErrEmptyShareToken, "share_token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task, err := NewTask(tc.owner, tc.taskName, nil, tc.due, false, tc.token)
			require.Error(t, err)
			assert.Nil(t, task)
			assert.ErrorIs(t, err, ErrValidation)
			assert.ErrorIs(t, err, tc.wantErr)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.wantField, vErr.Field)
		})
	}
}

func TestTaskApply(t *testing.T) {
	owner := uuid.New()
	task, err := NewTask(owner, "original", nil, NewDate(2024, time.May, 1), false, "tok")
	require.NoError(t, err)

	newDue := NewDate(2024, time.June, 2)
	err = task.Apply(TaskPatch{DueDate: &newDue, IsCompleted: ptr(true)})
	require.NoError(t, err)

	assert.Equal(t, "original", task.Name, "unsupplied fields are unchanged")
	assert.True(t, newDue.Equal(task.DueDate))
	assert.True(t, task.IsCompleted)
	assert.Equal(t, owner, task.UserID)
	assert.Equal(t, "tok", task.ShareToken)

	err = task.Apply(TaskPatch{Name: ptr("  ")})
	assert.ErrorIs(t, err, ErrEmptyTaskName)
}

func TestTaskPatchIsEmpty(t *testing.T) {
	assert.True(t, TaskPatch{}.IsEmpty())
	assert.False(t, TaskPatch{IsCompleted: ptr(false)}.IsEmpty())
}
