package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskFixture struct {
	db       *memDB
	tx       *memTransactor
	notifier *recordingNotifier
	svc      TaskService
}

func newTaskFixture(t *testing.T, tokens ShareTokenGenerator) *taskFixture {
	t.Helper()
	db := newMemDB()
	tx := &memTransactor{db: db}
	notifier := &recordingNotifier{}
	if tokens == nil {
		tokens = NanoidShareTokens(DefaultShareTokenLength)
	}
	svc, err := NewTaskService(tx, &memTaskStore{db}, &memLinkStore{db}, &memCategoryStore{db},
		notifier, tokens, 5, nil)
	require.NoError(t, err)
	return &taskFixture{db: db, tx: tx, notifier: notifier, svc: svc}
}

func (f *taskFixture) category(t *testing.T, name string) *domain.Category {
	t.Helper()
	c, err := domain.NewCategory(name)
	require.NoError(t, err)
	require.NoError(t, (&memCategoryStore{f.db}).Create(context.Background(), c))
	return c
}

func (f *taskFixture) task(t *testing.T, owner uuid.UUID, name, due string) *domain.Task {
	t.Helper()
	task, err := f.svc.CreateTask(context.Background(), owner, CreateTaskInput{Name: name, DueDate: due})
	require.NoError(t, err)
	return task
}

func TestNewTaskService(t *testing.T) {
	db := newMemDB()
	tx := &memTransactor{db: db}
	tokens := NanoidShareTokens(0)

	tests := []struct {
		name     string
		build    func() (TaskService, error)
		errField string
	}{
		{"nil transactor", func() (TaskService, error) {
			return NewTaskService(nil, &memTaskStore{db}, &memLinkStore{db}, &memCategoryStore{db}, nil, tokens, 5, nil)
		}, "tx"},
		{"nil task store", func() (TaskService, error) {
			return NewTaskService(tx, nil, &memLinkStore{db}, &memCategoryStore{db}, nil, tokens, 5, nil)
		}, "tasks"},
		{"nil link store", func() (TaskService, error) {
			return NewTaskService(tx, &memTaskStore{db}, nil, &memCategoryStore{db}, nil, tokens, 5, nil)
		}, "links"},
		{"nil category store", func() (TaskService, error) {
			return NewTaskService(tx, &memTaskStore{db}, &memLinkStore{db}, nil, nil, tokens, 5, nil)
		}, "categories"},
		{"nil token generator", func() (TaskService, error) {
			return NewTaskService(tx, &memTaskStore{db}, &memLinkStore{db}, &memCategoryStore{db}, nil, nil, 5, nil)
		}, "newToken"},
		{"optional dependencies default", func() (TaskService, error) {
			return NewTaskService(tx, &memTaskStore{db}, &memLinkStore{db}, &memCategoryStore{db}, nil, tokens, 0, nil)
		}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, err := tc.build()
			if tc.errField == "" {
				require.NoError(t, err)
				assert.NotNil(t, svc)
				return
			}
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.errField, ve.Field)
			assert.Nil(t, svc)
		})
	}
}

func TestCreateTask(t *testing.T) {
	f := newTaskFixture(t, nil)
	owner := uuid.New()
	work := f.category(t, "work")
	home := f.category(t, "home")
	desc := "quarterly numbers"

	task, err := f.svc.CreateTask(context.Background(), owner, CreateTaskInput{
		Name:        "  File report  ",
		Description: &desc,
		DueDate:     "2024-05-01",
		CategoryIDs: []uuid.UUID{work.ID, home.ID, work.ID},
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, owner, task.UserID)
	assert.Equal(t, "File report", task.Name)
	assert.Equal(t, "2024-05-01", task.DueDate.String())
	assert.False(t, task.IsCompleted)
	assert.Len(t, task.ShareToken, DefaultShareTokenLength)
	assert.Equal(t, []uuid.UUID{work.ID, home.ID}, task.CategoryIDs, "duplicate ids collapse")
	assert.Equal(t, 2, f.db.linkCount())
	assert.Equal(t, 1, f.tx.calls)

	require.Equal(t, 1, f.notifier.count())
	assert.Equal(t, domain.TaskEventCreated, f.notifier.events[0].Kind)
	assert.Equal(t, task.ID, f.notifier.events[0].TaskID)
	assert.Equal(t, owner, f.notifier.users[0])

	fetched, err := f.svc.GetTask(context.Background(), owner, task.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{work.ID, home.ID}, fetched.CategoryIDs)
}

func TestCreateTaskDueDateFormats(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-05-01", "2024-05-01"},
		{"2024-05-01T13:45:00", "2024-05-01"},
		{"2024-05-01 13:45:00", "2024-05-01"},
		{"2024-05-01T23:30:00-05:00", "2024-05-01"},
		{"2024-05-01T00:15:00.123456Z", "2024-05-01"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			f := newTaskFixture(t, nil)
			task, err := f.svc.CreateTask(context.Background(), uuid.New(),
				CreateTaskInput{Name: "task", DueDate: tc.input})
			require.NoError(t, err)
			assert.Equal(t, tc.want, task.DueDate.String())
		})
	}
}

func TestCreateTaskValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateTaskInput
		field string
	}{
		{"unparseable due date", CreateTaskInput{Name: "task", DueDate: "next tuesday"}, "dueDate"},
		{"missing due date", CreateTaskInput{Name: "task"}, "dueDate"},
		{"blank name", CreateTaskInput{Name: "   ", DueDate: "2024-05-01"}, "taskName"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newTaskFixture(t, nil)

			task, err := f.svc.CreateTask(context.Background(), uuid.New(), tc.input)

			require.Error(t, err)
			assert.Nil(t, task)
			assert.ErrorIs(t, err, domain.ErrValidation)
			var ve *domain.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
			assert.Zero(t, f.db.taskCount())
			assert.Zero(t, f.notifier.count())
		})
	}
}

func TestCreateTaskMissingCategories(t *testing.T) {
	f := newTaskFixture(t, nil)
	known := f.category(t, "known")
	missingA, missingB := uuid.New(), uuid.New()

	task, err := f.svc.CreateTask(context.Background(), uuid.New(), CreateTaskInput{
		Name:        "task",
		DueDate:     "2024-05-01",
		CategoryIDs: []uuid.UUID{missingA, known.ID, missingB},
	})

	require.Error(t, err)
	assert.Nil(t, task)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, err, store.ErrCategoryNotFound)

	var missing *MissingCategoriesError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []uuid.UUID{missingA, missingB}, missing.IDs)
	assert.Contains(t, err.Error(), missingA.String())

	assert.Zero(t, f.db.taskCount(), "task insert is rolled back")
	assert.Zero(t, f.db.linkCount())
	assert.Zero(t, f.notifier.count())
}

func TestCreateTaskNotificationFailureIgnored(t *testing.T) {
	f := newTaskFixture(t, nil)
	f.notifier.err = errors.New("queue full")

	task, err := f.svc.CreateTask(context.Background(), uuid.New(),
		CreateTaskInput{Name: "task", DueDate: "2024-05-01"})

	require.NoError(t, err)
	assert.NotNil(t, task)
	assert.Equal(t, 1, f.db.taskCount())
}

func TestCreateTaskStoreFailure(t *testing.T) {
	f := newTaskFixture(t, nil)
	f.db.failOn("tasks.Create", errors.New("connection reset"))

	_, err := f.svc.CreateTask(context.Background(), uuid.New(),
		CreateTaskInput{Name: "task", DueDate: "2024-05-01"})

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "create_task", opErr.Operation)
	assert.Zero(t, f.notifier.count())
}

func TestCreateTaskShareTokens(t *testing.T) {
	t.Run("collision retries", func(t *testing.T) {
		f := newTaskFixture(t, sequenceTokens("taken", "taken", "fresh"))
		f.task(t, uuid.New(), "first", "2024-05-01")

		task, err := f.svc.CreateTask(context.Background(), uuid.New(),
			CreateTaskInput{Name: "second", DueDate: "2024-05-01"})

		require.NoError(t, err)
		assert.Equal(t, "fresh", task.ShareToken)
	})

	t.Run("attempts exhausted", func(t *testing.T) {
		f := newTaskFixture(t, sequenceTokens("taken"))
		f.task(t, uuid.New(), "first", "2024-05-01")

		_, err := f.svc.CreateTask(context.Background(), uuid.New(),
			CreateTaskInput{Name: "second", DueDate: "2024-05-01"})

		assert.ErrorIs(t, err, ErrShareTokenExhausted)
		assert.Equal(t, 1, f.db.taskCount())
	})

	t.Run("tokens are distinct", func(t *testing.T) {
		f := newTaskFixture(t, nil)
		owner := uuid.New()
		seen := make(map[string]struct{})
		for i := 0; i < 50; i++ {
			task := f.task(t, owner, fmt.Sprintf("task %d", i), "2024-05-01")
			_, dup := seen[task.ShareToken]
			require.False(t, dup, "share token reused: %s", task.ShareToken)
			seen[task.ShareToken] = struct{}{}
		}
	})
}

func TestTaskOwnershipChecks(t *testing.T) {
	f := newTaskFixture(t, nil)
	owner, stranger := uuid.New(), uuid.New()
	task := f.task(t, owner, "private", "2024-05-01")
	name := "renamed"

	ops := map[string]func(caller, id uuid.UUID) error{
		"get": func(caller, id uuid.UUID) error {
			_, err := f.svc.GetTask(context.Background(), caller, id)
			return err
		},
		"update": func(caller, id uuid.UUID) error {
			_, err := f.svc.UpdateTask(context.Background(), caller, id, UpdateTaskInput{Name: &name})
			return err
		},
		"delete": func(caller, id uuid.UUID) error {
			return f.svc.DeleteTask(context.Background(), caller, id)
		},
	}

	for opName, op := range ops {
		t.Run(opName+" missing task", func(t *testing.T) {
			err := op(stranger, uuid.New())
			assert.ErrorIs(t, err, store.ErrTaskNotFound)
			assert.NotErrorIs(t, err, ErrNotOwned)
		})
		t.Run(opName+" foreign task", func(t *testing.T) {
			err := op(stranger, task.ID)
			assert.ErrorIs(t, err, ErrNotOwned)
		})
	}

	stored, err := (&memTaskStore{f.db}).GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", stored.Name, "rejected update leaves task untouched")
}

func TestUpdateTask(t *testing.T) {
	f := newTaskFixture(t, nil)
	owner := uuid.New()
	work := f.category(t, "work")
	desc := "original"
	created, err := f.svc.CreateTask(context.Background(), owner, CreateTaskInput{
		Name:        "original",
		Description: &desc,
		DueDate:     "2024-05-01",
		CategoryIDs: []uuid.UUID{work.ID},
	})
	require.NoError(t, err)

	done := true
	due := "2024-06-15T18:00:00"
	updated, err := f.svc.UpdateTask(context.Background(), owner, created.ID, UpdateTaskInput{
		DueDate:     &due,
		IsCompleted: &done,
	})

	require.NoError(t, err)
	assert.Equal(t, "original", updated.Name, "unsupplied fields keep their values")
	require.NotNil(t, updated.Description)
	assert.Equal(t, "original", *updated.Description)
	assert.Equal(t, "2024-06-15", updated.DueDate.String())
	assert.True(t, updated.IsCompleted)
	assert.Equal(t, owner, updated.UserID)
	assert.Equal(t, created.ShareToken, updated.ShareToken)
	assert.Equal(t, []uuid.UUID{work.ID}, updated.CategoryIDs)

	t.Run("empty patch is a no-op", func(t *testing.T) {
		same, err := f.svc.UpdateTask(context.Background(), owner, created.ID, UpdateTaskInput{})
		require.NoError(t, err)
		assert.Equal(t, "2024-06-15", same.DueDate.String())
	})

	t.Run("blank name is rejected", func(t *testing.T) {
		blank := " "
		_, err := f.svc.UpdateTask(context.Background(), owner, created.ID, UpdateTaskInput{Name: &blank})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("bad due date is rejected", func(t *testing.T) {
		bad := "15/06/2024"
		_, err := f.svc.UpdateTask(context.Background(), owner, created.ID, UpdateTaskInput{DueDate: &bad})
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "dueDate", ve.Field)
	})
}

func TestDeleteTask(t *testing.T) {
	f := newTaskFixture(t, nil)
	owner := uuid.New()
	work := f.category(t, "work")
	task, err := f.svc.CreateTask(context.Background(), owner, CreateTaskInput{
		Name: "doomed", DueDate: "2024-05-01", CategoryIDs: []uuid.UUID{work.ID},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTask(context.Background(), owner, task.ID))
	assert.Zero(t, f.db.taskCount())
	assert.Zero(t, f.db.linkCount())

	err = f.svc.DeleteTask(context.Background(), owner, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	_, err = f.svc.GetTask(context.Background(), owner, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestListTasks(t *testing.T) {
	f := newTaskFixture(t, nil)
	owner, other := uuid.New(), uuid.New()
	for i := 1; i <= 7; i++ {
		f.task(t, owner, fmt.Sprintf("task %d", i), "2024-05-01")
	}
	f.task(t, owner, "later", "2024-05-02")
	f.task(t, other, "not mine", "2024-05-01")

	done := true
	first, err := f.svc.ListTasks(context.Background(), owner, ListTasksInput{Page: 1})
	require.NoError(t, err)
	_, err = f.svc.UpdateTask(context.Background(), owner, first.Items[0].ID, UpdateTaskInput{IsCompleted: &done})
	require.NoError(t, err)

	notDone := false
	dueMay1 := "2024-05-01"
	badDate := "soon"

	tests := []struct {
		name      string
		input     ListTasksInput
		wantNames []string
		wantTotal int
		wantLast  int
		wantFrom  int
		wantTo    int
	}{
		{
			name:      "first page",
			input:     ListTasksInput{Page: 1},
			wantNames: []string{"task 1", "task 2", "task 3", "task 4", "task 5"},
			wantTotal: 8, wantLast: 2, wantFrom: 1, wantTo: 5,
		},
		{
			name:      "second page",
			input:     ListTasksInput{Page: 2},
			wantNames: []string{"task 6", "task 7", "later"},
			wantTotal: 8, wantLast: 2, wantFrom: 6, wantTo: 8,
		},
		{
			name:      "page past the end",
			input:     ListTasksInput{Page: 9},
			wantNames: []string{},
			wantTotal: 8, wantLast: 2,
		},
		{
			name:      "page zero means first",
			input:     ListTasksInput{Page: 0},
			wantNames: []string{"task 1", "task 2", "task 3", "task 4", "task 5"},
			wantTotal: 8, wantLast: 2, wantFrom: 1, wantTo: 5,
		},
		{
			name:      "completed only",
			input:     ListTasksInput{Completed: &done, Page: 1},
			wantNames: []string{"task 1"},
			wantTotal: 1, wantLast: 1, wantFrom: 1, wantTo: 1,
		},
		{
			name:      "incomplete due on date",
			input:     ListTasksInput{Completed: &notDone, DueDate: &dueMay1, Page: 2},
			wantNames: []string{"task 7"},
			wantTotal: 6, wantLast: 2, wantFrom: 6, wantTo: 6,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page, err := f.svc.ListTasks(context.Background(), owner, tc.input)
			require.NoError(t, err)

			names := make([]string, 0, len(page.Items))
			for _, task := range page.Items {
				assert.Equal(t, owner, task.UserID)
				assert.NotNil(t, task.CategoryIDs)
				names = append(names, task.Name)
			}
			assert.Equal(t, tc.wantNames, names)
			assert.Equal(t, tc.wantTotal, page.Total)
			assert.Equal(t, 5, page.PerPage)
			assert.Equal(t, tc.wantLast, page.LastPage())
			assert.Equal(t, tc.wantFrom, page.From())
			assert.Equal(t, tc.wantTo, page.To())
		})
	}

	t.Run("page far past the end", func(t *testing.T) {
		page, err := f.svc.ListTasks(context.Background(), owner, ListTasksInput{Page: math.MaxInt/5 + 2})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 8, page.Total)
		assert.Equal(t, 0, page.From())
	})

	t.Run("invalid due date filter", func(t *testing.T) {
		_, err := f.svc.ListTasks(context.Background(), owner, ListTasksInput{DueDate: &badDate})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestGetSharedTask(t *testing.T) {
	f := newTaskFixture(t, nil)
	owner := uuid.New()
	work := f.category(t, "work")
	desc := "bring snacks"
	task, err := f.svc.CreateTask(context.Background(), owner, CreateTaskInput{
		Name: "shared", Description: &desc, DueDate: "2024-05-01", CategoryIDs: []uuid.UUID{work.ID},
	})
	require.NoError(t, err)

	ownerView, err := f.svc.GetTask(context.Background(), owner, task.ID)
	require.NoError(t, err)

	tests := []struct {
		name    string
		viewer  uuid.UUID
		token   string
		wantErr error
	}{
		{"anonymous viewer", uuid.Nil, task.ShareToken, nil},
		{"other user", uuid.New(), task.ShareToken, nil},
		{"owner", owner, task.ShareToken, nil},
		{"unknown token", uuid.Nil, "no-such-token", store.ErrTaskNotFound},
		{"empty token", uuid.Nil, "", store.ErrTaskNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := f.svc.GetSharedTask(context.Background(), tc.viewer, tc.token)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ownerView, got)
		})
	}
}

func TestListTasksByCategory(t *testing.T) {
	f := newTaskFixture(t, nil)
	owner, other := uuid.New(), uuid.New()
	work := f.category(t, "work")
	empty := f.category(t, "empty")

	mine, err := f.svc.CreateTask(context.Background(), owner, CreateTaskInput{
		Name: "mine", DueDate: "2024-05-01", CategoryIDs: []uuid.UUID{work.ID},
	})
	require.NoError(t, err)
	_, err = f.svc.CreateTask(context.Background(), other, CreateTaskInput{
		Name: "theirs", DueDate: "2024-05-01", CategoryIDs: []uuid.UUID{work.ID},
	})
	require.NoError(t, err)
	f.task(t, owner, "uncategorised", "2024-05-01")

	tasks, err := f.svc.ListTasksByCategory(context.Background(), owner, work.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, mine.ID, tasks[0].ID)
	assert.Equal(t, []uuid.UUID{work.ID}, tasks[0].CategoryIDs)

	tasks, err = f.svc.ListTasksByCategory(context.Background(), owner, empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)

	_, err = f.svc.ListTasksByCategory(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, store.ErrCategoryNotFound)
}
