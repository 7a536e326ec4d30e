package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/store"
)

// memDB is an in-memory stand-in for the database shared by the fake stores.
// memTransactor snapshots it before a transaction and restores the snapshot
// when the transaction function fails.
type memDB struct {
	mu         sync.Mutex
	users      map[uuid.UUID]domain.User
	tasks      map[uuid.UUID]domain.Task
	taskOrder  []uuid.UUID
	categories map[uuid.UUID]domain.Category
	links      map[uuid.UUID][]uuid.UUID
	comments   []domain.Comment
	failures   map[string]error
}

func newMemDB() *memDB {
	return &memDB{
		users:      map[uuid.UUID]domain.User{},
		tasks:      map[uuid.UUID]domain.Task{},
		categories: map[uuid.UUID]domain.Category{},
		links:      map[uuid.UUID][]uuid.UUID{},
		failures:   map[string]error{},
	}
}

// failOn makes the named operation return err.
func (db *memDB) failOn(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failures[op] = err
}

func (db *memDB) failure(op string) error {
	return db.failures[op]
}

type memSnapshot struct {
	users      map[uuid.UUID]domain.User
	tasks      map[uuid.UUID]domain.Task
	taskOrder  []uuid.UUID
	categories map[uuid.UUID]domain.Category
	links      map[uuid.UUID][]uuid.UUID
	comments   []domain.Comment
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := memSnapshot{
		users:      make(map[uuid.UUID]domain.User, len(db.users)),
		tasks:      make(map[uuid.UUID]domain.Task, len(db.tasks)),
		taskOrder:  append([]uuid.UUID(nil), db.taskOrder...),
		categories: make(map[uuid.UUID]domain.Category, len(db.categories)),
		links:      make(map[uuid.UUID][]uuid.UUID, len(db.links)),
		comments:   append([]domain.Comment(nil), db.comments...),
	}
	for k, v := range db.users {
		s.users[k] = v
	}
	for k, v := range db.tasks {
		s.tasks[k] = v
	}
	for k, v := range db.categories {
		s.categories[k] = v
	}
	for k, v := range db.links {
		s.links[k] = append([]uuid.UUID(nil), v...)
	}
	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = s.users
	db.tasks = s.tasks
	db.taskOrder = s.taskOrder
	db.categories = s.categories
	db.links = s.links
	db.comments = s.comments
}

func (db *memDB) taskCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.tasks)
}

func (db *memDB) linkCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, ids := range db.links {
		n += len(ids)
	}
	return n
}

type memTransactor struct {
	db    *memDB
	calls int
}

func (t *memTransactor) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	t.calls++
	snap := t.db.snapshot()
	if err := fn(ctx, nil); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}

// memTaskStore implements store.TaskStore.
type memTaskStore struct{ db *memDB }

var _ store.TaskStore = (*memTaskStore)(nil)

func (s *memTaskStore) Create(_ context.Context, task *domain.Task) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.failure("tasks.Create"); err != nil {
		return err
	}
	for _, t := range s.db.tasks {
		if t.ShareToken == task.ShareToken {
			return store.ErrShareTokenExists
		}
	}
	stored := *task
	stored.CategoryIDs = nil
	s.db.tasks[task.ID] = stored
	s.db.taskOrder = append(s.db.taskOrder, task.ID)
	return nil
}

func (s *memTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	t, ok := s.db.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return &t, nil
}

func (s *memTaskStore) GetByShareToken(_ context.Context, token string) (*domain.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, t := range s.db.tasks {
		if t.ShareToken == token {
			return &t, nil
		}
	}
	return nil, store.ErrTaskNotFound
}

func (s *memTaskStore) ShareTokenExists(_ context.Context, token string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, t := range s.db.tasks {
		if t.ShareToken == token {
			return true, nil
		}
	}
	return false, nil
}

func (s *memTaskStore) Update(_ context.Context, task *domain.Task) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	existing, ok := s.db.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	existing.Name = task.Name
	existing.Description = task.Description
	existing.DueDate = task.DueDate
	existing.IsCompleted = task.IsCompleted
	existing.UpdatedAt = task.UpdatedAt
	s.db.tasks[task.ID] = existing
	return nil
}

func (s *memTaskStore) Delete(_ context.Context, id uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(s.db.tasks, id)
	delete(s.db.links, id)
	kept := s.db.comments[:0]
	for _, c := range s.db.comments {
		if c.TaskID != id {
			kept = append(kept, c)
		}
	}
	s.db.comments = kept
	for i, tid := range s.db.taskOrder {
		if tid == id {
			s.db.taskOrder = append(s.db.taskOrder[:i], s.db.taskOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *memTaskStore) List(
	_ context.Context,
	filter domain.TaskFilter,
	page domain.PageRequest,
) ([]*domain.Task, int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.failure("tasks.List"); err != nil {
		return nil, 0, err
	}
	var matched []*domain.Task
	for _, id := range s.db.taskOrder {
		t := s.db.tasks[id]
		if t.UserID != filter.UserID {
			continue
		}
		if filter.Completed != nil && t.IsCompleted != *filter.Completed {
			continue
		}
		if filter.DueDate != nil && !t.DueDate.Equal(*filter.DueDate) {
			continue
		}
		matched = append(matched, &t)
	}
	total := len(matched)
	start := page.Offset()
	if start >= total {
		return []*domain.Task{}, total, nil
	}
	end := start + page.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *memTaskStore) ListByCategory(_ context.Context, categoryID, ownerID uuid.UUID) ([]*domain.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Task
	for _, id := range s.db.taskOrder {
		t := s.db.tasks[id]
		if t.UserID != ownerID {
			continue
		}
		for _, cid := range s.db.links[id] {
			if cid == categoryID {
				out = append(out, &t)
				break
			}
		}
	}
	return out, nil
}

func (s *memTaskStore) ListIncompleteDueOn(_ context.Context, date domain.Date) ([]*domain.Task, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Task
	for _, id := range s.db.taskOrder {
		t := s.db.tasks[id]
		if !t.IsCompleted && t.DueDate.Equal(date) {
			out = append(out, &t)
		}
	}
	return out, nil
}

func (s *memTaskStore) WithTx(*sql.Tx) store.TaskStore { return s }

// memLinkStore implements store.TaskCategoryStore.
type memLinkStore struct{ db *memDB }

var _ store.TaskCategoryStore = (*memLinkStore)(nil)

func (s *memLinkStore) Link(_ context.Context, taskID, categoryID uuid.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.failure("links.Link"); err != nil {
		return err
	}
	if _, ok := s.db.tasks[taskID]; !ok {
		return store.ErrInvalidEntity
	}
	if _, ok := s.db.categories[categoryID]; !ok {
		return store.ErrInvalidEntity
	}
	for _, id := range s.db.links[taskID] {
		if id == categoryID {
			return nil
		}
	}
	s.db.links[taskID] = append(s.db.links[taskID], categoryID)
	return nil
}

func (s *memLinkStore) CategoryIDsByTask(
	_ context.Context,
	taskIDs []uuid.UUID,
) (map[uuid.UUID][]uuid.UUID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make(map[uuid.UUID][]uuid.UUID)
	for _, id := range taskIDs {
		if linked := s.db.links[id]; len(linked) > 0 {
			out[id] = append([]uuid.UUID(nil), linked...)
		}
	}
	return out, nil
}

func (s *memLinkStore) WithTx(*sql.Tx) store.TaskCategoryStore { return s }

// memCategoryStore implements store.CategoryStore.
type memCategoryStore struct{ db *memDB }

var _ store.CategoryStore = (*memCategoryStore)(nil)

func (s *memCategoryStore) Create(_ context.Context, category *domain.Category) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.categories {
		if c.Name == category.Name {
			return store.ErrCategoryExists
		}
	}
	s.db.categories[category.ID] = *category
	return nil
}

func (s *memCategoryStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	c, ok := s.db.categories[id]
	if !ok {
		return nil, store.ErrCategoryNotFound
	}
	return &c, nil
}

func (s *memCategoryStore) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*domain.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Category
	for _, id := range ids {
		if c, ok := s.db.categories[id]; ok {
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memCategoryStore) ExistsByName(_ context.Context, name string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, c := range s.db.categories {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *memCategoryStore) List(context.Context) ([]*domain.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	out := make([]*domain.Category, 0, len(s.db.categories))
	for _, c := range s.db.categories {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memCategoryStore) WithTx(*sql.Tx) store.CategoryStore { return s }

// memCommentStore implements store.CommentStore.
type memCommentStore struct{ db *memDB }

var _ store.CommentStore = (*memCommentStore)(nil)

func (s *memCommentStore) Create(_ context.Context, comment *domain.Comment) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.tasks[comment.TaskID]; !ok {
		return store.ErrInvalidEntity
	}
	s.db.comments = append(s.db.comments, *comment)
	return nil
}

func (s *memCommentStore) ListByTask(_ context.Context, taskID uuid.UUID) ([]*domain.Comment, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var out []*domain.Comment
	for _, c := range s.db.comments {
		if c.TaskID == taskID {
			c := c
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *memCommentStore) WithTx(*sql.Tx) store.CommentStore { return s }

// memUserStore implements store.UserStore.
type memUserStore struct{ db *memDB }

var _ store.UserStore = (*memUserStore)(nil)

func (s *memUserStore) Create(_ context.Context, user *domain.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	s.db.users[user.ID] = *user
	return nil
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, u := range s.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *memUserStore) GetTokenVersion(_ context.Context, id uuid.UUID) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return 0, store.ErrUserNotFound
	}
	return u.TokenVersion, nil
}

func (s *memUserStore) IncrementTokenVersion(_ context.Context, id uuid.UUID) (int, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return 0, store.ErrUserNotFound
	}
	u.TokenVersion++
	s.db.users[id] = u
	return u.TokenVersion, nil
}

func (s *memUserStore) WithTx(*sql.Tx) store.UserStore { return s }

// recordingNotifier captures every event it is handed.
type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.TaskEvent
	users  []uuid.UUID
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, event domain.TaskEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	n.users = append(n.users, userID)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// sequenceTokens returns the given tokens in order, then repeats the last one.
func sequenceTokens(tokens ...string) ShareTokenGenerator {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		token := tokens[i]
		if i < len(tokens)-1 {
			i++
		}
		return token, nil
	}
}
