package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
)

// memoryStore is an in-memory Store.
type memoryStore struct {
	mu        sync.Mutex
	reminders map[uuid.UUID]Reminder
	saveErr   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{reminders: map[uuid.UUID]Reminder{}}
}

func (s *memoryStore) Save(ctx context.Context, r *Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.reminders[r.ID] = *r
	return nil
}

func (s *memoryStore) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reminders[id]
	if !ok {
		return errors.New("missing reminder")
	}
	r.Status = status
	r.ErrorMessage = msg
	r.UpdatedAt = time.Now().UTC()
	s.reminders[id] = r
	return nil
}

func (s *memoryStore) ListByStatus(ctx context.Context, status Status, olderThan time.Duration) ([]*Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*Reminder{}
	for _, r := range s.reminders {
		if r.Status != status {
			continue
		}
		if olderThan > 0 && time.Since(r.UpdatedAt) < olderThan {
			continue
		}
		copied := r
		out = append(out, &copied)
	}
	return out, nil
}

func (s *memoryStore) status(id uuid.UUID) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminders[id].Status
}

func (s *memoryStore) count(status Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.reminders {
		if r.Status == status {
			n++
		}
	}
	return n
}

// recordingSender records delivered reminders and can fail on demand.
type recordingSender struct {
	mu   sync.Mutex
	sent []*Reminder
	err  error
}

func (s *recordingSender) Send(ctx context.Context, r *Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, r)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

// recordingNotifier records Notify calls.
type recordingNotifier struct {
	mu     sync.Mutex
	calls  []domain.TaskEvent
	users  []uuid.UUID
	failOn uuid.UUID
}

func (n *recordingNotifier) Notify(ctx context.Context, userID uuid.UUID, event domain.TaskEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if event.TaskID == n.failOn {
		return ErrQueueFull
	}
	n.calls = append(n.calls, event)
	n.users = append(n.users, userID)
	return nil
}

type stubLister struct {
	asked domain.Date
	tasks []*domain.Task
	err   error
}

func (l *stubLister) ListIncompleteDueOn(ctx context.Context, date domain.Date) ([]*domain.Task, error) {
	l.asked = date
	return l.tasks, l.err
}
