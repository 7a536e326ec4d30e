package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"08:00", "0 0 8 * * *", false},
		{"23:59", "0 59 23 * * *", false},
		{"0:05", "0 5 0 * * *", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
		{"12:30:00", "", true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := buildDailySpec(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSweepDueSoon(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	owner := uuid.New()
	due := domain.NewDate(2024, time.March, 11)
	ok1 := &domain.Task{ID: uuid.New(), UserID: owner, Name: "a", DueDate: due}
	failing := &domain.Task{ID: uuid.New(), UserID: owner, Name: "b", DueDate: due}
	ok2 := &domain.Task{ID: uuid.New(), UserID: uuid.New(), Name: "c", DueDate: due}

	lister := &stubLister{tasks: []*domain.Task{ok1, failing, ok2}}
	notifier := &recordingNotifier{failOn: failing.ID}

	log, _ := logger.NewTestLogger(t)
	s := NewScheduler(lister, notifier, loc, log)
	// 02:00 UTC on the 11th is still the 10th in New York.
	s.now = func() time.Time { return time.Date(2024, time.March, 11, 2, 0, 0, 0, time.UTC) }

	queued, err := s.SweepDueSoon(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024-03-11", lister.asked.String())
	assert.Equal(t, 2, queued)
	require.Len(t, notifier.calls, 2)
	assert.Equal(t, domain.TaskEventDueSoon, notifier.calls[0].Kind)
	assert.Equal(t, ok1.ID, notifier.calls[0].TaskID)
	assert.Equal(t, owner, notifier.users[0])
}

func TestSweepDueSoonListError(t *testing.T) {
	s := NewScheduler(&stubLister{err: errors.New("db down")}, &recordingNotifier{}, nil, nil)
	_, err := s.SweepDueSoon(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestScheduleDaily(t *testing.T) {
	s := NewScheduler(&stubLister{}, &recordingNotifier{}, time.UTC, nil)

	id, err := s.ScheduleDaily("07:30")
	require.NoError(t, err)
	assert.NotZero(t, id)

	_, err = s.ScheduleDaily("7am")
	assert.Error(t, err)

	s.Start()
	s.Stop()
}
