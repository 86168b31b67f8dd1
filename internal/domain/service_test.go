package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"example.com/habits/internal/events"
	"example.com/habits/internal/outbox"
)

type stubRepo struct {
	mu      sync.Mutex
	habits  map[string]Habit
	order   []string
	updates []CompletionUpdate
	getErr  error
	updErr  error
	nextID  int
}

func newStubRepo() *stubRepo {
	return &stubRepo{habits: make(map[string]Habit)}
}

func (r *stubRepo) Create(_ context.Context, name string, description *string) (Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	h := Habit{ID: fmt.Sprintf("h%d", r.nextID), Name: name, Description: description, CreatedAt: "2025-01-01T00:00:00Z"}
	r.habits[h.ID] = h
	r.order = append(r.order, h.ID)
	return h, nil
}

func (r *stubRepo) Get(_ context.Context, id string) (*Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	h, ok := r.habits[id]
	if !ok {
		return nil, nil
	}
	return &h, nil
}

func (r *stubRepo) List(context.Context) ([]Habit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Habit, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.habits[id])
	}
	return out, nil
}

func (r *stubRepo) Update(_ context.Context, id string, fields CompletionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updErr != nil {
		return r.updErr
	}
	h, ok := r.habits[id]
	if !ok {
		return ErrHabitNotFound
	}
	r.updates = append(r.updates, fields)
	h.Streak = fields.Streak
	last := fields.LastCompleted
	h.LastCompleted = &last
	r.habits[id] = h
	return nil
}

func (r *stubRepo) put(h Habit) {
	r.habits[h.ID] = h
	r.order = append(r.order, h.ID)
}

type recordingPublisher struct {
	events []outbox.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e outbox.Event) error {
	p.events = append(p.events, e)
	return p.err
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func strPtr(s string) *string { return &s }

func TestCreateHabitTrimsAndValidates(t *testing.T) {
	repo := newStubRepo()
	pub := &recordingPublisher{}
	svc := NewService(repo, WithPublisher(pub))

	_, err := svc.CreateHabit(context.Background(), CreateHabitInput{Name: "   "})
	require.ErrorIs(t, err, ErrInvalidHabit)
	assert.Empty(t, repo.habits)

	habit, err := svc.CreateHabit(context.Background(), CreateHabitInput{Name: " Meditate ", Description: strPtr("10 min")})
	require.NoError(t, err)
	assert.Equal(t, "Meditate", habit.Name)
	assert.Equal(t, 0, habit.Streak)
	assert.Nil(t, habit.LastCompleted)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeHabitCreated, pub.events[0].Type)
	assert.Equal(t, habit.ID, pub.events[0].Key)
}

func TestCompleteUnknownHabitWritesNothing(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	_, err := svc.CompleteHabit(context.Background(), "missing")
	require.ErrorIs(t, err, ErrHabitNotFound)
	assert.Empty(t, repo.updates)
}

func TestCompleteConsecutiveDays(t *testing.T) {
	repo := newStubRepo()
	clock := &testClock{now: time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC)}
	svc := NewService(repo, WithClock(clock))
	habit, err := svc.CreateHabit(context.Background(), CreateHabitInput{Name: "Walk"})
	require.NoError(t, err)

	for i, want := range []int{1, 2, 3} {
		res, err := svc.CompleteHabit(context.Background(), habit.ID)
		require.NoError(t, err)
		assert.Equal(t, want, res.Habit.Streak, "day %d", i+1)
		assert.Equal(t, svc.Today().String(), *res.Habit.LastCompleted)
		clock.now = clock.now.AddDate(0, 0, 1)
	}
	assert.Len(t, repo.updates, 3)
}

func TestCompleteAfterGapResets(t *testing.T) {
	repo := newStubRepo()
	repo.put(Habit{ID: "h", Name: "Read", Streak: 5, LastCompleted: strPtr("2025-04-10")})
	clock := &testClock{now: time.Date(2025, time.April, 12, 18, 0, 0, 0, time.UTC)}
	svc := NewService(repo, WithClock(clock))

	res, err := svc.CompleteHabit(context.Background(), "h")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Habit.Streak)
	assert.Equal(t, 5, res.PreviousStreak)
	assert.Equal(t, OutcomeReset, res.Outcome)
	assert.Equal(t, []CompletionUpdate{{Streak: 1, LastCompleted: "2025-04-12"}}, repo.updates)
}

func TestCompleteTwiceSameDayDoesNotDoubleIncrement(t *testing.T) {
	repo := newStubRepo()
	pub := &recordingPublisher{}
	clock := &testClock{now: time.Date(2025, time.May, 2, 7, 0, 0, 0, time.UTC)}
	svc := NewService(repo, WithClock(clock), WithPublisher(pub))
	repo.put(Habit{ID: "h", Name: "Read"})

	first, err := svc.CompleteHabit(context.Background(), "h")
	require.NoError(t, err)
	clock.now = clock.now.Add(10 * time.Hour)
	second, err := svc.CompleteHabit(context.Background(), "h")
	require.NoError(t, err)

	assert.Equal(t, 1, first.Habit.Streak)
	assert.Equal(t, 1, second.Habit.Streak)
	assert.Equal(t, OutcomeAlreadyCompleted, second.Outcome)
	assert.Len(t, repo.updates, 1)
	assert.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeHabitCompleted, pub.events[0].Type)
}

func TestCompleteUsesConfiguredLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	repo := newStubRepo()
	repo.put(Habit{ID: "h", Name: "Journal", Streak: 2, LastCompleted: strPtr("2025-06-01")})
	// 05:00 UTC on June 3 is still June 2 in Los Angeles.
	clock := &testClock{now: time.Date(2025, time.June, 3, 5, 0, 0, 0, time.UTC)}
	svc := NewService(repo, WithClock(clock), WithLocation(loc))

	res, err := svc.CompleteHabit(context.Background(), "h")
	require.NoError(t, err)
	assert.Equal(t, OutcomeExtended, res.Outcome)
	assert.Equal(t, "2025-06-02", *res.Habit.LastCompleted)
}

func TestCompleteOutOfOrderLeavesRecord(t *testing.T) {
	repo := newStubRepo()
	repo.put(Habit{ID: "h", Name: "Swim", Streak: 4, LastCompleted: strPtr("2025-08-20")})
	clock := &testClock{now: time.Date(2025, time.August, 19, 12, 0, 0, 0, time.UTC)}
	svc := NewService(repo, WithClock(clock))

	res, err := svc.CompleteHabit(context.Background(), "h")
	require.NoError(t, err)
	assert.Equal(t, OutcomeOutOfOrder, res.Outcome)
	assert.Equal(t, "2025-08-20", *res.Habit.LastCompleted)
	assert.Empty(t, repo.updates)
}

func TestCompleteWrapsStoreErrors(t *testing.T) {
	repo := newStubRepo()
	repo.put(Habit{ID: "h", Name: "Read"})
	repo.updErr = errors.New("deadline exceeded")
	svc := NewService(repo)

	_, err := svc.CompleteHabit(context.Background(), "h")
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "update", storeErr.Op)
	assert.EqualError(t, storeErr.Err, "deadline exceeded")

	repo.getErr = errors.New("unavailable")
	_, err = svc.GetHabit(context.Background(), "h")
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "get", storeErr.Op)
}

func TestCompleteUpdateNotFoundPassesThrough(t *testing.T) {
	repo := &vanishingRepo{stubRepo: newStubRepo()}
	repo.put(Habit{ID: "h", Name: "Read"})
	svc := NewService(repo)

	_, err := svc.CompleteHabit(context.Background(), "h")
	require.ErrorIs(t, err, ErrHabitNotFound)
	var storeErr *StoreError
	assert.False(t, errors.As(err, &storeErr))
}

// vanishingRepo reports the record as deleted between read and write.
type vanishingRepo struct {
	*stubRepo
}

func (r *vanishingRepo) Update(context.Context, string, CompletionUpdate) error {
	return ErrHabitNotFound
}

func TestPublishFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repo := newStubRepo()
	repo.put(Habit{ID: "h", Name: "Read"})
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewService(repo, WithPublisher(pub), WithLogger(zap.New(core)))

	res, err := svc.CompleteHabit(context.Background(), "h")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Habit.Streak)
	require.Equal(t, 1, logs.FilterMessage("habit event publish failed").Len())
}

func TestConcurrentCompletionsIncrementOnce(t *testing.T) {
	repo := newStubRepo()
	repo.put(Habit{ID: "h", Name: "Read", Streak: 3, LastCompleted: strPtr("2025-09-09")})
	clock := &testClock{now: time.Date(2025, time.September, 10, 9, 0, 0, 0, time.UTC)}
	svc := NewService(repo, WithClock(clock))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.CompleteHabit(context.Background(), "h")
		}()
	}
	wg.Wait()

	stored, err := repo.Get(context.Background(), "h")
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Streak)
	assert.Len(t, repo.updates, 1)
}

func TestStats(t *testing.T) {
	repo := newStubRepo()
	repo.put(Habit{ID: "a", Name: "A", Streak: 3, LastCompleted: strPtr("2025-10-01")})
	repo.put(Habit{ID: "b", Name: "B", Streak: 1, LastCompleted: strPtr("2025-09-29")})
	repo.put(Habit{ID: "c", Name: "C"})
	clock := &testClock{now: time.Date(2025, time.October, 1, 23, 0, 0, 0, time.UTC)}
	svc := NewService(repo, WithClock(clock))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalHabits: 3, TotalStreaks: 4, CompletedToday: 1}, stats)
}

func TestLegacyTimestampLastCompleted(t *testing.T) {
	repo := newStubRepo()
	repo.put(Habit{ID: "h", Name: "Read", Streak: 2, LastCompleted: strPtr("2025-02-01T21:15:00Z")})
	clock := &testClock{now: time.Date(2025, time.February, 2, 6, 0, 0, 0, time.UTC)}
	svc := NewService(repo, WithClock(clock))

	res, err := svc.CompleteHabit(context.Background(), "h")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Habit.Streak)
	assert.Equal(t, "2025-02-02", *res.Habit.LastCompleted)
}
