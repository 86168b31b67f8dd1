// Package domain defines the business logic for the habit service.
package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"example.com/habits/internal/events"
	"example.com/habits/internal/observability"
	"example.com/habits/internal/outbox"
)

// HabitRepository captures persistence operations against the habit collection.
type HabitRepository interface {
	Create(ctx context.Context, name string, description *string) (Habit, error)
	// Get returns nil, nil when the id does not resolve.
	Get(ctx context.Context, id string) (*Habit, error)
	List(ctx context.Context) ([]Habit, error)
	// Update returns ErrHabitNotFound when the id does not resolve.
	Update(ctx context.Context, id string, fields CompletionUpdate) error
}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithClock overrides the clock used to decide "today".
func WithClock(clock Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithLocation sets the time zone whose calendar days streaks are counted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithPublisher attaches a publisher for habit events.
func WithPublisher(p outbox.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.log = logger
		}
	}
}

// Service orchestrates habit workflows.
type Service struct {
	repo      HabitRepository
	clock     Clock
	loc       *time.Location
	publisher outbox.Publisher
	log       *zap.Logger
	locks     *keyedMutex
}

// NewService constructs a Service.
func NewService(repo HabitRepository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		clock:     SystemClock{},
		loc:       time.UTC,
		publisher: outbox.NoopPublisher{},
		log:       zap.NewNop(),
		locks:     newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateHabitInput captures the payload from the API layer.
type CreateHabitInput struct {
	Name        string
	Description *string
}

// CompletionResult describes the state of a habit after a completion request.
type CompletionResult struct {
	Habit          Habit
	PreviousStreak int
	Outcome        Outcome
}

// Stats summarises the habit collection.
type Stats struct {
	TotalHabits    int
	TotalStreaks   int
	CompletedToday int
}

// CreateHabit validates the input and stores a new habit with a zero streak.
func (s *Service) CreateHabit(ctx context.Context, input CreateHabitInput) (Habit, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Habit{}, fmt.Errorf("%w: habit name cannot be empty", ErrInvalidHabit)
	}

	habit, err := s.repo.Create(ctx, name, input.Description)
	if err != nil {
		observability.RecordStoreError("create")
		return Habit{}, storeError("create", err)
	}

	s.publish(ctx, events.TypeHabitCreated, habit.ID, events.HabitCreated{
		HabitID:     habit.ID,
		Name:        habit.Name,
		Description: habit.Description,
		CreatedAt:   habit.CreatedAt,
		OccurredAt:  s.clock.Now().UTC(),
	})
	s.log.Info("habit created", zap.String("habit_id", habit.ID), zap.String("name", habit.Name))
	return habit, nil
}

// ListHabits returns every stored habit in store order.
func (s *Service) ListHabits(ctx context.Context) ([]Habit, error) {
	habits, err := s.repo.List(ctx)
	if err != nil {
		observability.RecordStoreError("list")
		return nil, storeError("list", err)
	}
	return habits, nil
}

// GetHabit fetches by ID.
func (s *Service) GetHabit(ctx context.Context, id string) (Habit, error) {
	habit, err := s.repo.Get(ctx, id)
	if err != nil {
		observability.RecordStoreError("get")
		return Habit{}, storeError("get", err)
	}
	if habit == nil {
		return Habit{}, ErrHabitNotFound
	}
	return *habit, nil
}

// CompleteHabit records a completion for today and writes the new streak back when it
// changed. Completions for the same id are serialised within the process.
func (s *Service) CompleteHabit(ctx context.Context, id string) (CompletionResult, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	habit, err := s.repo.Get(ctx, id)
	if err != nil {
		observability.RecordStoreError("get")
		return CompletionResult{}, storeError("get", err)
	}
	if habit == nil {
		return CompletionResult{}, ErrHabitNotFound
	}

	last, err := habit.LastCompletedDate()
	if err != nil {
		return CompletionResult{}, storeError("decode", err)
	}

	now := s.clock.Now()
	today := civil.DateOf(now.In(s.loc))
	result := ComputeStreak(today, last, habit.Streak)

	completion := CompletionResult{
		Habit:          *habit,
		PreviousStreak: habit.Streak,
		Outcome:        result.Outcome,
	}
	observability.RecordCompletion(string(result.Outcome))

	if !result.Changed() {
		s.log.Debug("completion left habit unchanged",
			zap.String("habit_id", id),
			zap.String("outcome", string(result.Outcome)),
			zap.Stringp("last_completed", habit.LastCompleted),
		)
		return completion, nil
	}

	update := CompletionUpdate{Streak: result.Streak, LastCompleted: result.LastCompleted.String()}
	if err := s.repo.Update(ctx, id, update); err != nil {
		observability.RecordStoreError("update")
		return CompletionResult{}, storeError("update", err)
	}

	completion.Habit.Streak = update.Streak
	completion.Habit.LastCompleted = &update.LastCompleted
	observability.RecordCompletionWritten(now)

	s.publish(ctx, events.TypeHabitCompleted, id, events.HabitCompleted{
		HabitID:        id,
		Name:           habit.Name,
		Streak:         update.Streak,
		PreviousStreak: habit.Streak,
		Outcome:        string(result.Outcome),
		CompletedOn:    update.LastCompleted,
		OccurredAt:     now.UTC(),
	})
	s.log.Info("habit completed",
		zap.String("habit_id", id),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("streak", update.Streak),
	)
	return completion, nil
}

// Stats aggregates the collection for the statistics view.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	habits, err := s.ListHabits(ctx)
	if err != nil {
		return Stats{}, err
	}
	today := s.Today()
	stats := Stats{TotalHabits: len(habits)}
	for _, h := range habits {
		stats.TotalStreaks += h.Streak
		if h.CompletedOn(today) {
			stats.CompletedToday++
		}
	}
	return stats, nil
}

// Today reports the service's current calendar date.
func (s *Service) Today() civil.Date {
	return Today(s.clock, s.loc)
}

func (s *Service) publish(ctx context.Context, eventType, key string, payload interface{}) {
	err := s.publisher.Publish(ctx, outbox.Event{
		Type:    eventType,
		Key:     key,
		Payload: payload,
	})
	if err != nil {
		s.log.Warn("habit event publish failed",
			zap.String("event_type", eventType),
			zap.String("habit_id", key),
			zap.Error(err),
		)
	}
}
