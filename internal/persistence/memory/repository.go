// Package memory provides an in-process habit store for local development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/habits/internal/domain"
)

// Repository stores habits in a map guarded by a RWMutex.
type Repository struct {
	mu     sync.RWMutex
	habits map[string]domain.Habit
	now    func() time.Time
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		habits: make(map[string]domain.Habit),
		now:    time.Now,
	}
}

// Create implements domain.HabitRepository.
func (r *Repository) Create(ctx context.Context, name string, description *string) (domain.Habit, error) {
	habit := domain.Habit{
		ID:          uuid.NewString(),
		Name:        name,
		Description: cloneString(description),
		CreatedAt:   r.now().UTC().Format(time.RFC3339Nano),
	}

	r.mu.Lock()
	r.habits[habit.ID] = habit
	r.mu.Unlock()
	return habit, nil
}

// Get implements domain.HabitRepository.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.habits[id]
	if !ok {
		return nil, nil
	}
	out := clone(habit)
	return &out, nil
}

// List implements domain.HabitRepository. Map iteration leaves the order unspecified.
func (r *Repository) List(ctx context.Context) ([]domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Habit, 0, len(r.habits))
	for _, habit := range r.habits {
		out = append(out, clone(habit))
	}
	return out, nil
}

// Update implements domain.HabitRepository.
func (r *Repository) Update(ctx context.Context, id string, fields domain.CompletionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.habits[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	habit.Streak = fields.Streak
	habit.LastCompleted = cloneString(&fields.LastCompleted)
	r.habits[id] = habit
	return nil
}

// Close is a no-op; it lets the in-memory store share the shutdown path of other backends.
func (r *Repository) Close(context.Context) error { return nil }

func clone(h domain.Habit) domain.Habit {
	h.Description = cloneString(h.Description)
	h.LastCompleted = cloneString(h.LastCompleted)
	return h
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
