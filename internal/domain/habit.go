package domain

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

var (
	// ErrHabitNotFound is returned when a habit identifier does not resolve to a record.
	ErrHabitNotFound = errors.New("habit not found")
	// ErrInvalidHabit reports a create payload that fails validation.
	ErrInvalidHabit = errors.New("invalid habit")
)

// Habit is the single tracked entity. LastCompleted holds a calendar date (YYYY-MM-DD).
type Habit struct {
	ID            string
	Name          string
	Description   *string
	CreatedAt     string
	Streak        int
	LastCompleted *string
}

// CompletionUpdate carries the fields written back by a completion.
type CompletionUpdate struct {
	Streak        int
	LastCompleted string
}

// LastCompletedDate parses LastCompleted. A nil date means the habit was never completed.
func (h Habit) LastCompletedDate() (*civil.Date, error) {
	if h.LastCompleted == nil || *h.LastCompleted == "" {
		return nil, nil
	}
	d, err := ParseDate(*h.LastCompleted)
	if err != nil {
		return nil, fmt.Errorf("habit %s: %w", h.ID, err)
	}
	return &d, nil
}

// CompletedOn reports whether the habit's last completion falls on day.
func (h Habit) CompletedOn(day civil.Date) bool {
	return h.LastCompleted != nil && *h.LastCompleted == day.String()
}

// ParseDate accepts a bare date or an RFC 3339 timestamp; the latter appears in records
// written before last_completed was normalised to a date.
func ParseDate(value string) (civil.Date, error) {
	if d, err := civil.ParseDate(value); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid completion date %q", value)
	}
	return civil.DateOf(ts), nil
}

// StoreError wraps a failure raised by the habit repository.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("habit store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrHabitNotFound) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
