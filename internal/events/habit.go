// Package events defines the habit event payloads published to Kafka.
package events

import "time"

// Event types carried in the event_type header.
const (
	TypeHabitCreated   = "habit.created"
	TypeHabitCompleted = "habit.completed"
)

// HabitCreated is emitted once a habit has been stored.
type HabitCreated struct {
	HabitID     string    `json:"habit_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   string    `json:"created_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// HabitCompleted is emitted when a completion changed the stored streak.
type HabitCompleted struct {
	HabitID        string    `json:"habit_id"`
	Name           string    `json:"name"`
	Streak         int       `json:"streak"`
	PreviousStreak int       `json:"previous_streak"`
	Outcome        string    `json:"outcome"`
	CompletedOn    string    `json:"completed_on"`
	OccurredAt     time.Time `json:"occurred_at"`
}
