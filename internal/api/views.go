package api

import "example.com/habits/internal/domain"

// CreateHabitRequest is the payload for POST /habits/.
type CreateHabitRequest struct {
	Name        string  `json:"name" validate:"required,notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// HabitView is the wire representation of a habit.
type HabitView struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description"`
	CreatedAt      string  `json:"created_at"`
	Streak         int     `json:"streak"`
	LastCompleted  *string `json:"last_completed"`
	CompletedToday bool    `json:"completed_today"`
}

// CompleteHabitResponse is returned by POST /habits/{id}/complete.
type CompleteHabitResponse struct {
	Message       string  `json:"message"`
	Streak        int     `json:"streak"`
	Outcome       string  `json:"outcome"`
	LastCompleted *string `json:"last_completed"`
}

// StatsResponse summarises the collection.
type StatsResponse struct {
	TotalHabits    int `json:"total_habits"`
	TotalStreaks   int `json:"total_streaks"`
	CompletedToday int `json:"completed_today"`
}

func toHabitView(h domain.Habit, service *domain.Service) HabitView {
	return HabitView{
		ID:             h.ID,
		Name:           h.Name,
		Description:    h.Description,
		CreatedAt:      h.CreatedAt,
		Streak:         h.Streak,
		LastCompleted:  h.LastCompleted,
		CompletedToday: h.CompletedOn(service.Today()),
	}
}
