// Package api exposes HTTP handlers for the habit service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"example.com/habits/internal/auth"
	"example.com/habits/internal/domain"
)

const maxBodyBytes = 1 << 20

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service  *domain.Service
	validate *validator.Validate
	log      *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, validate: NewValidator(), log: log}
}

// RegisterRoutes wires endpoints to the router. Collection routes answer both with and
// without the trailing slash.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", root)
	r.Get("/healthz", healthz)

	read := auth.RequireScope(auth.ScopeHabitsRead, auth.ScopeHabitsWrite)
	write := auth.RequireScope(auth.ScopeHabitsWrite)

	r.Route("/habits", func(r chi.Router) {
		r.With(read).Get("/", h.listHabits)
		r.With(write).Post("/", h.createHabit)
		r.With(read).Get("/stats", h.habitStats)
		r.With(read).Get("/{habitID}", h.getHabit)
		r.With(write).Post("/{habitID}/complete", h.completeHabit)
	})
}

func root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Habit tracker API is running"})
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) createHabit(w http.ResponseWriter, r *http.Request) {
	var req CreateHabitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.log.Debug("failed to decode create payload", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.log.Debug("create payload failed validation", zap.Error(err))
		writeValidationError(w, err)
		return
	}

	habit, err := h.service.CreateHabit(r.Context(), domain.CreateHabitInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toHabitView(habit, h.service))
}

func (h *Handler) listHabits(w http.ResponseWriter, r *http.Request) {
	habits, err := h.service.ListHabits(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	items := make([]HabitView, 0, len(habits))
	for _, habit := range habits {
		items = append(items, toHabitView(habit, h.service))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) getHabit(w http.ResponseWriter, r *http.Request) {
	habit, err := h.service.GetHabit(r.Context(), chi.URLParam(r, "habitID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHabitView(habit, h.service))
}

func (h *Handler) completeHabit(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.CompleteHabit(r.Context(), chi.URLParam(r, "habitID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CompleteHabitResponse{
		Message:       completionMessage(result.Outcome),
		Streak:        result.Habit.Streak,
		Outcome:       string(result.Outcome),
		LastCompleted: result.Habit.LastCompleted,
	})
}

func (h *Handler) habitStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, StatsResponse{
		TotalHabits:    stats.TotalHabits,
		TotalStreaks:   stats.TotalStreaks,
		CompletedToday: stats.CompletedToday,
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrHabitNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Habit not found")
	case errors.Is(err, domain.ErrInvalidHabit):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		h.log.Error("habit request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		var storeErr *domain.StoreError
		if errors.As(err, &storeErr) {
			writeError(w, http.StatusInternalServerError, "store_error", storeErr.Err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func completionMessage(outcome domain.Outcome) string {
	switch outcome {
	case domain.OutcomeAlreadyCompleted:
		return "Habit already completed today"
	case domain.OutcomeOutOfOrder:
		return "Habit already completed on a later date"
	default:
		return "Habit completed"
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
