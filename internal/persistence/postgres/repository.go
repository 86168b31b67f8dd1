// Package postgres implements the habit store on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/habits/internal/domain"
)

const habitColumns = `habit_id, name, description, created_at, streak, last_completed`

// Repository provides Postgres-backed persistence for habits.
type Repository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, now: time.Now}
}

// Create implements domain.HabitRepository.
func (r *Repository) Create(ctx context.Context, name string, description *string) (domain.Habit, error) {
	id := uuid.NewString()
	createdAt := r.now().UTC().Truncate(time.Microsecond)

	const stmt = `INSERT INTO habits (habit_id, name, description, created_at, streak, last_completed)
        VALUES ($1, $2, $3, $4, 0, NULL)`

	if _, err := r.pool.Exec(ctx, stmt, id, name, description, createdAt); err != nil {
		return domain.Habit{}, err
	}

	return domain.Habit{
		ID:          id,
		Name:        name,
		Description: description,
		CreatedAt:   createdAt.Format(time.RFC3339Nano),
	}, nil
}

// Get implements domain.HabitRepository.
func (r *Repository) Get(ctx context.Context, id string) (*domain.Habit, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE habit_id = $1`, id)
	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &habit, nil
}

// List implements domain.HabitRepository.
func (r *Repository) List(ctx context.Context) ([]domain.Habit, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+habitColumns+` FROM habits`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.Habit, 0)
	for rows.Next() {
		habit, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, habit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Update implements domain.HabitRepository.
func (r *Repository) Update(ctx context.Context, id string, fields domain.CompletionUpdate) error {
	day, err := domain.ParseDate(fields.LastCompleted)
	if err != nil {
		return err
	}
	lastCompleted := pgtype.Date{Time: day.In(time.UTC), Valid: true}

	tag, err := r.pool.Exec(ctx,
		`UPDATE habits SET streak = $2, last_completed = $3 WHERE habit_id = $1`,
		id, fields.Streak, lastCompleted,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

// Close releases the pool.
func (r *Repository) Close(context.Context) error {
	r.pool.Close()
	return nil
}

func scanHabit(row pgx.Row) (domain.Habit, error) {
	var (
		habit         domain.Habit
		createdAt     time.Time
		lastCompleted pgtype.Date
	)
	if err := row.Scan(&habit.ID, &habit.Name, &habit.Description, &createdAt, &habit.Streak, &lastCompleted); err != nil {
		return domain.Habit{}, err
	}
	habit.CreatedAt = createdAt.UTC().Format(time.RFC3339Nano)
	if lastCompleted.Valid {
		day := lastCompleted.Time.Format(time.DateOnly)
		habit.LastCompleted = &day
	}
	return habit, nil
}
