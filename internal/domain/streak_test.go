package domain

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
)

func day(y, m, d int) civil.Date {
	return civil.Date{Year: y, Month: time.Month(m), Day: d}
}

func datePtr(d civil.Date) *civil.Date { return &d }

func TestComputeStreak(t *testing.T) {
	today := day(2025, 3, 12)

	tests := []struct {
		name    string
		today   civil.Date
		last    *civil.Date
		current int
		want    StreakResult
	}{
		{
			name: "first completion starts at one",
			want: StreakResult{Streak: 1, LastCompleted: today, Outcome: OutcomeStarted},
		},
		{
			name:    "consecutive day extends",
			last:    datePtr(day(2025, 3, 11)),
			current: 4,
			want:    StreakResult{Streak: 5, LastCompleted: today, Outcome: OutcomeExtended},
		},
		{
			name:    "gap resets",
			last:    datePtr(day(2025, 3, 10)),
			current: 5,
			want:    StreakResult{Streak: 1, LastCompleted: today, Outcome: OutcomeReset},
		},
		{
			name:    "same day is a no-op",
			last:    datePtr(today),
			current: 3,
			want:    StreakResult{Streak: 3, LastCompleted: today, Outcome: OutcomeAlreadyCompleted},
		},
		{
			name:    "earlier today keeps the later completion",
			last:    datePtr(day(2025, 3, 14)),
			current: 2,
			want:    StreakResult{Streak: 2, LastCompleted: day(2025, 3, 14), Outcome: OutcomeOutOfOrder},
		},
		{
			name:    "month boundary counts as consecutive",
			today:   day(2025, 3, 1),
			last:    datePtr(day(2025, 2, 28)),
			current: 1,
			want:    StreakResult{Streak: 2, LastCompleted: day(2025, 3, 1), Outcome: OutcomeExtended},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			on := tt.today
			if on == (civil.Date{}) {
				on = today
			}
			got := ComputeStreak(on, tt.last, tt.current)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeStreakConsecutiveDays(t *testing.T) {
	var last *civil.Date
	streak := 0
	for i, want := range []int{1, 2, 3} {
		today := day(2025, 1, 1+i)
		res := ComputeStreak(today, last, streak)
		assert.Equal(t, want, res.Streak)
		assert.Equal(t, today, res.LastCompleted)
		assert.True(t, res.Changed())
		streak, last = res.Streak, datePtr(res.LastCompleted)
	}
}

func TestComputeStreakAcrossDSTIsOneDay(t *testing.T) {
	// 2025-03-09 is the US spring-forward day; the calendar gap is still one.
	res := ComputeStreak(day(2025, 3, 10), datePtr(day(2025, 3, 9)), 7)
	assert.Equal(t, 8, res.Streak)
}

func TestChanged(t *testing.T) {
	assert.False(t, StreakResult{Outcome: OutcomeAlreadyCompleted}.Changed())
	assert.False(t, StreakResult{Outcome: OutcomeOutOfOrder}.Changed())
	assert.True(t, StreakResult{Outcome: OutcomeReset}.Changed())
}
