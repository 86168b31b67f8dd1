package domain

import "cloud.google.com/go/civil"

// Outcome names the branch taken by a completion.
type Outcome string

const (
	OutcomeStarted          Outcome = "started"
	OutcomeExtended         Outcome = "extended"
	OutcomeReset            Outcome = "reset"
	OutcomeAlreadyCompleted Outcome = "already_completed"
	OutcomeOutOfOrder       Outcome = "out_of_order"
)

// StreakResult is the outcome of applying a completion on a given day.
type StreakResult struct {
	Streak        int
	LastCompleted civil.Date
	Outcome       Outcome
}

// Changed reports whether the result must be written back to the store.
func (r StreakResult) Changed() bool {
	return r.Outcome == OutcomeStarted || r.Outcome == OutcomeExtended || r.Outcome == OutcomeReset
}

// ComputeStreak applies a completion recorded on today to a habit whose previous
// completion was last (nil when never completed) and whose stored streak is current.
//
// A second completion on the same day is a no-op, as is a completion dated before the
// stored one: the streak is left alone and last_completed never moves backwards.
func ComputeStreak(today civil.Date, last *civil.Date, current int) StreakResult {
	if last == nil {
		return StreakResult{Streak: 1, LastCompleted: today, Outcome: OutcomeStarted}
	}

	gap := today.DaysSince(*last)
	switch {
	case gap == 1:
		return StreakResult{Streak: current + 1, LastCompleted: today, Outcome: OutcomeExtended}
	case gap > 1:
		return StreakResult{Streak: 1, LastCompleted: today, Outcome: OutcomeReset}
	case gap == 0:
		return StreakResult{Streak: current, LastCompleted: today, Outcome: OutcomeAlreadyCompleted}
	default:
		return StreakResult{Streak: current, LastCompleted: *last, Outcome: OutcomeOutOfOrder}
	}
}
