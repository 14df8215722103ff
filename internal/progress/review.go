package progress

import (
	"sort"
	"time"
)

// Review intervals in days. An incorrect review always comes back tomorrow.
const (
	intervalEasy      = 7
	intervalMedium    = 3
	intervalHard      = 1
	intervalIncorrect = 1
)

const (
	resultCorrect   = "correct"
	resultIncorrect = "incorrect"
)

// reviewIntervalDays maps correctness and self-rated difficulty to the next interval.
func reviewIntervalDays(isCorrect bool, difficulty Difficulty) int {
	if !isCorrect {
		return intervalIncorrect
	}
	switch difficulty {
	case DifficultyEasy:
		return intervalEasy
	case DifficultyMedium:
		return intervalMedium
	default:
		return intervalHard
	}
}

// applyReview recomputes the schedule entry for a reviewed question. Unlike
// answered questions, the entry is overwritten on every review.
func applyReview(p *UserProgress, in ReviewInput, now time.Time) ReviewResult {
	interval := reviewIntervalDays(in.IsCorrect, in.Difficulty)

	result := resultIncorrect
	if in.IsCorrect {
		result = resultCorrect
	}

	previous := p.SpacedRepetition[in.QuestionID]
	state := ReviewState{
		LastReviewedAt: now,
		NextReviewDate: now.AddDate(0, 0, interval),
		ReviewInterval: interval,
		Difficulty:     in.Difficulty,
		LastResult:     result,
		ReviewCount:    previous.ReviewCount + 1,
	}
	p.SpacedRepetition[in.QuestionID] = state
	p.UpdatedAt = now

	return ReviewResult{
		IntervalDays:   interval,
		NextReviewDate: state.NextReviewDate,
		ReviewCount:    state.ReviewCount,
	}
}

// dueQuestionIDs returns every question whose next review date, at calendar
// granularity, is on or before asOf. Entries without a next review date are
// skipped rather than treated as due.
func dueQuestionIDs(p *UserProgress, asOf time.Time) []string {
	cutoff := dateOf(asOf)

	ids := make([]string, 0)
	for id, state := range p.SpacedRepetition {
		if state.NextReviewDate.IsZero() {
			continue
		}
		if !dateOf(state.NextReviewDate).After(cutoff) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// nextUpcomingReview returns the earliest scheduled review date strictly after
// asOf, at calendar granularity, or false when nothing further is scheduled.
func nextUpcomingReview(p *UserProgress, asOf time.Time) (time.Time, bool) {
	cutoff := dateOf(asOf)

	var next time.Time
	for _, state := range p.SpacedRepetition {
		if state.NextReviewDate.IsZero() {
			continue
		}
		candidate := dateOf(state.NextReviewDate)
		if !candidate.After(cutoff) {
			continue
		}
		if next.IsZero() || candidate.Before(next) {
			next = candidate
		}
	}
	return next, !next.IsZero()
}

// dateOf truncates a timestamp to its UTC calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b, both already date-truncated.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
