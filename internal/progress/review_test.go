package progress

import (
	"testing"
	"time"
)

func TestReviewIntervalDays(t *testing.T) {
	cases := []struct {
		name       string
		isCorrect  bool
		difficulty Difficulty
		want       int
	}{
		{"correct easy", true, DifficultyEasy, 7},
		{"correct medium", true, DifficultyMedium, 3},
		{"correct hard", true, DifficultyHard, 1},
		{"incorrect easy", false, DifficultyEasy, 1},
		{"incorrect medium", false, DifficultyMedium, 1},
		{"incorrect hard", false, DifficultyHard, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := reviewIntervalDays(tc.isCorrect, tc.difficulty); got != tc.want {
				t.Fatalf("got %d days, want %d", got, tc.want)
			}
		})
	}
}

func TestApplyReview_SchedulesNextReview(t *testing.T) {
	p := NewUserProgress("u1", onDay(0))

	res := applyReview(p, ReviewInput{QuestionID: "q1", IsCorrect: true, Difficulty: DifficultyEasy}, onDay(0))

	if res.IntervalDays != 7 {
		t.Fatalf("expected 7-day interval, got %d", res.IntervalDays)
	}
	state := p.SpacedRepetition["q1"]
	if !state.NextReviewDate.Equal(onDay(7)) {
		t.Fatalf("next review %v, want %v", state.NextReviewDate, onDay(7))
	}
	if state.LastResult != resultCorrect || state.ReviewCount != 1 {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestApplyReview_OverwritesPriorSchedule(t *testing.T) {
	p := NewUserProgress("u1", onDay(0))

	applyReview(p, ReviewInput{QuestionID: "q1", IsCorrect: true, Difficulty: DifficultyEasy}, onDay(0))
	res := applyReview(p, ReviewInput{QuestionID: "q1", IsCorrect: false, Difficulty: DifficultyEasy}, onDay(7))

	if res.IntervalDays != 1 {
		t.Fatalf("incorrect review must come back in 1 day regardless of difficulty, got %d", res.IntervalDays)
	}
	state := p.SpacedRepetition["q1"]
	if state.ReviewCount != 2 {
		t.Fatalf("expected review count 2, got %d", state.ReviewCount)
	}
	if !state.NextReviewDate.Equal(onDay(8)) {
		t.Fatalf("next review %v, want %v", state.NextReviewDate, onDay(8))
	}
	if state.LastResult != resultIncorrect {
		t.Fatalf("last result %q", state.LastResult)
	}
}

func TestDueQuestionIDs(t *testing.T) {
	p := NewUserProgress("u1", onDay(0))
	p.SpacedRepetition = map[string]ReviewState{
		"overdue":   {NextReviewDate: onDay(-2)},
		"dueToday":  {NextReviewDate: onDay(0).Add(22 * time.Hour)}, // later today still counts
		"tomorrow":  {NextReviewDate: onDay(1)},
		"nextWeek":  {NextReviewDate: onDay(7)},
		"malformed": {}, // no next review date recorded
	}

	got := dueQuestionIDs(p, onDay(0))
	want := []string{"dueToday", "overdue"}
	if len(got) != len(want) {
		t.Fatalf("due set %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("due set %v, want %v", got, want)
		}
	}
}

func TestDueQuestionIDs_SevenDayReviewNotDueUntilDay7(t *testing.T) {
	p := NewUserProgress("u1", onDay(0))
	applyReview(p, ReviewInput{QuestionID: "q1", IsCorrect: true, Difficulty: DifficultyEasy}, onDay(0))

	if got := dueQuestionIDs(p, onDay(0)); len(got) != 0 {
		t.Fatalf("freshly reviewed question must not be due today: %v", got)
	}
	if got := dueQuestionIDs(p, onDay(6)); len(got) != 0 {
		t.Fatalf("question due early: %v", got)
	}
	if got := dueQuestionIDs(p, onDay(7)); len(got) != 1 || got[0] != "q1" {
		t.Fatalf("question should be due on day 7: %v", got)
	}
}

func TestNextUpcomingReview(t *testing.T) {
	p := NewUserProgress("u1", onDay(0))
	p.SpacedRepetition = map[string]ReviewState{
		"past":      {NextReviewDate: onDay(-1)},
		"today":     {NextReviewDate: onDay(0)},
		"soonest":   {NextReviewDate: onDay(2).Add(9 * time.Hour)},
		"later":     {NextReviewDate: onDay(5)},
		"malformed": {},
	}

	next, ok := nextUpcomingReview(p, onDay(0))
	if !ok {
		t.Fatalf("expected an upcoming review")
	}
	if !next.Equal(dateOf(onDay(2))) {
		t.Fatalf("next upcoming %v, want %v", next, dateOf(onDay(2)))
	}
}

func TestNextUpcomingReview_NoneScheduled(t *testing.T) {
	p := NewUserProgress("u1", onDay(0))
	p.SpacedRepetition = map[string]ReviewState{
		"past":      {NextReviewDate: onDay(-3)},
		"malformed": {},
	}

	if _, ok := nextUpcomingReview(p, onDay(0)); ok {
		t.Fatalf("no review is strictly after asOf, expected none")
	}
}

func TestDateOfIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2024, time.March, 10, 0, 5, 0, 0, time.UTC)
	night := time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC)
	if !dateOf(morning).Equal(dateOf(night)) {
		t.Fatalf("same calendar day must truncate equally")
	}
	if daysBetween(dateOf(morning), dateOf(night.AddDate(0, 0, 1))) != 1 {
		t.Fatalf("expected one day between consecutive dates")
	}
}
