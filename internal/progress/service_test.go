package progress

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeRepo struct {
	getFn     func(context.Context, string) (*UserProgress, error)
	updateFn  func(context.Context, string, func(*UserProgress) error) (*UserProgress, error)
	topByXPFn func(context.Context, int) ([]LeaderboardEntry, error)
}

func (f *fakeRepo) Get(ctx context.Context, userID string) (*UserProgress, error) {
	if f.getFn != nil {
		return f.getFn(ctx, userID)
	}
	return nil, errors.New("getFn not provided")
}

func (f *fakeRepo) Update(ctx context.Context, userID string, mutate func(*UserProgress) error) (*UserProgress, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, userID, mutate)
	}
	return nil, errors.New("updateFn not provided")
}

func (f *fakeRepo) TopByXP(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if f.topByXPFn != nil {
		return f.topByXPFn(ctx, limit)
	}
	return nil, errors.New("topByXPFn not provided")
}

func fixedClock(at time.Time) Clock {
	return func() time.Time { return at }
}

func TestServiceRecordAnswer_RejectsInvalidInputBeforePersistence(t *testing.T) {
	touched := false
	repo := &fakeRepo{
		updateFn: func(ctx context.Context, userID string, mutate func(*UserProgress) error) (*UserProgress, error) {
			touched = true
			return nil, nil
		},
	}

	svc := NewServiceWithClock(repo, fixedClock(onDay(0)))

	if _, err := svc.RecordAnswer(context.Background(), "", correctAnswer("q1")); !errors.Is(err, ErrMissingUserID) {
		t.Fatalf("expected ErrMissingUserID, got %v", err)
	}
	if _, err := svc.RecordAnswer(context.Background(), "u1", AnswerInput{}); !errors.Is(err, ErrMissingQuestionID) {
		t.Fatalf("expected ErrMissingQuestionID, got %v", err)
	}
	if touched {
		t.Fatalf("invalid input must not reach the repository")
	}
}

func TestServiceRecordAnswer_PropagatesPersistenceFailure(t *testing.T) {
	wantErr := errors.New("firestore unavailable")
	repo := &fakeRepo{
		updateFn: func(ctx context.Context, userID string, mutate func(*UserProgress) error) (*UserProgress, error) {
			return nil, wantErr
		},
	}

	svc := NewServiceWithClock(repo, fixedClock(onDay(0)))
	if _, err := svc.RecordAnswer(context.Background(), "u1", correctAnswer("q1")); !errors.Is(err, wantErr) {
		t.Fatalf("expected %v, got %v", wantErr, err)
	}
}

func TestServiceRecordAnswer_IdempotentAcrossCalls(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewServiceWithClock(repo, fixedClock(onDay(0)))

	first, err := svc.RecordAnswer(context.Background(), "u1", correctAnswer("q1"))
	if err != nil {
		t.Fatalf("RecordAnswer returned error: %v", err)
	}
	second, err := svc.RecordAnswer(context.Background(), "u1", correctAnswer("q1"))
	if err != nil {
		t.Fatalf("RecordAnswer returned error: %v", err)
	}

	if !second.Duplicate {
		t.Fatalf("second identical answer should be flagged as duplicate")
	}
	if second.TotalXP != first.TotalXP {
		t.Fatalf("duplicate answer changed XP: %d -> %d", first.TotalXP, second.TotalXP)
	}

	p, err := repo.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if p.Stats.TotalAnswered != 1 {
		t.Fatalf("expected exactly one credited answer, got %d", p.Stats.TotalAnswered)
	}
}

func TestServiceRecordReview_RejectsUnknownDifficulty(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewServiceWithClock(repo, fixedClock(onDay(0)))

	_, err := svc.RecordReview(context.Background(), "u1", ReviewInput{
		QuestionID: "q1",
		IsCorrect:  true,
		Difficulty: Difficulty("brutal"),
	})
	if !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
}

func TestServiceGetReviewQueue(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewServiceWithClock(repo, fixedClock(onDay(0)))

	if _, err := svc.RecordReview(context.Background(), "u1", ReviewInput{QuestionID: "easy-q", IsCorrect: true, Difficulty: DifficultyEasy}); err != nil {
		t.Fatalf("RecordReview returned error: %v", err)
	}
	if _, err := svc.RecordReview(context.Background(), "u1", ReviewInput{QuestionID: "hard-q", IsCorrect: false, Difficulty: DifficultyHard}); err != nil {
		t.Fatalf("RecordReview returned error: %v", err)
	}

	today, err := svc.GetReviewQueue(context.Background(), "u1", onDay(0))
	if err != nil {
		t.Fatalf("GetReviewQueue returned error: %v", err)
	}
	if today.DueCount != 0 {
		t.Fatalf("nothing should be due on review day, got %v", today.QuestionIDs)
	}
	if today.NextReviewDate == nil || !today.NextReviewDate.Equal(dateOf(onDay(1))) {
		t.Fatalf("expected next review tomorrow, got %v", today.NextReviewDate)
	}

	tomorrow, err := svc.GetReviewQueue(context.Background(), "u1", onDay(1))
	if err != nil {
		t.Fatalf("GetReviewQueue returned error: %v", err)
	}
	if tomorrow.DueCount != 1 || tomorrow.QuestionIDs[0] != "hard-q" {
		t.Fatalf("expected hard-q due tomorrow, got %v", tomorrow.QuestionIDs)
	}
}

func TestServiceGetDashboard_CombinesSummaryAndQueue(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewServiceWithClock(repo, fixedClock(onDay(0)))

	if _, err := svc.RecordAnswer(context.Background(), "u1", correctAnswer("q1")); err != nil {
		t.Fatalf("RecordAnswer returned error: %v", err)
	}
	if _, err := svc.RecordReview(context.Background(), "u1", ReviewInput{QuestionID: "q1", IsCorrect: true, Difficulty: DifficultyMedium}); err != nil {
		t.Fatalf("RecordReview returned error: %v", err)
	}

	dashboard, err := svc.GetDashboard(context.Background(), "u1", onDay(3))
	if err != nil {
		t.Fatalf("GetDashboard returned error: %v", err)
	}

	if dashboard.Summary.XP != 8 || dashboard.Summary.TotalAnswered != 1 {
		t.Fatalf("summary not populated: %+v", dashboard.Summary)
	}
	if dashboard.ReviewQueue.DueCount != 1 {
		t.Fatalf("medium review should be due on day 3: %+v", dashboard.ReviewQueue)
	}
}

func TestServiceGetSummary_AccuracyAndNextLevel(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewServiceWithClock(repo, fixedClock(onDay(0)))

	if _, err := svc.RecordAnswer(context.Background(), "u1", correctAnswer("q1")); err != nil {
		t.Fatalf("RecordAnswer returned error: %v", err)
	}
	if _, err := svc.RecordAnswer(context.Background(), "u1", incorrectAnswer("q2")); err != nil {
		t.Fatalf("RecordAnswer returned error: %v", err)
	}

	summary, err := svc.GetSummary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetSummary returned error: %v", err)
	}

	if summary.Accuracy != 0.5 {
		t.Fatalf("expected 0.5 accuracy, got %v", summary.Accuracy)
	}
	// 8 + 1 = 9 XP, 21 short of level 2.
	if summary.XP != 9 || summary.XPToNextLevel != 21 {
		t.Fatalf("xp=%d toNext=%d", summary.XP, summary.XPToNextLevel)
	}
	if len(summary.Achievements) != 1 || summary.Achievements[0] != achFirstCorrect {
		t.Fatalf("achievements = %v", summary.Achievements)
	}
}

func TestServiceResetProgress(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewServiceWithClock(repo, fixedClock(onDay(0)))

	for _, qid := range []string{"q1", "q2", "q3"} {
		if _, err := svc.RecordAnswer(context.Background(), "u1", correctAnswer(qid)); err != nil {
			t.Fatalf("RecordAnswer returned error: %v", err)
		}
	}

	before, _ := svc.GetSummary(context.Background(), "u1")
	if err := svc.ResetProgress(context.Background(), "u1"); err != nil {
		t.Fatalf("ResetProgress returned error: %v", err)
	}
	after, err := svc.GetSummary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetSummary returned error: %v", err)
	}

	if after.TotalAnswered != 0 || after.CurrentStreak != 0 {
		t.Fatalf("counters survived reset: %+v", after)
	}
	if after.XP != before.XP || after.Level != before.Level {
		t.Fatalf("xp/level must survive reset: %+v", after)
	}
	if len(after.Achievements) != len(before.Achievements) {
		t.Fatalf("achievements must survive reset")
	}
}

func TestServiceLeaderboard_DefaultsLimit(t *testing.T) {
	var gotLimit int
	repo := &fakeRepo{
		topByXPFn: func(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
			gotLimit = limit
			return []LeaderboardEntry{}, nil
		},
	}

	svc := NewService(repo)
	if _, err := svc.Leaderboard(context.Background(), 0); err != nil {
		t.Fatalf("Leaderboard returned error: %v", err)
	}
	if gotLimit != 10 {
		t.Fatalf("expected default limit 10, got %d", gotLimit)
	}
}
