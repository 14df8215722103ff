package progress

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Clock supplies the current time so day-boundary logic stays deterministic in tests.
type Clock func() time.Time

type service struct {
	repo Repository
	now  Clock
}

// NewService creates a new progress service backed by the system clock.
func NewService(repo Repository) Service {
	return NewServiceWithClock(repo, time.Now)
}

// NewServiceWithClock creates a progress service with an injected clock.
func NewServiceWithClock(repo Repository, clock Clock) Service {
	return &service{repo: repo, now: clock}
}

func (s *service) RecordAnswer(ctx context.Context, userID string, in AnswerInput) (*AnswerResult, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if in.QuestionID == "" {
		return nil, ErrMissingQuestionID
	}

	var result AnswerResult
	if _, err := s.repo.Update(ctx, userID, func(p *UserProgress) error {
		result = applyAnswer(p, in, s.now())
		return nil
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) RecordReview(ctx context.Context, userID string, in ReviewInput) (*ReviewResult, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if in.QuestionID == "" {
		return nil, ErrMissingQuestionID
	}
	if _, err := ParseDifficulty(string(in.Difficulty)); err != nil {
		return nil, err
	}

	var result ReviewResult
	if _, err := s.repo.Update(ctx, userID, func(p *UserProgress) error {
		result = applyReview(p, in, s.now())
		return nil
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) GetReviewQueue(ctx context.Context, userID string, asOf time.Time) (*ReviewQueue, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if asOf.IsZero() {
		asOf = s.now()
	}

	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	queue := &ReviewQueue{QuestionIDs: dueQuestionIDs(p, asOf)}
	queue.DueCount = len(queue.QuestionIDs)
	if next, ok := nextUpcomingReview(p, asOf); ok {
		queue.NextReviewDate = &next
	}
	return queue, nil
}

func (s *service) GetSummary(ctx context.Context, userID string) (*Summary, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildSummary(p), nil
}

func (s *service) GetDashboard(ctx context.Context, userID string, asOf time.Time) (*Dashboard, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	var (
		summary *Summary
		queue   *ReviewQueue
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sum, err := s.GetSummary(ctx, userID)
		if err != nil {
			return err
		}
		summary = sum
		return nil
	})

	g.Go(func() error {
		q, err := s.GetReviewQueue(ctx, userID, asOf)
		if err != nil {
			return err
		}
		queue = q
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dashboard{Summary: summary, ReviewQueue: queue}, nil
}

func (s *service) ResetProgress(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingUserID
	}

	_, err := s.repo.Update(ctx, userID, func(p *UserProgress) error {
		applyReset(p, s.now())
		return nil
	})
	return err
}

func (s *service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.TopByXP(ctx, limit)
}

func buildSummary(p *UserProgress) *Summary {
	accuracy := 0.0
	if p.Stats.TotalAnswered > 0 {
		accuracy = float64(p.Stats.TotalCorrect) / float64(p.Stats.TotalAnswered)
	}

	achievements := make([]string, 0, len(p.Stats.Achievements))
	for key, earned := range p.Stats.Achievements {
		if earned {
			achievements = append(achievements, key)
		}
	}
	sort.Strings(achievements)

	categories := make(map[string]CategoryStats, len(p.Stats.Categories))
	for name, stats := range p.Stats.Categories {
		categories[name] = stats
	}

	return &Summary{
		TotalAnswered:  p.Stats.TotalAnswered,
		TotalCorrect:   p.Stats.TotalCorrect,
		TotalIncorrect: p.Stats.TotalIncorrect,
		TotalTimeSpent: p.Stats.TotalTimeSpent,
		Accuracy:       accuracy,
		XP:             p.Stats.XP,
		Level:          p.Stats.Level,
		XPToNextLevel:  XPToNextLevel(p.Stats.XP),
		CurrentStreak:  p.Streaks.CurrentStreak,
		LongestStreak:  p.Streaks.LongestStreak,
		Achievements:   achievements,
		Categories:     categories,
	}
}
