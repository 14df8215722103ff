package progress

import (
	"context"
	"time"
)

// Difficulty is the self-rated difficulty attached to a spaced-repetition review.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a difficulty label supplied by the client.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch Difficulty(raw) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(raw), nil
	default:
		return "", ErrInvalidDifficulty
	}
}

// CategoryStats tracks per-category answer counters.
type CategoryStats struct {
	Answered  int `json:"answered" firestore:"answered"`
	Correct   int `json:"correct" firestore:"correct"`
	Incorrect int `json:"incorrect" firestore:"incorrect"`
}

// Stats holds the cumulative counters mutated by the reward engine.
type Stats struct {
	TotalAnswered        int                      `json:"total_answered" firestore:"total_answered"`
	TotalCorrect         int                      `json:"total_correct" firestore:"total_correct"`
	TotalIncorrect       int                      `json:"total_incorrect" firestore:"total_incorrect"`
	TotalTimeSpent       int                      `json:"total_time_spent" firestore:"total_time_spent"` // in seconds
	XP                   int                      `json:"xp" firestore:"xp"`
	Level                int                      `json:"level" firestore:"level"`
	CurrentCorrectStreak int                      `json:"current_correct_streak" firestore:"current_correct_streak"`
	Achievements         map[string]bool          `json:"achievements" firestore:"achievements"`
	Categories           map[string]CategoryStats `json:"categories" firestore:"categories"`
}

// DayStreak tracks consecutive calendar days with at least one answer.
type DayStreak struct {
	LastAnsweredDate time.Time `json:"last_answered_date" firestore:"last_answered_date"`
	CurrentStreak    int       `json:"current_streak" firestore:"current_streak"`
	LongestStreak    int       `json:"longest_streak" firestore:"longest_streak"`
}

// AnsweredQuestion is the write-once record kept per answered question id.
type AnsweredQuestion struct {
	IsCorrect bool      `json:"is_correct" firestore:"is_correct"`
	Category  string    `json:"category" firestore:"category"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
	TimeSpent int       `json:"time_spent" firestore:"time_spent"` // in seconds
}

// ReviewState is the mutable spaced-repetition entry kept per question id.
type ReviewState struct {
	LastReviewedAt time.Time  `json:"last_reviewed_at" firestore:"last_reviewed_at"`
	NextReviewDate time.Time  `json:"next_review_date" firestore:"next_review_date"`
	ReviewInterval int        `json:"review_interval" firestore:"review_interval"` // in days
	Difficulty     Difficulty `json:"difficulty" firestore:"difficulty"`
	LastResult     string     `json:"last_result" firestore:"last_result"`
	ReviewCount    int        `json:"review_count" firestore:"review_count"`
}

// UserProgress is the per-user document persisted in Firestore, mutated only
// through the reward engine and the review scheduler.
type UserProgress struct {
	UserID            string                      `json:"user_id" firestore:"user_id"`
	Stats             Stats                       `json:"stats" firestore:"stats"`
	Streaks           DayStreak                   `json:"streaks" firestore:"streaks"`
	AnsweredQuestions map[string]AnsweredQuestion `json:"answered_questions" firestore:"answered_questions"`
	SpacedRepetition  map[string]ReviewState      `json:"spaced_repetition" firestore:"spaced_repetition"`
	CreatedAt         time.Time                   `json:"created_at" firestore:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at" firestore:"updated_at"`
}

// NewUserProgress returns a zeroed progress record for a first-time user.
func NewUserProgress(userID string, now time.Time) *UserProgress {
	return &UserProgress{
		UserID: userID,
		Stats: Stats{
			Level:        1,
			Achievements: make(map[string]bool),
			Categories:   make(map[string]CategoryStats),
		},
		AnsweredQuestions: make(map[string]AnsweredQuestion),
		SpacedRepetition:  make(map[string]ReviewState),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// normalize repairs nil maps and the level floor after decoding a stored document.
func (p *UserProgress) normalize() {
	if p.Stats.Achievements == nil {
		p.Stats.Achievements = make(map[string]bool)
	}
	if p.Stats.Categories == nil {
		p.Stats.Categories = make(map[string]CategoryStats)
	}
	if p.AnsweredQuestions == nil {
		p.AnsweredQuestions = make(map[string]AnsweredQuestion)
	}
	if p.SpacedRepetition == nil {
		p.SpacedRepetition = make(map[string]ReviewState)
	}
	if p.Stats.Level < 1 {
		p.Stats.Level = 1
	}
}

// clone returns a deep copy so callers can't mutate stored state.
func (p *UserProgress) clone() *UserProgress {
	out := *p
	out.Stats.Achievements = make(map[string]bool, len(p.Stats.Achievements))
	for k, v := range p.Stats.Achievements {
		out.Stats.Achievements[k] = v
	}
	out.Stats.Categories = make(map[string]CategoryStats, len(p.Stats.Categories))
	for k, v := range p.Stats.Categories {
		out.Stats.Categories[k] = v
	}
	out.AnsweredQuestions = make(map[string]AnsweredQuestion, len(p.AnsweredQuestions))
	for k, v := range p.AnsweredQuestions {
		out.AnsweredQuestions[k] = v
	}
	out.SpacedRepetition = make(map[string]ReviewState, len(p.SpacedRepetition))
	for k, v := range p.SpacedRepetition {
		out.SpacedRepetition[k] = v
	}
	return &out
}

// AnswerInput is a single answer event from the quiz UI.
type AnswerInput struct {
	QuestionID string
	Category   string
	IsCorrect  bool
	TimeSpent  int // in seconds
}

// AnswerResult is returned to the UI to drive toasts and the level-up animation.
type AnswerResult struct {
	Duplicate     bool     `json:"duplicate"`
	LeveledUp     bool     `json:"leveled_up"`
	NewLevel      int      `json:"new_level"`
	TotalXP       int      `json:"total_xp"`
	XPAwarded     int      `json:"xp_awarded"`
	BonusMessages []string `json:"bonus_messages,omitempty"`
}

// ReviewInput is a difficulty rating for an answered question.
type ReviewInput struct {
	QuestionID string
	IsCorrect  bool
	Difficulty Difficulty
}

// ReviewResult reports the computed schedule for the reviewed question.
type ReviewResult struct {
	IntervalDays   int       `json:"interval_days"`
	NextReviewDate time.Time `json:"next_review_date"`
	ReviewCount    int       `json:"review_count"`
}

// ReviewQueue is the pull-based "due for review" view for the dashboard.
type ReviewQueue struct {
	DueCount       int        `json:"due_count"`
	QuestionIDs    []string   `json:"question_ids"`
	NextReviewDate *time.Time `json:"next_review_date,omitempty"` // earliest upcoming review when nothing is due
}

// Summary is the stats view rendered on the dashboard.
type Summary struct {
	TotalAnswered  int                      `json:"total_answered"`
	TotalCorrect   int                      `json:"total_correct"`
	TotalIncorrect int                      `json:"total_incorrect"`
	TotalTimeSpent int                      `json:"total_time_spent"`
	Accuracy       float64                  `json:"accuracy"`
	XP             int                      `json:"xp"`
	Level          int                      `json:"level"`
	XPToNextLevel  int                      `json:"xp_to_next_level"` // 0 at the level cap
	CurrentStreak  int                      `json:"current_streak"`
	LongestStreak  int                      `json:"longest_streak"`
	Achievements   []string                 `json:"achievements"`
	Categories     map[string]CategoryStats `json:"categories"`
}

// Dashboard bundles the summary with the review queue for a single fetch.
type Dashboard struct {
	Summary     *Summary     `json:"summary"`
	ReviewQueue *ReviewQueue `json:"review_queue"`
}

// LeaderboardEntry is one row of the XP leaderboard preview.
type LeaderboardEntry struct {
	UserID string `json:"user_id"`
	XP     int    `json:"xp"`
	Level  int    `json:"level"`
}

// Repository defines the interface for progress data access. Update must apply
// mutate inside a transactional read-modify-write so concurrent answers from
// two sessions of the same user cannot clobber each other.
type Repository interface {
	Get(ctx context.Context, userID string) (*UserProgress, error)
	Update(ctx context.Context, userID string, mutate func(*UserProgress) error) (*UserProgress, error)
	TopByXP(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// Service defines the progress service interface.
type Service interface {
	RecordAnswer(ctx context.Context, userID string, in AnswerInput) (*AnswerResult, error)
	RecordReview(ctx context.Context, userID string, in ReviewInput) (*ReviewResult, error)
	GetReviewQueue(ctx context.Context, userID string, asOf time.Time) (*ReviewQueue, error)
	GetSummary(ctx context.Context, userID string) (*Summary, error)
	GetDashboard(ctx context.Context, userID string, asOf time.Time) (*Dashboard, error)
	ResetProgress(ctx context.Context, userID string) error
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}
