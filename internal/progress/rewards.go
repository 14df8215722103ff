package progress

import (
	"fmt"
	"time"
)

// Base XP: every answer earns 1, a correct answer earns 2 more.
const (
	baseAnswerXP  = 1
	correctXPGain = 2
)

// Achievement keys. Once set on a user they are never unset.
const (
	achFirstCorrect   = "first_correct"
	achTenAnswered    = "ten_answered"
	achSevenDayStreak = "seven_day_streak"
	achFiveInARow     = "five_in_a_row"
)

// answerSnapshot captures the post-answer counters a bonus rule may inspect.
type answerSnapshot struct {
	IsCorrect      bool
	TotalAnswered  int
	TotalCorrect   int
	CorrectStreak  int  // consecutive correct answers including this one
	DayStreak      int  // daily answer streak including today
	DayStreakMoved bool // whether this answer changed the daily streak
}

// bonusRule awards extra XP when its trigger matches. Rules with an
// achievement key fire at most once per user for life.
type bonusRule struct {
	Achievement string
	XP          int
	Message     string
	Fires       func(s answerSnapshot) bool
}

// bonusRules is evaluated in order on every recorded answer. Several rules may
// fire on the same answer; their awards stack additively.
var bonusRules = []bonusRule{
	{
		Achievement: achFirstCorrect,
		XP:          5,
		Message:     "First correct answer! +5 XP",
		Fires:       func(s answerSnapshot) bool { return s.IsCorrect },
	},
	{
		Achievement: achTenAnswered,
		XP:          50,
		Message:     "10 questions answered! +50 XP",
		Fires:       func(s answerSnapshot) bool { return s.TotalAnswered == 10 },
	},
	{
		Achievement: achSevenDayStreak,
		XP:          50,
		Message:     "First 7-day streak! +50 XP",
		Fires:       func(s answerSnapshot) bool { return s.DayStreak >= 7 },
	},
	{
		Achievement: achFiveInARow,
		XP:          20,
		Message:     "5 in a row! +20 XP",
		Fires:       func(s answerSnapshot) bool { return s.CorrectStreak >= 5 },
	},

	dayStreakMilestone(3, 5),
	dayStreakMilestone(7, 15),
	dayStreakMilestone(14, 30),
	dayStreakMilestone(30, 75),
	dayStreakMilestone(60, 150),
	dayStreakMilestone(100, 500),

	correctCountMilestone(10, 10),
	correctCountMilestone(25, 25),
	correctCountMilestone(50, 75),

	correctRunMilestone(5, 10),
	correctRunMilestone(10, 25),
	correctRunMilestone(20, 75),
}

// dayStreakMilestone fires exactly when the daily streak advances onto days.
func dayStreakMilestone(days, xp int) bonusRule {
	return bonusRule{
		XP:      xp,
		Message: fmt.Sprintf("%d-day streak! +%d XP", days, xp),
		Fires: func(s answerSnapshot) bool {
			return s.DayStreakMoved && s.DayStreak == days
		},
	}
}

// correctCountMilestone fires exactly when the lifetime correct count reaches count.
func correctCountMilestone(count, xp int) bonusRule {
	return bonusRule{
		XP:      xp,
		Message: fmt.Sprintf("%d correct answers! +%d XP", count, xp),
		Fires: func(s answerSnapshot) bool {
			return s.IsCorrect && s.TotalCorrect == count
		},
	}
}

// correctRunMilestone fires exactly when the consecutive-correct run reaches run.
func correctRunMilestone(run, xp int) bonusRule {
	return bonusRule{
		XP:      xp,
		Message: fmt.Sprintf("%d correct in a row! +%d XP", run, xp),
		Fires: func(s answerSnapshot) bool {
			return s.IsCorrect && s.CorrectStreak == run
		},
	}
}

// applyAnswer runs the reward engine against p in place. It is pure logic over
// the record; the caller is responsible for running it inside a transactional
// read-modify-write.
func applyAnswer(p *UserProgress, in AnswerInput, now time.Time) AnswerResult {
	// At-most-once credit per question: a repeated answer is a silent no-op.
	if _, exists := p.AnsweredQuestions[in.QuestionID]; exists {
		return AnswerResult{
			Duplicate: true,
			NewLevel:  p.Stats.Level,
			TotalXP:   p.Stats.XP,
		}
	}

	p.Stats.TotalAnswered++
	p.Stats.TotalTimeSpent += in.TimeSpent

	cat := p.Stats.Categories[in.Category]
	cat.Answered++
	if in.IsCorrect {
		p.Stats.TotalCorrect++
		p.Stats.CurrentCorrectStreak++
		cat.Correct++
	} else {
		p.Stats.TotalIncorrect++
		p.Stats.CurrentCorrectStreak = 0
		cat.Incorrect++
	}
	p.Stats.Categories[in.Category] = cat

	moved := advanceDayStreak(&p.Streaks, now)

	snapshot := answerSnapshot{
		IsCorrect:      in.IsCorrect,
		TotalAnswered:  p.Stats.TotalAnswered,
		TotalCorrect:   p.Stats.TotalCorrect,
		CorrectStreak:  p.Stats.CurrentCorrectStreak,
		DayStreak:      p.Streaks.CurrentStreak,
		DayStreakMoved: moved,
	}

	earned := baseAnswerXP
	if in.IsCorrect {
		earned += correctXPGain
	}

	var messages []string
	for _, rule := range bonusRules {
		if rule.Achievement != "" && p.Stats.Achievements[rule.Achievement] {
			continue
		}
		if !rule.Fires(snapshot) {
			continue
		}
		if rule.Achievement != "" {
			p.Stats.Achievements[rule.Achievement] = true
		}
		earned += rule.XP
		messages = append(messages, rule.Message)
	}

	previousLevel := p.Stats.Level
	p.Stats.XP += earned
	p.Stats.Level = LevelForXP(p.Stats.XP)

	p.AnsweredQuestions[in.QuestionID] = AnsweredQuestion{
		IsCorrect: in.IsCorrect,
		Category:  in.Category,
		Timestamp: now,
		TimeSpent: in.TimeSpent,
	}
	p.UpdatedAt = now

	return AnswerResult{
		LeveledUp:     p.Stats.Level > previousLevel,
		NewLevel:      p.Stats.Level,
		TotalXP:       p.Stats.XP,
		XPAwarded:     earned,
		BonusMessages: messages,
	}
}

// advanceDayStreak updates the calendar-day streak for an answer at now and
// reports whether the streak counter changed. Dates are normalized to UTC so
// the comparison ignores time-of-day.
func advanceDayStreak(s *DayStreak, now time.Time) bool {
	moved := false
	today := dateOf(now)

	if s.LastAnsweredDate.IsZero() {
		s.CurrentStreak = 1
		moved = true
	} else {
		switch daysBetween(dateOf(s.LastAnsweredDate), today) {
		case 0:
			// Same calendar day, streak unchanged.
		case 1:
			s.CurrentStreak++
			moved = true
		default:
			s.CurrentStreak = 1
			moved = true
		}
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastAnsweredDate = now
	return moved
}

// applyReset zeroes counters, streaks and answer history while preserving XP,
// level and earned achievements.
func applyReset(p *UserProgress, now time.Time) {
	p.Stats.TotalAnswered = 0
	p.Stats.TotalCorrect = 0
	p.Stats.TotalIncorrect = 0
	p.Stats.TotalTimeSpent = 0
	p.Stats.CurrentCorrectStreak = 0
	p.Stats.Categories = make(map[string]CategoryStats)
	p.Streaks = DayStreak{}
	p.AnsweredQuestions = make(map[string]AnsweredQuestion)
	p.UpdatedAt = now
}
