package engine

import (
	"fmt"
	"time"
)

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

type Mode string

const (
	ModeNormal   Mode = "normal"
	ModeCategory Mode = "category"
	ModeReview   Mode = "review"
)

// PassThreshold is the minimum score percentage for a passing verdict.
// It is an exam-authority rule and does not vary by tier.
const PassThreshold = 90

// TierConfig holds the per-plan session limits.
type TierConfig struct {
	QuestionCount    int
	TimeBudget       time.Duration
	ShowExplanations bool
}

var tierConfigs = map[Tier]TierConfig{
	TierFree:    {QuestionCount: 10, TimeBudget: 600 * time.Second, ShowExplanations: false},
	TierPremium: {QuestionCount: 20, TimeBudget: 1800 * time.Second, ShowExplanations: true},
}

// ConfigFor returns the limits of a tier. Unknown tiers fall back to free.
func ConfigFor(t Tier) TierConfig {
	if cfg, ok := tierConfigs[t]; ok {
		return cfg
	}
	return tierConfigs[TierFree]
}

func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierFree, TierPremium:
		return Tier(s), nil
	default:
		return "", fmt.Errorf("invalid tier: %s (allowed: free, premium)", s)
	}
}

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeNormal, ModeCategory, ModeReview:
		return Mode(s), nil
	case "":
		return ModeNormal, nil
	default:
		return "", fmt.Errorf("%w: %s (allowed: normal, category, review)", ErrInvalidMode, s)
	}
}

// Question is immutable once loaded into a session.
type Question struct {
	ID            string
	Text          string
	Options       []string
	CorrectAnswer string
	Category      string
	Explanation   string
}

// Valid reports whether the correct answer is exactly one of the options.
func (q Question) Valid() bool {
	if q.ID == "" || len(q.Options) < 2 {
		return false
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return true
		}
	}
	return false
}

func (q Question) HasOption(option string) bool {
	for _, opt := range q.Options {
		if opt == option {
			return true
		}
	}
	return false
}

func (q Question) clone() Question {
	c := q
	c.Options = append([]string(nil), q.Options...)
	return c
}

// AnswerRecord is the immutable log entry for one confirmed answer.
type AnswerRecord struct {
	QuestionID    string
	QuestionText  string
	UserAnswer    string
	CorrectAnswer string
	IsCorrect     bool
	Category      string
	Explanation   string
}

// Result is the aggregate outcome of a finished session.
type Result struct {
	ScorePercentage int
	CorrectCount    int
	TotalQuestions  int
	HasPassed       bool
	Tier            Tier
	CompletedAt     time.Time
}

type FinishReason string

const (
	FinishCompleted FinishReason = "completed"
	FinishTimeUp    FinishReason = "time_up"
)
