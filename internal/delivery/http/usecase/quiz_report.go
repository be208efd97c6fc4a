package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/evandrarf/drivequiz-be/internal/delivery/http/entity"
	"github.com/evandrarf/drivequiz-be/internal/engine"
	"github.com/evandrarf/drivequiz-be/internal/pkg/mapper"
)

const (
	fallbackAnalysis        = "Session finished. Keep practising regularly to build confidence for the theory exam."
	fallbackRecommendations = "Review the questions you got wrong, then start a review session to practise them again."
)

func (u *quizUsecase) GenerateSessionReport(ctx context.Context, identity entity.Identity, sessionID string) (*entity.SessionReport, error) {
	session, err := u.lookup(identity, sessionID)
	if err != nil {
		return nil, err
	}

	result, ok := session.Result()
	if !ok {
		return nil, ErrNotFinished
	}

	records := session.Records()
	tally := engine.TallyAnswers(records)
	stats := engine.CategoryBreakdown(records)

	report := &entity.SessionReport{
		SessionID:       sessionID,
		ScorePercentage: result.ScorePercentage,
		HasPassed:       result.HasPassed,
		TotalQuestions:  result.TotalQuestions,
		Answered:        len(records),
		CorrectAnswers:  tally.Correct,
		WrongAnswers:    tally.Incorrect,
		Categories:      mapper.ToCategoryStats(stats),
		WeakestCategory: weakestCategory(stats),
	}

	report.Analysis, report.Recommendations = u.generateAIAnalysis(ctx, result, report)
	return report, nil
}

// weakestCategory is the category with the lowest accuracy among those with
// at least one wrong answer.
func weakestCategory(stats []engine.CategoryStat) string {
	weakest := ""
	worst := 2.0
	for _, s := range stats {
		if s.Answered == 0 || s.Correct == s.Answered {
			continue
		}
		rate := float64(s.Correct) / float64(s.Answered)
		if rate < worst {
			worst = rate
			weakest = s.Category
		}
	}
	return weakest
}

func (u *quizUsecase) generateAIAnalysis(ctx context.Context, result engine.Result, report *entity.SessionReport) (string, string) {
	if u.cfg.LLM == nil || u.cfg.Config.GetBool("llm.disable") {
		return fallbackAnalysis, fallbackRecommendations
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Analyze this driving theory practice session:

Score: %d%% (pass mark %d%%), %s
Answered: %d of %d questions
Correct: %d, Wrong: %d

Results by category:
`, result.ScorePercentage, engine.PassThreshold, passLabel(result.HasPassed),
		report.Answered, report.TotalQuestions, report.CorrectAnswers, report.WrongAnswers)

	for _, c := range report.Categories {
		fmt.Fprintf(&b, "- %s: %d of %d correct (%s)\n", c.Category, c.Correct, c.Answered, c.AccuracyRate)
	}

	b.WriteString(`
Task:
1. Give a short, encouraging analysis of the learner's performance
2. Point out which categories need the most attention
3. Give 2-3 specific study recommendations

Return response as JSON with two fields:
{"analysis":"...","recommendations":"..."}`)

	text, err := u.cfg.LLM.GenerateText(ctx, b.String())
	if err != nil {
		u.cfg.Log.WithError(err).Warn("report analysis unavailable, using fallback")
		return fallbackAnalysis, fallbackRecommendations
	}

	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var parsed struct {
		Analysis        string `json:"analysis"`
		Recommendations string `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil || parsed.Analysis == "" {
		u.cfg.Log.WithField("text", text).Warn("failed to parse report analysis, using fallback")
		return fallbackAnalysis, fallbackRecommendations
	}
	if parsed.Recommendations == "" {
		parsed.Recommendations = fallbackRecommendations
	}

	return parsed.Analysis, parsed.Recommendations
}

func passLabel(passed bool) string {
	if passed {
		return "PASSED"
	}
	return "NOT PASSED"
}
