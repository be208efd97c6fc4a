package mapper

import (
	"fmt"
	"time"

	httpEntity "github.com/evandrarf/drivequiz-be/internal/delivery/http/entity"
	"github.com/evandrarf/drivequiz-be/internal/engine"
	dbEntity "github.com/evandrarf/drivequiz-be/internal/entity"
)

// ToSessionView - Convert engine view to response DTO
func ToSessionView(v engine.View) *httpEntity.SessionView {
	out := &httpEntity.SessionView{
		SessionID:        v.SessionID,
		State:            string(v.State),
		Tier:             string(v.Tier),
		Mode:             string(v.Mode),
		Category:         v.Category,
		Index:            v.Index,
		Total:            v.Total,
		Countdown:        v.Countdown,
		RemainingSeconds: v.RemainingSeconds,
		Correct:          v.Tally.Correct,
		Incorrect:        v.Tally.Incorrect,
		KeepScreenAwake:  v.KeepScreenAwake,
		EmptyMessage:     v.EmptyMessage,
		Error:            v.Error,
	}

	if q := v.Question; q != nil {
		qv := &httpEntity.QuestionView{
			ID:          q.ID,
			Text:        q.Text,
			Category:    q.Category,
			Options:     make([]httpEntity.OptionView, 0, len(q.Options)),
			Selected:    q.Selected,
			Confirmed:   q.Confirmed,
			Explanation: q.Explanation,
		}
		for _, opt := range q.Options {
			qv.Options = append(qv.Options, httpEntity.OptionView{Text: opt.Text, State: string(opt.State)})
		}
		out.Question = qv
	}

	if r := v.Result; r != nil {
		out.Result = &httpEntity.ResultView{
			ScorePercentage: r.ScorePercentage,
			CorrectCount:    r.CorrectCount,
			TotalQuestions:  r.TotalQuestions,
			HasPassed:       r.HasPassed,
			Tier:            string(r.Tier),
			CompletedAt:     r.CompletedAt.UTC().Format(time.RFC3339),
			FinishReason:    string(v.FinishReason),
		}
		out.Persistence = &httpEntity.PersistenceView{
			Status:    string(v.Persistence.Status),
			Banner:    v.Persistence.Banner,
			ResultID:  v.Persistence.ResultID,
			Retryable: v.Persistence.Retryable,
		}
	}

	return out
}

func ToCategoryStats(stats []engine.CategoryStat) []httpEntity.CategoryStat {
	out := make([]httpEntity.CategoryStat, 0, len(stats))
	for _, s := range stats {
		rate := "0.0%"
		if s.Answered > 0 {
			rate = fmt.Sprintf("%.1f%%", float64(s.Correct)/float64(s.Answered)*100)
		}
		out = append(out, httpEntity.CategoryStat{
			Category:     s.Category,
			Answered:     s.Answered,
			Correct:      s.Correct,
			AccuracyRate: rate,
		})
	}
	return out
}

func ToResultSummaries(results []dbEntity.QuizResult) []httpEntity.ResultSummary {
	out := make([]httpEntity.ResultSummary, 0, len(results))
	for _, r := range results {
		out = append(out, httpEntity.ResultSummary{
			ResultID:        r.ResultID,
			ScorePercentage: r.ScorePercentage,
			CorrectCount:    r.CorrectCount,
			TotalQuestions:  r.TotalQuestions,
			HasPassed:       r.HasPassed,
			Tier:            r.Tier,
			CompletedAt:     r.CompletedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

func ToAnswerLogItems(logs []dbEntity.AnswerLog) []httpEntity.AnswerLogItem {
	out := make([]httpEntity.AnswerLogItem, 0, len(logs))
	for _, l := range logs {
		out = append(out, httpEntity.AnswerLogItem{
			QuestionID:    l.QuestionID,
			QuestionText:  l.QuestionText,
			UserAnswer:    l.UserAnswer,
			CorrectAnswer: l.CorrectAnswer,
			IsCorrect:     l.IsCorrect,
			Category:      l.Category,
		})
	}
	return out
}
