package mapper

import (
	"encoding/json"
	"fmt"

	"github.com/evandrarf/drivequiz-be/internal/engine"
	dbEntity "github.com/evandrarf/drivequiz-be/internal/entity"
)

// ToEngineQuestion - Convert DB entity to engine question
func ToEngineQuestion(q *dbEntity.Question) (engine.Question, error) {
	var options []string
	if err := json.Unmarshal([]byte(q.Options), &options); err != nil {
		return engine.Question{}, fmt.Errorf("question %s: invalid options: %w", q.QuestionID, err)
	}

	return engine.Question{
		ID:            q.QuestionID,
		Text:          q.Text,
		Options:       options,
		CorrectAnswer: q.CorrectAnswer,
		Category:      q.Category,
		Explanation:   q.Explanation,
	}, nil
}

// ToEngineQuestions skips rows whose options cannot be decoded and reports
// how many were skipped.
func ToEngineQuestions(rows []dbEntity.Question) ([]engine.Question, int) {
	out := make([]engine.Question, 0, len(rows))
	skipped := 0
	for i := range rows {
		q, err := ToEngineQuestion(&rows[i])
		if err != nil {
			skipped++
			continue
		}
		out = append(out, q)
	}
	return out, skipped
}

func ToQuizResult(resultID string, r engine.ResultRecord) *dbEntity.QuizResult {
	return &dbEntity.QuizResult{
		ResultID:        resultID,
		UserID:          r.UserID,
		ScorePercentage: r.ScorePercentage,
		CorrectCount:    r.CorrectCount,
		TotalQuestions:  r.TotalQuestions,
		HasPassed:       r.HasPassed,
		Tier:            r.Tier,
		CompletedAt:     r.CompletedAt,
	}
}

func ToAnswerLogs(batch engine.AnswerLogBatch) []dbEntity.AnswerLog {
	logs := make([]dbEntity.AnswerLog, 0, len(batch.Entries))
	for i, e := range batch.Entries {
		logs = append(logs, dbEntity.AnswerLog{
			ResultID:      batch.ResultID,
			UserID:        batch.UserID,
			QuestionID:    e.QuestionID,
			Position:      i + 1,
			QuestionText:  e.QuestionText,
			UserAnswer:    e.UserAnswer,
			CorrectAnswer: e.CorrectAnswer,
			IsCorrect:     e.IsCorrect,
			Category:      e.Category,
			Explanation:   e.Explanation,
		})
	}
	return logs
}

// ToAnswerRecords rebuilds engine records from a stored answer log, e.g. for
// a report on a past result.
func ToAnswerRecords(logs []dbEntity.AnswerLog) []engine.AnswerRecord {
	out := make([]engine.AnswerRecord, 0, len(logs))
	for _, l := range logs {
		out = append(out, engine.AnswerRecord{
			QuestionID:    l.QuestionID,
			QuestionText:  l.QuestionText,
			UserAnswer:    l.UserAnswer,
			CorrectAnswer: l.CorrectAnswer,
			IsCorrect:     l.IsCorrect,
			Category:      l.Category,
			Explanation:   l.Explanation,
		})
	}
	return out
}
