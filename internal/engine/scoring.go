package engine

import (
	"math"
	"time"
)

// Tally counts confirmed answers.
type Tally struct {
	Correct   int
	Incorrect int
}

func TallyAnswers(records []AnswerRecord) Tally {
	var t Tally
	for _, r := range records {
		if r.IsCorrect {
			t.Correct++
		} else {
			t.Incorrect++
		}
	}
	return t
}

// ScorePercentage rounds half up. The denominator is always the tier's
// question count, so unanswered questions count as wrong.
func ScorePercentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(correct)/float64(total)*100 + 0.5))
}

func HasPassed(scorePercentage int) bool {
	return scorePercentage >= PassThreshold
}

// Score builds the verdict for a set of confirmed answers.
func Score(records []AnswerRecord, tier Tier, completedAt time.Time) Result {
	total := ConfigFor(tier).QuestionCount
	correct := TallyAnswers(records).Correct
	pct := ScorePercentage(correct, total)

	return Result{
		ScorePercentage: pct,
		CorrectCount:    correct,
		TotalQuestions:  total,
		HasPassed:       HasPassed(pct),
		Tier:            tier,
		CompletedAt:     completedAt,
	}
}

type CategoryStat struct {
	Category string
	Answered int
	Correct  int
}

// CategoryBreakdown groups confirmed answers by category, in the order each
// category was first answered.
func CategoryBreakdown(records []AnswerRecord) []CategoryStat {
	index := make(map[string]int)
	stats := make([]CategoryStat, 0)
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(stats)
			index[r.Category] = i
			stats = append(stats, CategoryStat{Category: r.Category})
		}
		stats[i].Answered++
		if r.IsCorrect {
			stats[i].Correct++
		}
	}
	return stats
}
