package engine

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// QuestionSource is the read side of the storage collaborator.
type QuestionSource interface {
	FetchAllQuestions(ctx context.Context) ([]Question, error)
	FetchQuestionsByCategory(ctx context.Context, category string, limit int) ([]Question, error)
	FetchWrongAnswerQuestionIDs(ctx context.Context, userID string, limit int) ([]string, error)
	FetchQuestionsByIDs(ctx context.Context, ids []string) ([]Question, error)
}

type SelectRequest struct {
	Mode     Mode
	Category string
	Tier     Tier
	UserID   string
}

type Selector struct {
	source QuestionSource
	log    *logrus.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSelector(source QuestionSource, log *logrus.Logger) *Selector {
	return NewSelectorWithRand(source, log, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func NewSelectorWithRand(source QuestionSource, log *logrus.Logger, rnd *rand.Rand) *Selector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Selector{source: source, log: log, rnd: rnd}
}

// Select returns the fixed, ordered question set for a session. It never
// returns more than the tier's question count. An empty slice with a nil
// error is only possible in review mode.
func (s *Selector) Select(ctx context.Context, req SelectRequest) ([]Question, error) {
	limit := ConfigFor(req.Tier).QuestionCount

	switch req.Mode {
	case ModeCategory:
		return s.selectByCategory(ctx, req.Category, limit)
	case ModeReview:
		return s.selectWrongAnswers(ctx, req.UserID, limit)
	default:
		return s.selectRandom(ctx, limit)
	}
}

func (s *Selector) selectRandom(ctx context.Context, limit int) ([]Question, error) {
	pool, err := s.source.FetchAllQuestions(ctx)
	if err != nil {
		return nil, &QuestionFetchError{Stage: StageAllQuestions, Err: err}
	}
	return s.shuffleWithLimit(s.usable(pool), limit), nil
}

func (s *Selector) selectByCategory(ctx context.Context, category string, limit int) ([]Question, error) {
	pool, err := s.source.FetchQuestionsByCategory(ctx, category, limit)
	if err != nil {
		return nil, &QuestionFetchError{Stage: StageCategoryQuestions, Err: err}
	}

	scoped := make([]Question, 0, len(pool))
	for _, q := range s.usable(pool) {
		if q.Category != category {
			s.log.WithFields(logrus.Fields{"question_id": q.ID, "category": q.Category}).
				Warn("dropping question outside requested category")
			continue
		}
		scoped = append(scoped, q)
	}
	return s.shuffleWithLimit(scoped, limit), nil
}

func (s *Selector) selectWrongAnswers(ctx context.Context, userID string, limit int) ([]Question, error) {
	if userID == "" {
		return []Question{}, nil
	}

	ids, err := s.source.FetchWrongAnswerQuestionIDs(ctx, userID, limit)
	if err != nil {
		return nil, &QuestionFetchError{Stage: StageWrongAnswerIDs, Err: err}
	}

	ids = distinct(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	if len(ids) == 0 {
		return []Question{}, nil
	}

	resolved, err := s.source.FetchQuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, &QuestionFetchError{Stage: StageResolveIDs, Err: err}
	}

	byID := make(map[string]Question, len(resolved))
	for _, q := range s.usable(resolved) {
		if _, dup := byID[q.ID]; !dup {
			byID[q.ID] = q
		}
	}

	questions := make([]Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// usable drops questions whose correct answer is not one of their options.
func (s *Selector) usable(pool []Question) []Question {
	out := make([]Question, 0, len(pool))
	for _, q := range pool {
		if !q.Valid() {
			s.log.WithField("question_id", q.ID).Warn("dropping malformed question")
			continue
		}
		out = append(out, q.clone())
	}
	return out
}

// shuffleWithLimit runs a Fisher-Yates shuffle on a copy and truncates it.
func (s *Selector) shuffleWithLimit(questions []Question, limit int) []Question {
	shuffled := make([]Question, len(questions))
	copy(shuffled, questions)

	s.mu.Lock()
	for i := len(shuffled) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	s.mu.Unlock()

	if limit <= 0 || limit > len(shuffled) {
		limit = len(shuffled)
	}
	return shuffled[:limit]
}

func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
