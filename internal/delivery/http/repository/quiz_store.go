package repository

import (
	"context"

	"github.com/evandrarf/drivequiz-be/internal/engine"
	"github.com/evandrarf/drivequiz-be/internal/entity"
	"github.com/evandrarf/drivequiz-be/internal/pkg/mapper"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// QuizStore adapts QuizRepository to the engine's storage collaborators.
type QuizStore struct {
	DB         *gorm.DB
	Repository QuizRepository
	Log        *logrus.Logger
}

var (
	_ engine.QuestionSource       = (*QuizStore)(nil)
	_ engine.ResultStore          = (*QuizStore)(nil)
	_ engine.AchievementEvaluator = (*QuizStore)(nil)
)

func NewQuizStore(db *gorm.DB, repo QuizRepository, log *logrus.Logger) *QuizStore {
	return &QuizStore{DB: db, Repository: repo, Log: log}
}

func (s *QuizStore) FetchAllQuestions(ctx context.Context) ([]engine.Question, error) {
	rows, err := s.Repository.FindAllQuestions(s.DB.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return s.toQuestions(rows), nil
}

func (s *QuizStore) FetchQuestionsByCategory(ctx context.Context, category string, limit int) ([]engine.Question, error) {
	rows, err := s.Repository.FindRandomQuestionsByCategory(s.DB.WithContext(ctx), category, limit)
	if err != nil {
		return nil, err
	}
	return s.toQuestions(rows), nil
}

func (s *QuizStore) FetchWrongAnswerQuestionIDs(ctx context.Context, userID string, limit int) ([]string, error) {
	return s.Repository.FindWrongAnswerQuestionIDs(s.DB.WithContext(ctx), userID, limit)
}

func (s *QuizStore) FetchQuestionsByIDs(ctx context.Context, ids []string) ([]engine.Question, error) {
	rows, err := s.Repository.FindQuestionsByIDs(s.DB.WithContext(ctx), ids)
	if err != nil {
		return nil, err
	}
	return s.toQuestions(rows), nil
}

func (s *QuizStore) PersistResult(ctx context.Context, record engine.ResultRecord) (string, error) {
	resultID := uuid.NewString()
	if err := s.Repository.CreateResult(s.DB.WithContext(ctx), mapper.ToQuizResult(resultID, record)); err != nil {
		return "", err
	}
	return resultID, nil
}

func (s *QuizStore) PersistAnswerLog(ctx context.Context, batch engine.AnswerLogBatch) error {
	return s.Repository.CreateAnswerLogs(s.DB.WithContext(ctx), mapper.ToAnswerLogs(batch))
}

func (s *QuizStore) EvaluateAchievements(ctx context.Context, userID string) error {
	return s.Repository.EvaluateAchievements(s.DB.WithContext(ctx), userID)
}

func (s *QuizStore) toQuestions(rows []entity.Question) []engine.Question {
	questions, skipped := mapper.ToEngineQuestions(rows)
	if skipped > 0 && s.Log != nil {
		s.Log.WithField("skipped", skipped).Warn("question rows with unreadable options skipped")
	}
	return questions
}
