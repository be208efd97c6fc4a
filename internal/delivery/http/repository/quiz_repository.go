package repository

import (
	"github.com/evandrarf/drivequiz-be/internal/entity"
	"gorm.io/gorm"
)

type (
	QuizRepository interface {
		// Question bank operations
		FindAllQuestions(db *gorm.DB) ([]entity.Question, error)
		FindRandomQuestionsByCategory(db *gorm.DB, category string, limit int) ([]entity.Question, error)
		FindQuestionsByIDs(db *gorm.DB, questionIDs []string) ([]entity.Question, error)
		FindCategories(db *gorm.DB) ([]string, error)

		// Result operations
		CreateResult(db *gorm.DB, result *entity.QuizResult) error
		FindResultByResultID(db *gorm.DB, resultID string) (*entity.QuizResult, error)
		FindResultsByUserID(db *gorm.DB, userID string, limit int) ([]entity.QuizResult, error)

		// Answer log operations
		CreateAnswerLogs(db *gorm.DB, logs []entity.AnswerLog) error
		FindAnswerLogsByResultID(db *gorm.DB, resultID string) ([]entity.AnswerLog, error)
		FindWrongAnswerQuestionIDs(db *gorm.DB, userID string, limit int) ([]string, error)

		// Progression
		EvaluateAchievements(db *gorm.DB, userID string) error
	}

	quizRepository struct {
		db *gorm.DB
	}
)

func NewQuizRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

// Question bank operations
func (r *quizRepository) FindAllQuestions(db *gorm.DB) ([]entity.Question, error) {
	if db == nil {
		db = r.db
	}
	var questions []entity.Question
	err := db.Order("id ASC").Find(&questions).Error
	return questions, err
}

func (r *quizRepository) FindRandomQuestionsByCategory(db *gorm.DB, category string, limit int) ([]entity.Question, error) {
	if db == nil {
		db = r.db
	}
	var questions []entity.Question
	query := db.Where("category = ?", category).Order("RANDOM()")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&questions).Error
	return questions, err
}

func (r *quizRepository) FindQuestionsByIDs(db *gorm.DB, questionIDs []string) ([]entity.Question, error) {
	if db == nil {
		db = r.db
	}
	var questions []entity.Question
	if len(questionIDs) == 0 {
		return questions, nil
	}
	err := db.Where("question_id IN ?", questionIDs).Find(&questions).Error
	return questions, err
}

func (r *quizRepository) FindCategories(db *gorm.DB) ([]string, error) {
	if db == nil {
		db = r.db
	}
	var categories []string
	err := db.Model(&entity.Question{}).Distinct().Order("category ASC").Pluck("category", &categories).Error
	return categories, err
}

// Result operations
func (r *quizRepository) CreateResult(db *gorm.DB, result *entity.QuizResult) error {
	if db == nil {
		db = r.db
	}
	return db.Create(result).Error
}

func (r *quizRepository) FindResultByResultID(db *gorm.DB, resultID string) (*entity.QuizResult, error) {
	if db == nil {
		db = r.db
	}
	var result entity.QuizResult
	err := db.Where("result_id = ?", resultID).First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *quizRepository) FindResultsByUserID(db *gorm.DB, userID string, limit int) ([]entity.QuizResult, error) {
	if db == nil {
		db = r.db
	}
	var results []entity.QuizResult
	query := db.Where("user_id = ?", userID).Order("completed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&results).Error
	return results, err
}

// Answer log operations
func (r *quizRepository) CreateAnswerLogs(db *gorm.DB, logs []entity.AnswerLog) error {
	if db == nil {
		db = r.db
	}
	if len(logs) == 0 {
		return nil
	}
	return db.Create(&logs).Error
}

func (r *quizRepository) FindAnswerLogsByResultID(db *gorm.DB, resultID string) ([]entity.AnswerLog, error) {
	if db == nil {
		db = r.db
	}
	var logs []entity.AnswerLog
	err := db.Where("result_id = ?", resultID).Order("position ASC").Find(&logs).Error
	return logs, err
}

// FindWrongAnswerQuestionIDs returns distinct ids the user has answered
// incorrectly, most recently missed first.
func (r *quizRepository) FindWrongAnswerQuestionIDs(db *gorm.DB, userID string, limit int) ([]string, error) {
	if db == nil {
		db = r.db
	}
	var ids []string
	query := db.Model(&entity.AnswerLog{}).
		Where("user_id = ? AND is_correct = ?", userID, false).
		Group("question_id").
		Order("MAX(created_at) DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Pluck("question_id", &ids).Error
	return ids, err
}

// EvaluateAchievements calls the stored procedure owned by the progression
// system. It is only available on postgres.
func (r *quizRepository) EvaluateAchievements(db *gorm.DB, userID string) error {
	if db == nil {
		db = r.db
	}
	return db.Exec("SELECT evaluate_achievements(?)", userID).Error
}
