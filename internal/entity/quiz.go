package entity

import (
	"time"

	"gorm.io/gorm"
)

// Question - Soal ujian teori mengemudi
type Question struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	QuestionID    string         `gorm:"uniqueIndex;size:100;not null" json:"question_id"` // e.g. "rs-001"
	Text          string         `gorm:"type:text;not null" json:"text"`
	Options       string         `gorm:"type:text;not null" json:"options"`       // JSON array: ["Stop","Yield","Go"]
	CorrectAnswer string         `gorm:"size:255;not null" json:"correct_answer"` // must be one of Options
	Category      string         `gorm:"size:50;not null;index" json:"category"`  // road_signs, right_of_way, ...
	Explanation   string         `gorm:"type:text" json:"explanation"`            // shown to premium after confirm
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// QuizResult - Ringkasan satu sesi yang selesai
type QuizResult struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	ResultID        string    `gorm:"uniqueIndex;size:36;not null" json:"result_id"` // uuid
	UserID          string    `gorm:"size:100;not null;index" json:"user_id"`
	ScorePercentage int       `gorm:"not null" json:"score_percentage"`
	CorrectCount    int       `gorm:"not null" json:"correct_count"`
	TotalQuestions  int       `gorm:"not null" json:"total_questions"` // tier question count, not answered count
	HasPassed       bool      `gorm:"not null" json:"has_passed"`
	Tier            string    `gorm:"size:20;not null" json:"tier"`
	CompletedAt     time.Time `gorm:"not null;index" json:"completed_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}

// AnswerLog - Jawaban per soal yang sudah dikonfirmasi
type AnswerLog struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	ResultID      string    `gorm:"size:36;not null;index" json:"result_id"` // FK ke quiz_results
	UserID        string    `gorm:"size:100;not null;index:idx_answer_logs_user_correct" json:"user_id"`
	QuestionID    string    `gorm:"size:100;not null;index" json:"question_id"`
	Position      int       `gorm:"not null" json:"position"` // urutan dalam sesi
	QuestionText  string    `gorm:"type:text;not null" json:"question_text"`
	UserAnswer    string    `gorm:"size:255;not null" json:"user_answer"`
	CorrectAnswer string    `gorm:"size:255;not null" json:"correct_answer"`
	IsCorrect     bool      `gorm:"not null;index:idx_answer_logs_user_correct" json:"is_correct"`
	Category      string    `gorm:"size:50" json:"category"`
	Explanation   string    `gorm:"type:text" json:"explanation"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (AnswerLog) TableName() string {
	return "answer_logs"
}
