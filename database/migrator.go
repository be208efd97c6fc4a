package database

import (
	"github.com/evandrarf/drivequiz-be/internal/entity"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.Question{},
		&entity.QuizResult{},
		&entity.AnswerLog{},
	)
	return err
}
