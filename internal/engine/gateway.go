package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// ResultRecord is the validated aggregate payload handed to the store.
type ResultRecord struct {
	UserID          string    `validate:"required"`
	ScorePercentage int       `validate:"gte=0,lte=100"`
	CorrectCount    int       `validate:"gte=0,ltefield=TotalQuestions"`
	TotalQuestions  int       `validate:"gt=0"`
	HasPassed       bool
	Tier            string    `validate:"oneof=free premium"`
	CompletedAt     time.Time `validate:"required"`
}

type AnswerLogEntry struct {
	QuestionID    string `validate:"required"`
	QuestionText  string `validate:"required"`
	UserAnswer    string `validate:"required"`
	CorrectAnswer string `validate:"required"`
	IsCorrect     bool
	Category      string
	Explanation   string
}

// AnswerLogBatch is the per-question log tagged with its result id.
type AnswerLogBatch struct {
	ResultID string           `validate:"required"`
	UserID   string           `validate:"required"`
	Entries  []AnswerLogEntry `validate:"dive"`
}

// ResultStore is the write side of the storage collaborator. The two writes
// are independent; there is no transaction spanning them.
type ResultStore interface {
	PersistResult(ctx context.Context, record ResultRecord) (string, error)
	PersistAnswerLog(ctx context.Context, batch AnswerLogBatch) error
}

type PersistenceStatus string

const (
	PersistencePending  PersistenceStatus = "pending"
	PersistenceSaved    PersistenceStatus = "saved"
	PersistencePartial  PersistenceStatus = "partially_saved"
	PersistenceNotSaved PersistenceStatus = "not_saved"
	PersistenceSkipped  PersistenceStatus = "skipped"
)

// Banner is the user-visible text for a persistence status.
func (s PersistenceStatus) Banner() string {
	switch s {
	case PersistenceSaved:
		return "Results saved."
	case PersistencePartial:
		return "Score saved, but the per-question details of this session could not be saved."
	case PersistenceNotSaved:
		return "Results not saved. You can try saving again."
	case PersistenceSkipped:
		return "Results not saved. Sign in to keep track of your progress."
	case PersistencePending:
		return "Saving results..."
	default:
		return ""
	}
}

func (s PersistenceStatus) Retryable() bool {
	return s == PersistenceNotSaved || s == PersistencePartial
}

type SaveOutcome struct {
	Status   PersistenceStatus
	ResultID string
	Err      error
}

// Gateway writes a finished session to the store and fires the achievement
// trigger after a successful aggregate write.
type Gateway struct {
	store    ResultStore
	trigger  AchievementTrigger
	validate *validator.Validate
	log      *logrus.Logger
}

func NewGateway(store ResultStore, trigger AchievementTrigger, log *logrus.Logger) *Gateway {
	if trigger == nil {
		trigger = noopTrigger{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gateway{
		store:    store,
		trigger:  trigger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// Save writes the aggregate result, then the answer log.
func (g *Gateway) Save(ctx context.Context, userID string, result Result, records []AnswerRecord) SaveOutcome {
	if userID == "" {
		return SaveOutcome{Status: PersistenceSkipped, Err: ErrNoAuthenticatedUser}
	}

	entry := g.log.WithFields(logrus.Fields{"user_id": userID, "score": result.ScorePercentage})

	record := ResultRecord{
		UserID:          userID,
		ScorePercentage: result.ScorePercentage,
		CorrectCount:    result.CorrectCount,
		TotalQuestions:  result.TotalQuestions,
		HasPassed:       result.HasPassed,
		Tier:            string(result.Tier),
		CompletedAt:     result.CompletedAt,
	}

	resultID, err := g.persistResult(ctx, record)
	if err != nil {
		entry.WithError(err).Error("failed to persist result")
		return SaveOutcome{Status: PersistenceNotSaved, Err: &PersistenceError{Err: err}}
	}

	g.trigger.Trigger(userID)

	outcome := g.SaveAnswerLog(ctx, userID, resultID, records)
	if outcome.Status == PersistenceSaved {
		entry.WithField("result_id", resultID).Info("session results saved")
	}
	return outcome
}

// SaveAnswerLog writes the answer log for an already stored result.
func (g *Gateway) SaveAnswerLog(ctx context.Context, userID, resultID string, records []AnswerRecord) SaveOutcome {
	batch := AnswerLogBatch{
		ResultID: resultID,
		UserID:   userID,
		Entries:  make([]AnswerLogEntry, 0, len(records)),
	}
	for _, r := range records {
		batch.Entries = append(batch.Entries, AnswerLogEntry{
			QuestionID:    r.QuestionID,
			QuestionText:  r.QuestionText,
			UserAnswer:    r.UserAnswer,
			CorrectAnswer: r.CorrectAnswer,
			IsCorrect:     r.IsCorrect,
			Category:      r.Category,
			Explanation:   r.Explanation,
		})
	}

	if err := g.persistAnswerLog(ctx, batch); err != nil {
		g.log.WithError(err).WithField("result_id", resultID).Error("failed to persist answer log")
		return SaveOutcome{
			Status:   PersistencePartial,
			ResultID: resultID,
			Err:      &PartialPersistenceError{ResultID: resultID, Err: err},
		}
	}
	return SaveOutcome{Status: PersistenceSaved, ResultID: resultID}
}

func (g *Gateway) persistResult(ctx context.Context, record ResultRecord) (string, error) {
	if err := g.validate.Struct(record); err != nil {
		return "", fmt.Errorf("invalid result payload: %w", err)
	}
	id, err := g.store.PersistResult(ctx, record)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", errors.New("store returned an empty result id")
	}
	return id, nil
}

func (g *Gateway) persistAnswerLog(ctx context.Context, batch AnswerLogBatch) error {
	if len(batch.Entries) == 0 {
		return nil
	}
	if err := g.validate.Struct(batch); err != nil {
		return fmt.Errorf("invalid answer log payload: %w", err)
	}
	return g.store.PersistAnswerLog(ctx, batch)
}
