package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNotActive           = errors.New("session is not active")
	ErrNoSelection         = errors.New("no option selected")
	ErrInvalidOption       = errors.New("option does not belong to the current question")
	ErrAnswerLocked        = errors.New("answer already confirmed for this question")
	ErrNotConfirmed        = errors.New("current question is not confirmed yet")
	ErrTimeUp              = errors.New("time is up")
	ErrSessionClosed       = errors.New("session is closed")
	ErrNotRetryable        = errors.New("session cannot be reloaded in its current state")
	ErrNothingToRetry      = errors.New("no failed persistence to retry")
	ErrNoAuthenticatedUser = errors.New("no authenticated user, results not saved")
	ErrInvalidMode         = errors.New("invalid mode")
)

// FetchStage names the selector step that failed.
type FetchStage string

const (
	StageAllQuestions      FetchStage = "all_questions"
	StageCategoryQuestions FetchStage = "category_questions"
	StageWrongAnswerIDs    FetchStage = "wrong_answer_ids"
	StageResolveIDs        FetchStage = "resolve_ids"
)

// QuestionFetchError is recoverable: the session stays in Error until an
// explicit retry.
type QuestionFetchError struct {
	Stage FetchStage
	Err   error
}

func (e *QuestionFetchError) Error() string {
	return fmt.Sprintf("failed to fetch questions (%s): %v", e.Stage, e.Err)
}

func (e *QuestionFetchError) Unwrap() error {
	return e.Err
}

// PersistenceError means the aggregate result was not written. The answer
// log is never attempted in that case.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("results not saved: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// PartialPersistenceError means the aggregate result was written but the
// per-question log was not.
type PartialPersistenceError struct {
	ResultID string
	Err      error
}

func (e *PartialPersistenceError) Error() string {
	return fmt.Sprintf("results partially saved (result %s): %v", e.ResultID, e.Err)
}

func (e *PartialPersistenceError) Unwrap() error {
	return e.Err
}

func IsQuestionFetchError(err error) bool {
	var fe *QuestionFetchError
	return errors.As(err, &fe)
}

func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

func IsPartialPersistenceError(err error) bool {
	var pe *PartialPersistenceError
	return errors.As(err, &pe)
}
