package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type State string

const (
	StateLoading  State = "loading"
	StateEmpty    State = "empty"
	StateError    State = "error"
	StateActive   State = "active"
	StateFinished State = "finished"
)

type OptionState string

const (
	OptionDefault   OptionState = "default"
	OptionSelected  OptionState = "selected"
	OptionCorrect   OptionState = "correct"
	OptionIncorrect OptionState = "incorrect"
)

const EmptyReviewMessage = "Nothing to review. You have no wrong answers yet, great job!"

var errNoQuestions = errors.New("no questions available")

type SessionConfig struct {
	// ID defaults to a random uuid.
	ID       string
	UserID   string
	Tier     Tier
	Mode     Mode
	Category string

	Selector   *Selector
	Gateway    *Gateway
	WakeLocker WakeLocker
	Clock      ClockOptions
	Log        *logrus.Logger
}

// Session is one timed attempt. Its question list is fixed by Load and never
// reordered; answer records only grow, one per confirmed question.
//
// User actions and the clock goroutine may race, so every transition runs
// under mu. Store calls happen outside the lock and their outcome is dropped
// once the session is closed.
type Session struct {
	id       string
	userID   string
	tier     Tier
	mode     Mode
	category string
	limits   TierConfig

	selector  *Selector
	gateway   *Gateway
	clockOpts ClockOptions
	now       func() time.Time
	log       *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	state        State
	loading      bool
	questions    []Question
	index        int
	selected     string
	confirmed    bool
	records      []AnswerRecord
	clock        *Clock
	wake         *WakeGuard
	fetchErr     error
	result       *Result
	finishReason FinishReason
	persistence  SaveOutcome
	saving       bool
	closed       bool
	lastActivity time.Time
}

type finalization struct {
	userID   string
	resultID string
	result   Result
	records  []AnswerRecord
	logOnly  bool
}

func NewSession(cfg SessionConfig) *Session {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Tier == "" {
		cfg.Tier = TierFree
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeNormal
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	now := cfg.Clock.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	log := cfg.Log.WithFields(logrus.Fields{
		"session_id": cfg.ID,
		"user_id":    cfg.UserID,
		"tier":       cfg.Tier,
		"mode":       cfg.Mode,
	})

	return &Session{
		id:           cfg.ID,
		userID:       cfg.UserID,
		tier:         cfg.Tier,
		mode:         cfg.Mode,
		category:     cfg.Category,
		limits:       ConfigFor(cfg.Tier),
		selector:     cfg.Selector,
		gateway:      cfg.Gateway,
		clockOpts:    cfg.Clock,
		now:          now,
		log:          log,
		ctx:          ctx,
		cancel:       cancel,
		state:        StateLoading,
		wake:         NewWakeGuard(cfg.WakeLocker, log),
		lastActivity: now(),
	}
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }
func (s *Session) Tier() Tier     { return s.tier }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Load fetches the question set. It is valid from Loading and, as an explicit
// retry, from Error.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.loading || (s.state != StateLoading && s.state != StateError) {
		s.mu.Unlock()
		return ErrNotRetryable
	}
	s.loading = true
	s.state = StateLoading
	s.fetchErr = nil
	s.touchLocked()
	s.mu.Unlock()

	questions, err := s.selector.Select(ctx, SelectRequest{
		Mode:     s.mode,
		Category: s.category,
		Tier:     s.tier,
		UserID:   s.userID,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if s.closed {
		return ErrSessionClosed
	}

	if err == nil && len(questions) == 0 && s.mode != ModeReview {
		err = &QuestionFetchError{Stage: stageFor(s.mode), Err: errNoQuestions}
	}
	if err != nil {
		s.state = StateError
		s.fetchErr = err
		s.wake.Release()
		s.log.WithError(err).Warn("question load failed")
		return err
	}

	if len(questions) == 0 {
		s.state = StateEmpty
		s.log.Info("no wrong answers to review")
		return nil
	}

	s.questions = questions
	s.index = 0
	s.selected = ""
	s.confirmed = false
	s.state = StateActive

	s.clock = NewClock(s.limits.TimeBudget, s.clockOpts, s.onClockExpired)
	s.clock.Start()
	s.wake.Acquire(s.ctx)

	s.log.WithField("questions", len(questions)).Info("session started")
	return nil
}

// Select marks an option for the current question without locking it in.
func (s *Session) Select(ctx context.Context, option string) error {
	s.mu.Lock()
	fin, err := s.selectLocked(option)
	s.mu.Unlock()

	s.persist(ctx, fin)
	return err
}

func (s *Session) selectLocked(option string) (*finalization, error) {
	if err := s.requireActiveLocked(); err != nil {
		return nil, err
	}
	if s.clock.Expired() {
		return s.finishLocked(FinishTimeUp), ErrTimeUp
	}
	if s.confirmed {
		return nil, ErrAnswerLocked
	}
	if !s.questions[s.index].HasOption(option) {
		return nil, ErrInvalidOption
	}
	s.selected = option
	return nil, nil
}

// Confirm locks in the selected option and records the answer. Confirming the
// last question finishes the session.
func (s *Session) Confirm(ctx context.Context) error {
	s.mu.Lock()
	fin, err := s.confirmLocked()
	s.mu.Unlock()

	s.persist(ctx, fin)
	return err
}

func (s *Session) confirmLocked() (*finalization, error) {
	if err := s.requireActiveLocked(); err != nil {
		return nil, err
	}
	if s.clock.Expired() {
		return s.finishLocked(FinishTimeUp), ErrTimeUp
	}
	if s.confirmed {
		return nil, ErrAnswerLocked
	}
	if s.selected == "" {
		return nil, ErrNoSelection
	}

	q := s.questions[s.index]
	s.records = append(s.records, AnswerRecord{
		QuestionID:    q.ID,
		QuestionText:  q.Text,
		UserAnswer:    s.selected,
		CorrectAnswer: q.CorrectAnswer,
		IsCorrect:     s.selected == q.CorrectAnswer,
		Category:      q.Category,
		Explanation:   q.Explanation,
	})
	s.confirmed = true

	if s.index == len(s.questions)-1 {
		return s.finishLocked(FinishCompleted), nil
	}
	return nil, nil
}

// Next advances past a confirmed question.
func (s *Session) Next(ctx context.Context) error {
	s.mu.Lock()
	fin, err := s.nextLocked()
	s.mu.Unlock()

	s.persist(ctx, fin)
	return err
}

func (s *Session) nextLocked() (*finalization, error) {
	if err := s.requireActiveLocked(); err != nil {
		return nil, err
	}
	if s.clock.Expired() {
		return s.finishLocked(FinishTimeUp), ErrTimeUp
	}
	if !s.confirmed {
		return nil, ErrNotConfirmed
	}
	s.index++
	s.selected = ""
	s.confirmed = false
	return nil, nil
}

// RetrySave reruns a failed persistence. A not-saved session retries both
// writes; a partially saved one only retries the answer log against the
// stored result id.
func (s *Session) RetrySave(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != StateFinished || s.saving || !s.persistence.Status.Retryable() {
		s.mu.Unlock()
		return ErrNothingToRetry
	}

	fin := &finalization{
		userID:  s.userID,
		result:  *s.result,
		records: append([]AnswerRecord(nil), s.records...),
	}
	if s.persistence.Status == PersistencePartial {
		fin.logOnly = true
		fin.resultID = s.persistence.ResultID
	}
	s.saving = true
	s.persistence = SaveOutcome{Status: PersistencePending, ResultID: fin.resultID}
	s.touchLocked()
	s.mu.Unlock()

	s.persist(ctx, fin)
	return nil
}

// Close tears the session down: the clock stops, the wake lock is released
// and any persistence still in flight is ignored when it returns.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	if s.clock != nil {
		s.clock.Stop()
	}
	s.wake.Release()
	s.cancel()
	s.log.Debug("session closed")
}

func (s *Session) onClockExpired() {
	s.mu.Lock()
	if s.closed || s.state != StateActive {
		s.mu.Unlock()
		return
	}
	s.log.Info("time budget exhausted")
	fin := s.finishLocked(FinishTimeUp)
	s.mu.Unlock()

	s.persist(s.ctx, fin)
}

func (s *Session) requireActiveLocked() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateActive {
		return ErrNotActive
	}
	s.touchLocked()
	return nil
}

// finishLocked moves Active to Finished and computes the verdict from the
// in-memory records. The verdict never depends on the persistence outcome.
func (s *Session) finishLocked(reason FinishReason) *finalization {
	s.state = StateFinished
	s.finishReason = reason
	s.clock.Stop()
	s.wake.Release()

	result := Score(s.records, s.tier, s.now())
	s.result = &result
	s.saving = true
	s.persistence = SaveOutcome{Status: PersistencePending}

	s.log.WithFields(logrus.Fields{
		"reason":  reason,
		"score":   result.ScorePercentage,
		"correct": result.CorrectCount,
		"passed":  result.HasPassed,
	}).Info("session finished")

	return &finalization{
		userID:  s.userID,
		result:  result,
		records: append([]AnswerRecord(nil), s.records...),
	}
}

func (s *Session) persist(ctx context.Context, fin *finalization) {
	if fin == nil {
		return
	}

	var outcome SaveOutcome
	switch {
	case s.gateway == nil:
		outcome = SaveOutcome{Status: PersistenceSkipped, Err: ErrNoAuthenticatedUser}
	case fin.logOnly:
		outcome = s.gateway.SaveAnswerLog(ctx, fin.userID, fin.resultID, fin.records)
	default:
		outcome = s.gateway.Save(ctx, fin.userID, fin.result, fin.records)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.saving = false
	if s.closed {
		s.log.WithField("status", outcome.Status).Debug("dropping persistence outcome for closed session")
		return
	}
	s.persistence = outcome
}

func (s *Session) touchLocked() {
	s.lastActivity = s.now()
}

func stageFor(mode Mode) FetchStage {
	switch mode {
	case ModeCategory:
		return StageCategoryQuestions
	case ModeReview:
		return StageResolveIDs
	default:
		return StageAllQuestions
	}
}
