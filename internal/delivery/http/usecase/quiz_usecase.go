package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/evandrarf/drivequiz-be/internal/delivery/http/entity"
	"github.com/evandrarf/drivequiz-be/internal/delivery/http/repository"
	"github.com/evandrarf/drivequiz-be/internal/engine"
	"github.com/evandrarf/drivequiz-be/internal/pkg/mapper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrResultNotFound  = errors.New("result not found")
	ErrNotFinished     = errors.New("session is not finished yet")
	ErrUnauthenticated = errors.New("authentication required")
	ErrTooManySessions = errors.New("too many active sessions")
)

const (
	defaultSessionTTL   = 2 * time.Hour
	defaultJanitorEvery = time.Minute
	defaultMaxSessions  = 10000
)

type QuizUsecase interface {
	StartSession(ctx context.Context, identity entity.Identity, req entity.StartSessionRequest) (*entity.SessionView, error)
	GetSession(ctx context.Context, identity entity.Identity, sessionID string) (*entity.SessionView, error)
	Select(ctx context.Context, identity entity.Identity, sessionID string, option string) (*entity.SessionView, error)
	Confirm(ctx context.Context, identity entity.Identity, sessionID string) (*entity.SessionView, error)
	Next(ctx context.Context, identity entity.Identity, sessionID string) (*entity.SessionView, error)
	RetryLoad(ctx context.Context, identity entity.Identity, sessionID string) (*entity.SessionView, error)
	RetrySave(ctx context.Context, identity entity.Identity, sessionID string) (*entity.SessionView, error)
	CloseSession(ctx context.Context, identity entity.Identity, sessionID string) error
	GenerateSessionReport(ctx context.Context, identity entity.Identity, sessionID string) (*entity.SessionReport, error)
	GetResults(ctx context.Context, identity entity.Identity, limit int) ([]entity.ResultSummary, error)
	GetResultAnswers(ctx context.Context, identity entity.Identity, resultID string) ([]entity.AnswerLogItem, error)
	GetCategories(ctx context.Context) ([]string, error)
	RunJanitor(ctx context.Context)
	Shutdown()
}

// TextGenerator produces the study recommendations in the session report.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type QuizConfig struct {
	DB         *gorm.DB
	Repository repository.QuizRepository
	Source     engine.QuestionSource
	Store      engine.ResultStore
	Trigger    engine.AchievementTrigger
	WakeLocker engine.WakeLocker
	LLM        TextGenerator
	Config     *viper.Viper
	Log        *logrus.Logger

	// Clock overrides the session clock, mostly for tests.
	Clock engine.ClockOptions
}

type quizUsecase struct {
	cfg      QuizConfig
	selector *engine.Selector
	gateway  *engine.Gateway
	now      func() time.Time

	sessionTTL      time.Duration
	janitorInterval time.Duration
	maxSessions     int

	mu       sync.RWMutex
	sessions map[string]*engine.Session
}

func NewQuizUsecase(cfg QuizConfig) QuizUsecase {
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	if cfg.Config == nil {
		cfg.Config = viper.New()
	}
	now := cfg.Clock.Now
	if now == nil {
		now = time.Now
	}

	u := &quizUsecase{
		cfg:             cfg,
		selector:        engine.NewSelector(cfg.Source, cfg.Log),
		gateway:         engine.NewGateway(cfg.Store, cfg.Trigger, cfg.Log),
		now:             now,
		sessionTTL:      cfg.Config.GetDuration("quiz.session_ttl"),
		janitorInterval: cfg.Config.GetDuration("quiz.janitor_interval"),
		maxSessions:     cfg.Config.GetInt("quiz.max_sessions"),
		sessions:        make(map[string]*engine.Session),
	}
	if u.sessionTTL <= 0 {
		u.sessionTTL = defaultSessionTTL
	}
	if u.janitorInterval <= 0 {
		u.janitorInterval = defaultJanitorEvery
	}
	if u.maxSessions <= 0 {
		u.maxSessions = defaultMaxSessions
	}
	return u
}

func (u *quizUsecase) StartSession(ctx context.Context, identity entity.Identity, req entity.StartSessionRequest) (*entity.SessionView, error) {
	mode, err := engine.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	tier := identity.Tier
	if !identity.Authenticated() || tier == "" {
		tier = engine.TierFree
	}

	category := ""
	if mode == engine.ModeCategory {
		category = req.Category
	}

	session := engine.NewSession(engine.SessionConfig{
		UserID:     identity.UserID,
		Tier:       tier,
		Mode:       mode,
		Category:   category,
		Selector:   u.selector,
		Gateway:    u.gateway,
		WakeLocker: u.cfg.WakeLocker,
		Clock:      u.cfg.Clock,
		Log:        u.cfg.Log,
	})

	u.mu.Lock()
	if len(u.sessions) >= u.maxSessions {
		u.mu.Unlock()
		session.Close()
		return nil, ErrTooManySessions
	}
	u.sessions[session.ID()] = session
	u.mu.Unlock()

	loadErr := session.Load(ctx)
	return mapper.ToSessionView(session.View()), loadErr
}

func (u *quizUsecase) GetSession(_ context.Context, identity entity.Identity, sessionID string) (*entity.SessionView, error) {
	session, err := u.lookup(identity, sessionID)
	if err != nil {
		return nil, err
	}
	return mapper.ToSessionView(session.View()), nil
}

func (u *quizUsecase) Select(ctx context.Context, identity entity.Identity, sessionID string, option string) (*entity.SessionView, error) {
	return u.apply(identity, sessionID, func(s *engine.Session) error {
		return s.Select(ctx, option)
	})
}

func (u *quizUsecase) Confirm(ctx context.Context, identity entity.Identity, sessionID string) (*entity.SessionView, error) {
	return u.apply(identity, sessionID, func(s *engine.Session) error {
		return s.Confirm(ctx)
	})
}

func (u *quizUsecase) Next(ctx context.Context, identity entity.Identity, sessionID string) (*entity.SessionView, error) {
	return u.apply(identity, sessionID, func(s *engine.Session) error {
		return s.Next(ctx)
	})
}

func (u *quizUsecase) RetryLoad(ctx context.Context, identity entity.Identity, sessionID string) (*entity.SessionView, error) {
	return u.apply(identity, sessionID, func(s *engine.Session) error {
		return s.Load(ctx)
	})
}

func (u *quizUsecase) RetrySave(ctx context.Context, identity entity.Identity, sessionID string) (*entity.SessionView, error) {
	return u.apply(identity, sessionID, func(s *engine.Session) error {
		return s.RetrySave(ctx)
	})
}

func (u *quizUsecase) CloseSession(_ context.Context, identity entity.Identity, sessionID string) error {
	session, err := u.lookup(identity, sessionID)
	if err != nil {
		return err
	}
	u.remove(sessionID)
	session.Close()
	return nil
}

func (u *quizUsecase) GetResults(ctx context.Context, identity entity.Identity, limit int) ([]entity.ResultSummary, error) {
	if !identity.Authenticated() {
		return nil, ErrUnauthenticated
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	results, err := u.cfg.Repository.FindResultsByUserID(u.cfg.DB.WithContext(ctx), identity.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get results: %w", err)
	}
	return mapper.ToResultSummaries(results), nil
}

func (u *quizUsecase) GetResultAnswers(ctx context.Context, identity entity.Identity, resultID string) ([]entity.AnswerLogItem, error) {
	if !identity.Authenticated() {
		return nil, ErrUnauthenticated
	}

	db := u.cfg.DB.WithContext(ctx)
	result, err := u.cfg.Repository.FindResultByResultID(db, resultID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && result.UserID != identity.UserID) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	logs, err := u.cfg.Repository.FindAnswerLogsByResultID(db, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to get answer log: %w", err)
	}
	return mapper.ToAnswerLogItems(logs), nil
}

func (u *quizUsecase) GetCategories(ctx context.Context) ([]string, error) {
	categories, err := u.cfg.Repository.FindCategories(u.cfg.DB.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// RunJanitor closes sessions idle for longer than quiz.session_ttl until ctx
// is done.
func (u *quizUsecase) RunJanitor(ctx context.Context) {
	ticker := time.NewTicker(u.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			u.sweep()
		}
	}
}

func (u *quizUsecase) sweep() int {
	cutoff := u.now().Add(-u.sessionTTL)

	var idle []*engine.Session
	u.mu.Lock()
	for id, s := range u.sessions {
		if s.LastActivity().Before(cutoff) {
			idle = append(idle, s)
			delete(u.sessions, id)
		}
	}
	u.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		u.cfg.Log.WithField("closed", len(idle)).Info("idle sessions closed")
	}
	return len(idle)
}

// Shutdown closes every open session.
func (u *quizUsecase) Shutdown() {
	u.mu.Lock()
	sessions := u.sessions
	u.sessions = make(map[string]*engine.Session)
	u.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (u *quizUsecase) apply(identity entity.Identity, sessionID string, op func(*engine.Session) error) (*entity.SessionView, error) {
	session, err := u.lookup(identity, sessionID)
	if err != nil {
		return nil, err
	}
	opErr := op(session)
	return mapper.ToSessionView(session.View()), opErr
}

// lookup hides sessions owned by someone else behind ErrSessionNotFound.
func (u *quizUsecase) lookup(identity entity.Identity, sessionID string) (*engine.Session, error) {
	u.mu.RLock()
	session, ok := u.sessions[sessionID]
	u.mu.RUnlock()

	if !ok || session.UserID() != identity.UserID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (u *quizUsecase) remove(sessionID string) {
	u.mu.Lock()
	delete(u.sessions, sessionID)
	u.mu.Unlock()
}
