package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/evandrarf/drivequiz-be/internal/engine"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

const (
	TypeEvaluateAchievements = "achievements:evaluate"

	enqueueTimeout = 5 * time.Second
)

var ErrEmptyUserID = errors.New("achievement payload has no user id")

// JobManager runs achievement evaluation out of process through a redis
// backed queue. It satisfies engine.AchievementTrigger.
type JobManager struct {
	client  *asynq.Client
	server  *asynq.Server
	mux     *asynq.ServeMux
	log     *logrus.Logger
	timeout time.Duration

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

type AchievementPayload struct {
	UserID string `json:"user_id"`
}

var _ engine.AchievementTrigger = (*JobManager)(nil)

func NewJobManager(redisURL string, concurrency int, timeout time.Duration, log *logrus.Logger) (*JobManager, error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if concurrency <= 0 {
		concurrency = 5
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"default": 1,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.WithError(err).WithField("type", task.Type()).Error("job failed")
		}),
		Logger: &AsynqLogger{Log: log},
	})

	return &JobManager{
		client:  asynq.NewClient(redisOpt),
		server:  server,
		mux:     asynq.NewServeMux(),
		log:     log,
		timeout: timeout,
	}, nil
}

func (jm *JobManager) RegisterHandlers(evaluator engine.AchievementEvaluator) {
	jm.mux.HandleFunc(TypeEvaluateAchievements, NewEvaluateAchievementsHandler(evaluator, jm.log))
}

// Start runs the worker in the background.
func (jm *JobManager) Start() error {
	jm.log.Info("starting job queue worker")
	return jm.server.Start(jm.mux)
}

func (jm *JobManager) Stop() {
	jm.log.Info("stopping job queue")
	jm.Drain()
	jm.server.Stop()
	jm.server.Shutdown()
	if err := jm.client.Close(); err != nil {
		jm.log.WithError(err).Warn("failed to close job queue client")
	}
}

// Drain refuses further triggers and waits for queued enqueues to finish.
func (jm *JobManager) Drain() {
	jm.mu.Lock()
	jm.closed = true
	jm.mu.Unlock()

	jm.pending.Wait()
}

// Trigger queues an achievement evaluation on a background goroutine, so a
// slow or unreachable redis never holds up the caller. Failures are logged
// only; the result is already saved by the time this runs.
func (jm *JobManager) Trigger(userID string) {
	task, err := NewEvaluateAchievementsTask(userID)
	if err != nil {
		jm.log.WithError(err).Warn("achievement evaluation not queued")
		return
	}

	jm.mu.Lock()
	if jm.closed {
		jm.mu.Unlock()
		jm.log.WithField("user_id", userID).Warn("achievement evaluation dropped, job queue stopping")
		return
	}
	jm.pending.Add(1)
	jm.mu.Unlock()

	go func() {
		defer jm.pending.Done()
		jm.enqueue(task, userID)
	}()
}

func (jm *JobManager) enqueue(task *asynq.Task, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()

	info, err := jm.client.EnqueueContext(ctx, task,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
		asynq.Timeout(jm.timeout),
	)
	if err != nil {
		jm.log.WithError(err).WithField("user_id", userID).Warn("failed to enqueue achievement evaluation")
		return
	}

	jm.log.WithFields(logrus.Fields{"id": info.ID, "user_id": userID}).Debug("queued achievement evaluation")
}

func NewEvaluateAchievementsTask(userID string) (*asynq.Task, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	payload, err := json.Marshal(AchievementPayload{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal achievement payload: %w", err)
	}
	return asynq.NewTask(TypeEvaluateAchievements, payload), nil
}

func NewEvaluateAchievementsHandler(evaluator engine.AchievementEvaluator, log *logrus.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var payload AchievementPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal achievement payload: %w: %w", err, asynq.SkipRetry)
		}
		if payload.UserID == "" {
			return fmt.Errorf("%w: %w", ErrEmptyUserID, asynq.SkipRetry)
		}

		if err := evaluator.EvaluateAchievements(ctx, payload.UserID); err != nil {
			return fmt.Errorf("failed to evaluate achievements for %s: %w", payload.UserID, err)
		}

		log.WithField("user_id", payload.UserID).Debug("achievements evaluated")
		return nil
	}
}

// AsynqLogger forwards queue logs to logrus.
type AsynqLogger struct {
	Log *logrus.Logger
}

func (l *AsynqLogger) Debug(args ...interface{}) {
	l.Log.Debug(fmt.Sprint(args...))
}

func (l *AsynqLogger) Info(args ...interface{}) {
	l.Log.Info(fmt.Sprint(args...))
}

func (l *AsynqLogger) Warn(args ...interface{}) {
	l.Log.Warn(fmt.Sprint(args...))
}

func (l *AsynqLogger) Error(args ...interface{}) {
	l.Log.Error(fmt.Sprint(args...))
}

func (l *AsynqLogger) Fatal(args ...interface{}) {
	l.Log.Error(fmt.Sprint(args...))
}
