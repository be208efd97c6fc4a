package engine

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AchievementTrigger dispatches a progression evaluation without waiting for
// it. Implementations must not block and have no error channel back into the
// session.
type AchievementTrigger interface {
	Trigger(userID string)
}

// AchievementEvaluator is the external progression system.
type AchievementEvaluator interface {
	EvaluateAchievements(ctx context.Context, userID string) error
}

// AsyncTrigger runs each evaluation on a detached goroutine bounded by a
// timeout. Wait lets the host drain in-flight evaluations on shutdown.
type AsyncTrigger struct {
	evaluator AchievementEvaluator
	timeout   time.Duration
	log       *logrus.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewAsyncTrigger(evaluator AchievementEvaluator, timeout time.Duration, log *logrus.Logger) *AsyncTrigger {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AsyncTrigger{evaluator: evaluator, timeout: timeout, log: log}
}

func (t *AsyncTrigger) Trigger(userID string) {
	if t.evaluator == nil || userID == "" {
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.log.WithField("user_id", userID).Warn("achievement evaluation dropped, trigger closed")
		return
	}
	t.wg.Add(1)
	t.mu.Unlock()

	go func() {
		defer t.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				t.log.WithField("user_id", userID).Errorf("achievement evaluation panicked: %v", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()

		if err := t.evaluator.EvaluateAchievements(ctx, userID); err != nil {
			t.log.WithError(err).WithField("user_id", userID).Warn("achievement evaluation failed")
		}
	}()
}

func (t *AsyncTrigger) Wait() {
	t.wg.Wait()
}

// Close refuses further triggers and waits for the ones in flight.
func (t *AsyncTrigger) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.wg.Wait()
}

type noopTrigger struct{}

func (noopTrigger) Trigger(string) {}
