package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

var ErrWakeUnsupported = errors.New("screen wake is not supported")

// WakeLocker acquires a display-wake resource on the hosting platform.
type WakeLocker interface {
	Acquire(ctx context.Context) (WakeLock, error)
}

type WakeLock interface {
	Release() error
}

// WakeGuard holds at most one wake lock for the lifetime of a session.
// Acquisition is attempted once; failures are logged at debug level and
// otherwise ignored.
type WakeGuard struct {
	locker WakeLocker
	log    logrus.FieldLogger

	mu       sync.Mutex
	lock     WakeLock
	attempts int
}

func NewWakeGuard(locker WakeLocker, log logrus.FieldLogger) *WakeGuard {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &WakeGuard{locker: locker, log: log}
}

func (g *WakeGuard) Acquire(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.attempts > 0 {
		return
	}
	g.attempts++

	if g.locker == nil {
		return
	}
	lock, err := g.locker.Acquire(ctx)
	if err != nil {
		g.log.WithError(err).Debug("screen wake not acquired")
		return
	}
	g.lock = lock
}

func (g *WakeGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.lock == nil {
		return
	}
	if err := g.lock.Release(); err != nil {
		g.log.WithError(err).Debug("screen wake release failed")
	}
	g.lock = nil
}

func (g *WakeGuard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lock != nil
}

// LeaseWakeLocker grants a wake lease that the client mirrors onto its own
// screen wake lock while the session view reports it as held.
type LeaseWakeLocker struct{}

func (LeaseWakeLocker) Acquire(context.Context) (WakeLock, error) {
	return lease{}, nil
}

type lease struct{}

func (lease) Release() error {
	return nil
}
