package engine

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// ClockOptions tune the session clock. Zero values mean a 1s tick and
// time.Now.
type ClockOptions struct {
	Tick time.Duration
	Now  func() time.Time
}

// Clock is the session countdown.
//
// The remaining time is anchored to a wall-clock deadline fixed at Start, so
// a stalled or delayed tick never extends the budget. Every tick recomputes
// the authoritative remaining seconds from the deadline, then republishes the
// value read by Remaining. Expiry fires onExpire exactly once from the tick
// goroutine.
type Clock struct {
	budget   time.Duration
	tick     time.Duration
	now      func() time.Time
	onExpire func()

	mu        sync.Mutex
	deadline  time.Time
	remaining int
	started   bool
	running   bool
	stop      chan struct{}
	done      chan struct{}

	published atomic.Int64
}

func NewClock(budget time.Duration, opts ClockOptions, onExpire func()) *Clock {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Clock{
		budget:   budget,
		tick:     opts.Tick,
		now:      opts.Now,
		onExpire: onExpire,
	}
	c.remaining = secondsCeil(budget)
	c.published.Store(int64(c.remaining))
	return c
}

// Start anchors the deadline and launches the tick goroutine. Calling Start
// more than once is a no-op.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return
	}
	c.started = true
	c.running = true
	c.deadline = c.now().Add(c.budget)
	c.stop = make(chan struct{})
	c.done = make(chan struct{})

	go c.loop(c.stop, c.done)
}

func (c *Clock) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if c.advance() {
				if c.onExpire != nil {
					c.onExpire()
				}
				return
			}
		}
	}
}

// advance recomputes the remaining seconds and reports whether the clock has
// just expired.
func (c *Clock) advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return false
	}

	c.remaining = secondsCeil(c.deadline.Sub(c.now()))
	c.published.Store(int64(c.remaining))

	if c.remaining == 0 {
		c.running = false
		return true
	}
	return false
}

// Stop cancels the tick goroutine and waits for it to exit. It is safe to call
// from onExpire and more than once.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stop)
	done := c.done
	c.mu.Unlock()

	<-done
}

// Expired checks the deadline directly, independent of tick delivery.
func (c *Clock) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return false
	}
	return !c.now().Before(c.deadline)
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// Remaining is the published countdown in whole seconds.
func (c *Clock) Remaining() int {
	return int(c.published.Load())
}

// Display formats the published countdown as MM:SS.
func (c *Clock) Display() string {
	return FormatCountdown(c.Remaining())
}

func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func secondsCeil(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
