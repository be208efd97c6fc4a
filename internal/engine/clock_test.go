package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock_NewClockPublishesBudget(t *testing.T) {
	c := NewClock(600*time.Second, ClockOptions{}, nil)

	assert.Equal(t, 600, c.Remaining())
	assert.Equal(t, "10:00", c.Display())
	assert.False(t, c.Expired(), "unstarted clock never expires")
	assert.False(t, c.Running())
}

func TestClock_RemainingFollowsWallClock(t *testing.T) {
	now := newFakeNow()
	c := NewClock(600*time.Second, ClockOptions{Tick: time.Millisecond, Now: now.Now}, nil)
	c.Start()
	defer c.Stop()

	// Several seconds pass between two ticks, as when the host stalls.
	now.Advance(125 * time.Second)

	require.Eventually(t, func() bool { return c.Remaining() == 475 }, time.Second, time.Millisecond)
	assert.Equal(t, "07:55", c.Display())
}

func TestClock_ExpiresOnceAndStops(t *testing.T) {
	now := newFakeNow()
	var fired atomic.Int32
	c := NewClock(10*time.Second, ClockOptions{Tick: time.Millisecond, Now: now.Now}, func() {
		fired.Add(1)
	})
	c.Start()

	now.Advance(11 * time.Second)

	require.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, time.Millisecond)
	assert.False(t, c.Running())
	assert.True(t, c.Expired())
	assert.Equal(t, 0, c.Remaining())
	assert.Equal(t, "00:00", c.Display())

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(1), fired.Load())

	c.Stop()
}

func TestClock_StopPreventsExpiry(t *testing.T) {
	now := newFakeNow()
	var fired atomic.Int32
	c := NewClock(10*time.Second, ClockOptions{Tick: time.Millisecond, Now: now.Now}, func() {
		fired.Add(1)
	})
	c.Start()
	c.Stop()
	c.Stop()

	now.Advance(time.Minute)
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, int32(0), fired.Load())
	assert.False(t, c.Running())
}

func TestClock_ExpiredChecksDeadlineWithoutTick(t *testing.T) {
	now := newFakeNow()
	c := NewClock(10*time.Second, ClockOptions{Tick: time.Hour, Now: now.Now}, nil)
	c.Start()
	defer c.Stop()

	assert.False(t, c.Expired())
	now.Advance(10 * time.Second)
	assert.True(t, c.Expired())
}

func TestClock_StopFromExpiryCallback(t *testing.T) {
	now := newFakeNow()
	done := make(chan struct{})
	var c *Clock
	c = NewClock(time.Second, ClockOptions{Tick: time.Millisecond, Now: now.Now}, func() {
		c.Stop()
		close(done)
	})
	c.Start()
	now.Advance(2 * time.Second)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expiry callback did not return")
	}
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "30:00", FormatCountdown(1800))
	assert.Equal(t, "00:59", FormatCountdown(59))
	assert.Equal(t, "01:01", FormatCountdown(61))
	assert.Equal(t, "00:00", FormatCountdown(-5))
}
