package schedule

import (
	"sort"
	"sync"
	"time"
)

// ManualClock is a Clock driven by Advance instead of wall time. The
// simulator steps it one tick at a time; tests use it to fire deferred
// transitions deterministically.
//
// Timers fire synchronously inside Advance, on the caller's goroutine, in
// deadline order (ties in creation order).
//
// Thread-safety: all methods are safe for concurrent use. Timer functions
// run without the clock's lock held, so they may create new timers.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	timers []*manualTimer
}

// NewManualClock creates a clock at offset zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

type manualTimer struct {
	clock *ManualClock
	id    int
	at    time.Duration
	fn    func()
	done  bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &manualTimer{clock: c, id: c.nextID, at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d and fires every timer due by then,
// including timers created by fired timers.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		t := c.nextDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	c.mu.Lock()
	c.now = target
	c.mu.Unlock()
}

func (c *ManualClock) nextDue(target time.Duration) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.done {
			live = append(live, t)
		}
	}
	c.timers = live

	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].at != c.timers[j].at {
			return c.timers[i].at < c.timers[j].at
		}
		return c.timers[i].id < c.timers[j].id
	})
	if len(c.timers) == 0 || c.timers[0].at > target {
		return nil
	}

	t := c.timers[0]
	t.done = true
	c.now = t.at
	return t
}

// Pending returns the number of timers not yet fired or stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// Now returns the elapsed fake time.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
