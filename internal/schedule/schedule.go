// Package schedule runs deferred one-shot tasks keyed by viewer id.
//
// Each key holds at most one pending task. Scheduling again under the same
// key replaces the pending task, and Cancel drops it, so a viewer who logs
// out never has a stale task fire against it. A task that was replaced or
// cancelled after its timer already fired is recognised by its generation
// and skipped.
package schedule

import (
	"sync"
	"time"
)

// Timer is a pending AfterFunc call.
type Timer interface {
	Stop() bool
}

// Clock creates timers. RealClock uses the runtime timer; ManualClock is
// stepped by hand.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock is the wall-clock Clock.
type RealClock struct{}

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type task struct {
	timer Timer
	gen   uint64
}

// Scheduler holds the pending task of every key.
//
// Thread-safety: all methods are safe for concurrent use. Task functions run
// on the clock's goroutine, outside the scheduler's lock.
type Scheduler struct {
	clock Clock

	mu      sync.Mutex
	gen     uint64
	tasks   map[string]task
	stopped bool
}

// New creates a scheduler driven by clock.
func New(clock Clock) *Scheduler {
	return &Scheduler{clock: clock, tasks: make(map[string]task)}
}

// Schedule runs fn after d, replacing any task pending under key.
// Returns false if the scheduler was stopped.
func (s *Scheduler) Schedule(key string, d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}

	if prev, ok := s.tasks[key]; ok {
		prev.timer.Stop()
	}
	s.gen++
	gen := s.gen
	timer := s.clock.AfterFunc(d, func() { s.fire(key, gen, fn) })
	s.tasks[key] = task{timer: timer, gen: gen}
	return true
}

func (s *Scheduler) fire(key string, gen uint64, fn func()) {
	s.mu.Lock()
	t, ok := s.tasks[key]
	if !ok || t.gen != gen || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.tasks, key)
	s.mu.Unlock()

	fn()
}

// Cancel drops the task pending under key. Reports whether one was pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, key)
	return true
}

// Pending reports whether a task is waiting under key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

// Stop cancels every pending task and rejects new ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, key)
	}
	s.stopped = true
}
