package schedule_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sbstats/internal/schedule"
)

func TestSchedule_Fires(t *testing.T) {
	clock := schedule.NewManualClock()
	s := schedule.New(clock)

	fired := 0
	assert.True(t, s.Schedule("alice", time.Second, func() { fired++ }))
	assert.True(t, s.Pending("alice"))

	clock.Advance(999 * time.Millisecond)
	assert.Equal(t, 0, fired)

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.False(t, s.Pending("alice"))
}

func TestSchedule_ReplacesPendingTask(t *testing.T) {
	clock := schedule.NewManualClock()
	s := schedule.New(clock)

	var got []string
	s.Schedule("alice", time.Second, func() { got = append(got, "first") })
	s.Schedule("alice", 2*time.Second, func() { got = append(got, "second") })

	clock.Advance(5 * time.Second)
	assert.Equal(t, []string{"second"}, got)
}

func TestSchedule_KeysAreIndependent(t *testing.T) {
	clock := schedule.NewManualClock()
	s := schedule.New(clock)

	var got []string
	s.Schedule("alice", time.Second, func() { got = append(got, "alice") })
	s.Schedule("bob", time.Second, func() { got = append(got, "bob") })
	s.Cancel("alice")

	clock.Advance(time.Second)
	assert.Equal(t, []string{"bob"}, got)
}

func TestCancel(t *testing.T) {
	clock := schedule.NewManualClock()
	s := schedule.New(clock)

	fired := false
	s.Schedule("alice", time.Second, func() { fired = true })
	assert.True(t, s.Cancel("alice"))
	assert.False(t, s.Cancel("alice"))

	clock.Advance(time.Minute)
	assert.False(t, fired)
}

// A timer that already fired but lost the race with Cancel must not run.
type leakyClock struct {
	fns []func()
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return false }

func (c *leakyClock) AfterFunc(_ time.Duration, f func()) schedule.Timer {
	c.fns = append(c.fns, f)
	return noopTimer{}
}

func TestSchedule_StaleFireIgnored(t *testing.T) {
	clock := &leakyClock{}
	s := schedule.New(clock)

	var fired atomic.Int32
	s.Schedule("alice", time.Second, func() { fired.Add(1) })
	s.Cancel("alice")
	clock.fns[0]()
	assert.Equal(t, int32(0), fired.Load())

	s.Schedule("alice", time.Second, func() { fired.Add(10) })
	s.Schedule("alice", time.Second, func() { fired.Add(100) })
	clock.fns[1]()
	assert.Equal(t, int32(0), fired.Load(), "replaced task is stale")
	clock.fns[2]()
	assert.Equal(t, int32(100), fired.Load())
}

func TestStop(t *testing.T) {
	clock := schedule.NewManualClock()
	s := schedule.New(clock)

	fired := false
	s.Schedule("alice", time.Second, func() { fired = true })
	s.Stop()

	assert.False(t, s.Schedule("bob", time.Second, func() { fired = true }))
	clock.Advance(time.Minute)
	assert.False(t, fired)
	assert.False(t, s.Pending("alice"))
}

func TestRealClock(t *testing.T) {
	s := schedule.New(schedule.RealClock{})
	done := make(chan struct{})
	s.Schedule("alice", time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not fire")
	}
}
