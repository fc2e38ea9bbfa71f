// Package testutil holds deterministic stand-ins for tests.
package testutil

import "github.com/roach88/sbstats/internal/schedule"

// FakeClock fires deferred tasks only when a test advances it.
type FakeClock = schedule.ManualClock

func NewFakeClock() *FakeClock {
	return schedule.NewManualClock()
}
