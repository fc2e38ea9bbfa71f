package engine

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/sbstats/internal/config"
	"github.com/roach88/sbstats/internal/display"
	"github.com/roach88/sbstats/internal/schedule"
	"github.com/roach88/sbstats/internal/store"
	"github.com/roach88/sbstats/internal/testutil"
)

const twoRowConfig = `
scoreboard:
  title: "&a&lStats"
  items:
    - {title: "&9Kills", variable: kills}
    - {title: "&9Deaths", variable: deaths}
`

const overlayConfig = `
scoreboard:
  title: "&a&lStats"
  items:
    - {title: "&9Kills", variable: kills}
    - {title: "&9Deaths", variable: deaths}
temp-scoreboard:
  enabled: true
  title: "&eTop Kills"
  color: "&9"
  size: 2
  show-for: 7s
  appear-after: 5m
`

type staticRanked []store.Entry

func (r staticRanked) Entries() []store.Entry { return r }

type fixture struct {
	host     *display.MemoryHost
	clock    *testutil.FakeClock
	sched    *schedule.Scheduler
	resolver *testutil.ScriptedResolver
	cfg      *config.Config
	mgr      *Manager
	logs     *bytes.Buffer
}

func newFixture(t *testing.T, doc string, values map[string]int, ranked RankedSource) *fixture {
	t.Helper()

	cfg, err := config.Parse([]byte(doc))
	require.NoError(t, err)

	f := &fixture{
		host:     display.NewMemoryHost("1.8.8-R0.1-SNAPSHOT", display.Capabilities{NamedScores: true}),
		clock:    testutil.NewFakeClock(),
		resolver: testutil.NewScriptedResolver(values),
		cfg:      cfg,
		logs:     &bytes.Buffer{},
	}
	f.sched = schedule.New(f.clock)
	logger := slog.New(slog.NewTextHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f.mgr = New(f.host, cfg, f.resolver, ranked, f.sched, WithLogger(logger))
	return f
}

func viewer(id, name string) *display.Player {
	return display.NewPlayer(id, name, "world")
}

func write(viewer, objective, entry string, value int) display.Write {
	return display.Write{Viewer: viewer, Objective: objective, Entry: entry, Value: value}
}

// flakyViewer reports online only for its first check, like a viewer who
// disconnects between validation and install.
type flakyViewer struct {
	*display.Player
	checks int
}

func (v *flakyViewer) Online() bool {
	v.checks++
	return v.checks == 1
}
