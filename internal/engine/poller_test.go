package engine

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sbstats/internal/config"
	"github.com/roach88/sbstats/internal/testutil"
)

func collect(p *Poller, skip SkipSet, complete bool) []Sample {
	var out []Sample
	for s := range p.Poll(viewer("v1", "alice"), skip, complete) {
		out = append(out, s)
	}
	return out
}

func TestPoll_ConfiguredOrder(t *testing.T) {
	rows := config.NewRowSet([]config.Row{{"B", "b"}, {"A", "a"}, {"C", "c"}})
	r := testutil.NewScriptedResolver(map[string]int{"a": 1, "b": 2, "c": 3})
	p := NewPoller(rows, r, nil)

	assert.Equal(t, []Sample{{"B", 2}, {"A", 1}, {"C", 3}}, collect(p, SkipSet{}, true))
}

func TestPoll_EventPendingSkippedUntilCompletePoll(t *testing.T) {
	rows := config.NewRowSet([]config.Row{{"Kills", "kills"}, {"Mobs", "mob"}})
	r := testutil.NewScriptedResolver(map[string]int{"kills": 1})
	r.Pending("mob")
	p := NewPoller(rows, r, nil)
	skip := SkipSet{}

	assert.Equal(t, []Sample{{"Kills", 1}}, collect(p, skip, true))
	assert.True(t, skip.Has("mob"))
	assert.Equal(t, 1, r.Calls("mob"))

	r.Set("mob", 2)
	assert.Equal(t, []Sample{{"Kills", 1}}, collect(p, skip, false))
	assert.Equal(t, []Sample{{"Kills", 1}}, collect(p, skip, false))
	assert.Equal(t, 1, r.Calls("mob"), "partial polls never resolve skipped keys")

	assert.Equal(t, []Sample{{"Kills", 1}, {"Mobs", 2}}, collect(p, skip, true))
	assert.False(t, skip.Has("mob"))
	assert.Equal(t, []Sample{{"Kills", 1}, {"Mobs", 2}}, collect(p, skip, false))
}

func TestPoll_StillPendingAfterCompletePollStaysSkipped(t *testing.T) {
	rows := config.NewRowSet([]config.Row{{"Mobs", "mob"}})
	r := testutil.NewScriptedResolver(nil)
	r.Pending("mob")
	p := NewPoller(rows, r, nil)
	skip := SkipSet{}

	assert.Empty(t, collect(p, skip, true))
	assert.Empty(t, collect(p, skip, true))
	assert.True(t, skip.Has("mob"))
	assert.Equal(t, 2, r.Calls("mob"))
}

func TestPoll_UnknownVariableRemovesRow(t *testing.T) {
	rows := config.NewRowSet([]config.Row{{"Kills", "kills"}, {"Bogus", "bogus"}, {"Deaths", "deaths"}})
	r := testutil.NewScriptedResolver(map[string]int{"kills": 1, "deaths": 2})
	var logs bytes.Buffer
	p := NewPoller(rows, r, slog.New(slog.NewTextHandler(&logs, nil)))

	assert.Equal(t, []Sample{{"Kills", 1}, {"Deaths", 2}}, collect(p, SkipSet{}, true))
	assert.Equal(t, []Sample{{"Kills", 1}, {"Deaths", 2}}, collect(p, SkipSet{}, true))

	assert.Equal(t, 2, rows.Len())
	assert.Equal(t, 1, r.Calls("bogus"))
	assert.Equal(t, 1, strings.Count(logs.String(), "unknown variable"))
	assert.Contains(t, logs.String(), "variable=bogus")
	assert.Contains(t, logs.String(), "title=Bogus")
}

func TestPoll_UnknownVariableLoggedOnceAcrossViewers(t *testing.T) {
	rows := config.NewRowSet([]config.Row{{"Kills", "kills"}, {"Bogus", "bogus"}})
	r := testutil.NewScriptedResolver(map[string]int{"kills": 1})
	var logs bytes.Buffer
	p := NewPoller(rows, r, slog.New(slog.NewTextHandler(&logs, nil)))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range p.Poll(viewer("v", "alice"), SkipSet{}, true) {
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, rows.Len())
	assert.Equal(t, 1, strings.Count(logs.String(), "unknown variable"))
}

func TestPoll_StopsWhenConsumerStops(t *testing.T) {
	rows := config.NewRowSet([]config.Row{{"A", "a"}, {"B", "b"}})
	r := testutil.NewScriptedResolver(map[string]int{"a": 1, "b": 2})
	p := NewPoller(rows, r, nil)

	for range p.Poll(viewer("v1", "alice"), SkipSet{}, true) {
		break
	}
	assert.Equal(t, 0, r.Calls("b"))
}
