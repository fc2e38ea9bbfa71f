package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/sbstats/internal/config"
	"github.com/roach88/sbstats/internal/display"
	"github.com/roach88/sbstats/internal/engine"
	"github.com/roach88/sbstats/internal/schedule"
	"github.com/roach88/sbstats/internal/store"
	"github.com/roach88/sbstats/internal/variables"
)

// DefaultHostVersion is used when a scenario names no host version.
const DefaultHostVersion = "1.8.8-R0.1-SNAPSHOT"

// Harness executes one scenario against the real engine.
type Harness struct {
	cfg     *config.Config
	host    *display.MemoryHost
	clock   *schedule.ManualClock
	sched   *schedule.Scheduler
	players *store.PlayerCache
	top     *store.TopCache
	mgr     *engine.Manager

	viewers map[string]*display.Player // by name, kept after leave
	names   map[string]string          // viewer id to name
}

// Run executes a scenario and evaluates its assertions.
//
// Each run gets a fresh SQLite file in a temp dir and a manual clock.
// Step failures (unknown viewer, database errors) abort the run with an
// error; assertion failures are reported in the Result.
func Run(ctx context.Context, sc *Scenario) (*Result, error) {
	cfg, err := config.Parse([]byte(sc.Config))
	if err != nil {
		return nil, fmt.Errorf("scenario config: %w", err)
	}

	dir, err := os.MkdirTemp("", "sbstats-harness-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	st, err := store.Open(filepath.Join(dir, "stats.db"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	h := newHarness(cfg, st, sc.Host)
	defer h.sched.Stop()

	for _, p := range sc.Setup {
		if p.ID == "" {
			p.ID = display.OfflineID(p.Name)
		}
		if err := st.SaveStats(ctx, p); err != nil {
			return nil, fmt.Errorf("setup %s: %w", p.Name, err)
		}
	}
	if err := h.top.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("setup top list: %w", err)
	}

	result := NewResult()
	for i, step := range sc.Steps {
		ev, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
		ev.Step = i + 1
		result.Trace = append(result.Trace, ev)
	}

	for _, msg := range EvaluateAssertions(h, result, sc.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func newHarness(cfg *config.Config, st *store.Store, hs HostSpec) *Harness {
	version := hs.Version
	if version == "" {
		version = DefaultHostVersion
	}
	host := display.NewMemoryHost(version, display.Capabilities{NamedScores: !hs.Legacy})
	players := store.NewPlayerCache(st)
	top := store.NewTopCache(st, cfg.Temp.Size)

	reg := variables.NewRegistry()
	variables.RegisterDefaults(reg, host, players)

	clock := schedule.NewManualClock()
	sched := schedule.New(clock)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &Harness{
		cfg:     cfg,
		host:    host,
		clock:   clock,
		sched:   sched,
		players: players,
		top:     top,
		mgr:     engine.New(host, cfg, reg, top, sched, engine.WithLogger(logger)),
		viewers: make(map[string]*display.Player),
		names:   make(map[string]string),
	}
}

// execute runs one step and collects the writes it caused.
func (h *Harness) execute(ctx context.Context, step Step) (TraceEvent, error) {
	ev := TraceEvent{Action: step.Action, Viewer: step.Viewer}
	before := len(h.host.Writes())

	if err := h.apply(ctx, step, &ev); err != nil {
		return ev, err
	}

	for _, w := range h.host.Writes()[before:] {
		ev.Writes = append(ev.Writes, WriteEvent{
			Viewer:    h.names[w.Viewer],
			Objective: w.Objective,
			Entry:     w.Entry,
			Value:     w.Value,
		})
	}
	return ev, nil
}

func (h *Harness) apply(ctx context.Context, step Step, ev *TraceEvent) error {
	if step.Action == ActionAdvance {
		ev.Detail = step.Duration.String()
		h.clock.Advance(step.Duration)
		return nil
	}
	if step.Action == ActionJoin {
		return h.join(ctx, step)
	}

	p, ok := h.viewers[step.Viewer]
	if !ok {
		return fmt.Errorf("unknown viewer %q", step.Viewer)
	}

	switch step.Action {
	case ActionLeave:
		h.mgr.Forget(p)
		h.host.Leave(p.ID())
		h.players.Forget(p.ID())
	case ActionWorld:
		ev.Detail = step.World
		p.SetWorld(step.World)
		if h.cfg.WorldDisabled(step.World) {
			h.mgr.Unregister(p)
		} else {
			h.mgr.CreateScoreboard(p)
		}
	case ActionStats:
		delta := step.Stats
		delta.ID, delta.Name = p.ID(), p.Name()
		if _, err := h.players.Record(ctx, delta); err != nil {
			return err
		}
		if err := h.top.Refresh(ctx); err != nil {
			return err
		}
		h.mgr.Refresh(p, true)
	case ActionSendUpdate:
		h.mgr.SendUpdate(p)
	case ActionRefresh:
		if step.Complete {
			ev.Detail = "complete"
		}
		h.mgr.Refresh(p, step.Complete)
	case ActionUpdate:
		ev.Detail = fmt.Sprintf("%q=%d", step.Title, step.Value)
		h.mgr.Update(p, step.Title, step.Value)
	case ActionOverlay:
		h.mgr.CreateTopListScoreboard(p)
	case ActionUnregister:
		h.mgr.Unregister(p)
	}
	return nil
}

func (h *Harness) join(ctx context.Context, step Step) error {
	if p, ok := h.viewers[step.Viewer]; ok && p.Online() {
		return fmt.Errorf("viewer %q already joined", step.Viewer)
	}
	world := step.World
	if world == "" {
		world = "world"
	}

	p := h.host.Join(step.Viewer, world)
	h.viewers[p.Name()] = p
	h.names[p.ID()] = p.Name()
	if !step.Lazy {
		if _, err := h.players.Load(ctx, p.ID(), p.Name()); err != nil {
			return err
		}
	}
	h.mgr.CreateScoreboard(p)
	return nil
}
