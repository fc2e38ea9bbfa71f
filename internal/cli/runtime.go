package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/sbstats/internal/config"
	"github.com/roach88/sbstats/internal/display"
	"github.com/roach88/sbstats/internal/engine"
	"github.com/roach88/sbstats/internal/httpapi"
	"github.com/roach88/sbstats/internal/schedule"
	"github.com/roach88/sbstats/internal/store"
	"github.com/roach88/sbstats/internal/variables"
)

// DefaultHostVersion is reported by the in-memory host unless overridden.
const DefaultHostVersion = "1.8.8-R0.1-SNAPSHOT"

// HostOptions are the flags that shape the in-memory host.
type HostOptions struct {
	Version string
	Legacy  bool // host without named-entry scores
}

// runtime wires the engine to an in-memory host and a stats store.
type runtime struct {
	cfg     *config.Config
	host    *display.MemoryHost
	players *store.PlayerCache
	top     *store.TopCache
	sched   *schedule.Scheduler
	mgr     *engine.Manager
}

func newRuntime(cfg *config.Config, st *store.Store, clock schedule.Clock, ho HostOptions, logger *slog.Logger) *runtime {
	version := ho.Version
	if version == "" {
		version = DefaultHostVersion
	}
	host := display.NewMemoryHost(version, display.Capabilities{NamedScores: !ho.Legacy})
	players := store.NewPlayerCache(st)
	top := store.NewTopCache(st, cfg.Temp.Size)

	reg := variables.NewRegistry()
	variables.RegisterDefaults(reg, host, players)

	sched := schedule.New(clock)
	return &runtime{
		cfg:     cfg,
		host:    host,
		players: players,
		top:     top,
		sched:   sched,
		mgr:     engine.New(host, cfg, reg, top, sched, engine.WithLogger(logger)),
	}
}

// join connects a player and loads their stats before the first board is
// built, so stats rows resolve on the first complete poll.
func (r *runtime) join(ctx context.Context, name, world string) (*display.Player, error) {
	p := r.host.Join(name, world)
	if _, err := r.players.Load(ctx, p.ID(), name); err != nil {
		r.host.Leave(p.ID())
		return nil, err
	}
	return p, nil
}

// pump queues a partial refresh for every connected player on each
// interval until ctx is cancelled.
func (r *runtime) pump(ctx context.Context, events httpapi.Events, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, p := range r.host.Players() {
				events.Enqueue(engine.Event{Kind: engine.EventSendUpdate, Viewer: p})
			}
		}
	}
}

func (r *runtime) close() {
	r.sched.Stop()
}

func openStore(f *OutputFormatter, path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, f.fail(ExitCommandError, CodeDatabase, "cannot open stats database", err)
	}
	return st, nil
}

func closeStore(st *store.Store, logger *slog.Logger) {
	if err := st.Close(); err != nil {
		logger.Error("error closing database", "error", err)
	}
}
