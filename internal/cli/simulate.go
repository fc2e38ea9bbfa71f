package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sbstats/internal/display"
	"github.com/roach88/sbstats/internal/schedule"
	"github.com/roach88/sbstats/internal/store"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	HostOptions
	Config   string
	Database string
	Viewers  int
	Ticks    int
	Tick     time.Duration
	Overlay  bool
}

// SimulationResult summarises a simulated run.
type SimulationResult struct {
	Strategy string           `json:"strategy"`
	Viewers  int              `json:"viewers"`
	Ticks    int              `json:"ticks"`
	Elapsed  string           `json:"elapsed"`
	Writes   int              `json:"writes"`
	Boards   []SimulatedBoard `json:"boards"`
}

// SimulatedBoard is the final sidebar of one simulated viewer.
type SimulatedBoard struct {
	Name   string `json:"name"`
	Flavor string `json:"flavor"`
	display.Snapshot
}

func (r SimulationResult) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "%d viewers, %d ticks over %s, %s writes: %d\n\n",
		r.Viewers, r.Ticks, r.Elapsed, r.Strategy, r.Writes)
	for _, b := range r.Boards {
		fmt.Fprintf(w, "%s (%s) %q\n", b.Name, b.Flavor, b.Title)
		for _, l := range b.Lines {
			fmt.Fprintf(w, "%6d  %s\n", l.Value, l.Text)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the scoreboard engine against simulated players",
		Long: `Join simulated players to an in-memory host, generate deterministic pvp
activity each tick and refresh their boards, then print what each player
sees. Time is simulated: deferred overlay transitions fire as ticks pass.

Example:
  sbstats simulate --config scoreboard.yml --viewers 3 --ticks 10
  sbstats simulate --config scoreboard.yml --overlay --tick 1m --ticks 6`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runSimulate(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to scoreboard config (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "stats database (default: config stats.database, else a throwaway file)")
	cmd.Flags().IntVar(&opts.Viewers, "viewers", 3, "number of simulated players")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 10, "number of refresh ticks")
	cmd.Flags().DurationVar(&opts.Tick, "tick", 0, "simulated time per tick (default: scoreboard update-interval)")
	cmd.Flags().BoolVar(&opts.Overlay, "overlay", false, "enable the top list overlay regardless of config")
	cmd.Flags().StringVar(&opts.Version, "host-version", DefaultHostVersion, "version reported by the simulated host")
	cmd.Flags().BoolVar(&opts.Legacy, "legacy", false, "simulate a host without named-entry scores")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runSimulate(ctx context.Context, opts *SimulateOptions, out, errOut io.Writer) error {
	f := newFormatter(opts.RootOptions, out)
	logger := newLogger(opts.RootOptions, errOut)

	if opts.Viewers < 1 || opts.Ticks < 0 {
		return f.fail(ExitCommandError, CodeInput, "--viewers must be positive and --ticks not negative", nil)
	}

	cfg, err := loadConfig(f, opts.Config)
	if err != nil {
		return err
	}
	if opts.Overlay {
		cfg.Temp.Enabled = true
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = cfg.Scoreboard.UpdateInterval
	}

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Stats.Database
	}
	if dbPath == "" {
		dir, err := os.MkdirTemp("", "sbstats-sim-")
		if err != nil {
			return f.fail(ExitCommandError, CodeDatabase, "cannot create temp dir", err)
		}
		defer os.RemoveAll(dir)
		dbPath = filepath.Join(dir, "stats.db")
	}

	st, err := openStore(f, dbPath)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	clock := schedule.NewManualClock()
	rt := newRuntime(cfg, st, clock, opts.HostOptions, logger)
	defer rt.close()

	if err := rt.top.Refresh(ctx); err != nil {
		return f.fail(ExitCommandError, CodeDatabase, "cannot read top list", err)
	}

	viewers := make([]*display.Player, 0, opts.Viewers)
	for i := 1; i <= opts.Viewers; i++ {
		p, err := rt.join(ctx, fmt.Sprintf("viewer%02d", i), "world")
		if err != nil {
			return f.fail(ExitCommandError, CodeDatabase, "cannot load stats", err)
		}
		viewers = append(viewers, p)
		rt.mgr.CreateScoreboard(p)
	}
	logger.Info("simulation started", "viewers", len(viewers), "ticks", opts.Ticks, "tick", tick)

	for t := 1; t <= opts.Ticks; t++ {
		for i, p := range viewers {
			delta, ok := activity(t, i)
			if !ok {
				continue
			}
			delta.ID, delta.Name = p.ID(), p.Name()
			if _, err := rt.players.Record(ctx, delta); err != nil {
				return f.fail(ExitCommandError, CodeDatabase, "cannot record stats", err)
			}
		}
		if err := rt.top.Refresh(ctx); err != nil {
			logger.Warn("top list refresh failed", "error", err)
		}
		for _, p := range viewers {
			rt.mgr.SendUpdate(p)
		}
		clock.Advance(tick)
	}

	result := SimulationResult{
		Strategy: rt.mgr.Strategy().Name(),
		Viewers:  len(viewers),
		Ticks:    opts.Ticks,
		Elapsed:  (time.Duration(opts.Ticks) * tick).String(),
		Writes:   len(rt.host.Writes()),
	}
	for _, p := range viewers {
		result.Boards = append(result.Boards, SimulatedBoard{
			Name:     p.Name(),
			Flavor:   rt.mgr.Flavor(p.ID()).String(),
			Snapshot: rt.host.Render(p),
		})
	}
	logger.Info("simulation finished", "writes", result.Writes)
	return f.Success(result)
}

// activity is the deterministic pvp outcome of viewer i on tick t.
func activity(t, i int) (store.Stats, bool) {
	var d store.Stats
	if (t+i)%2 == 0 {
		d.Kills = 1
	}
	if (t+2*i)%3 == 0 {
		d.Deaths = 1
	}
	if (t*(i+1))%4 == 0 {
		d.MobKills = 1
	}
	return d, d.Kills+d.Deaths+d.MobKills > 0
}
