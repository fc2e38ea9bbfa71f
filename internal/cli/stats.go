package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/sbstats/internal/display"
	"github.com/roach88/sbstats/internal/store"
)

// StatsOptions holds flags shared by the stats subcommands.
type StatsOptions struct {
	*RootOptions
	Database string
}

type statsResult store.Stats

func (s statsResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s  kills=%d deaths=%d kdr=%d killstreak=%d mob=%d\n",
		s.Name, s.Kills, s.Deaths, store.Stats(s).KDR(), s.Killstreak, s.MobKills)
	return err
}

type importResult struct {
	Imported int `json:"imported"`
}

func (r importResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "✓ Imported %d player(s)\n", r.Imported)
	return err
}

// NewStatsCommand creates the stats command and its subcommands.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Read and write player stats",
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite stats database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(newStatsAddCommand(opts))
	cmd.AddCommand(newStatsImportCommand(opts))
	cmd.AddCommand(newStatsShowCommand(opts))
	return cmd
}

func newStatsAddCommand(opts *StatsOptions) *cobra.Command {
	var delta store.Stats

	cmd := &cobra.Command{
		Use:   "add <player>",
		Short: "Add counters to a player's stats",
		Long: `Add counters to a player's stats, creating the player if needed.
A non-zero --killstreak replaces the stored streak.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			delta.ID, delta.Name = display.OfflineID(args[0]), args[0]
			return withStore(cmd, opts, func(ctx context.Context, f *OutputFormatter, st *store.Store) error {
				got, err := st.AddStats(ctx, delta)
				if err != nil {
					return f.fail(ExitCommandError, CodeDatabase, "cannot add stats", err)
				}
				return f.Success(statsResult(got))
			})
		},
	}

	cmd.Flags().IntVar(&delta.Kills, "kills", 0, "kills to add")
	cmd.Flags().IntVar(&delta.Deaths, "deaths", 0, "deaths to add")
	cmd.Flags().IntVar(&delta.MobKills, "mob", 0, "mob kills to add")
	cmd.Flags().IntVar(&delta.Killstreak, "killstreak", 0, "current killstreak")
	return cmd
}

func newStatsImportCommand(opts *StatsOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace player stats from a YAML file",
		Long: `Import a YAML list of player stats, replacing any stored rows.

Example file:
  - name: alice
    kills: 12
    deaths: 3
  - name: bob
    mob_kills: 40`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, f *OutputFormatter, st *store.Store) error {
				players, err := readStatsFile(args[0])
				if err != nil {
					return f.fail(ExitCommandError, CodeInput, "cannot read stats file", err)
				}
				for _, p := range players {
					if err := st.SaveStats(ctx, p); err != nil {
						return f.fail(ExitCommandError, CodeDatabase, "cannot save stats", err)
					}
				}
				return f.Success(importResult{Imported: len(players)})
			})
		},
	}
}

func newStatsShowCommand(opts *StatsOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <player>",
		Short:         "Show a player's stats",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, f *OutputFormatter, st *store.Store) error {
				got, err := st.LoadStats(ctx, display.OfflineID(args[0]))
				if errors.Is(err, store.ErrNotFound) {
					return f.fail(ExitFailure, CodeNotFound, fmt.Sprintf("no stats for %s", args[0]), nil)
				}
				if err != nil {
					return f.fail(ExitCommandError, CodeDatabase, "cannot load stats", err)
				}
				return f.Success(statsResult(got))
			})
		},
	}
}

// readStatsFile decodes a YAML list of stats. Entries without an id get
// the id a player joining under that name would have.
func readStatsFile(path string) ([]store.Stats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var players []store.Stats
	if err := yaml.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, p := range players {
		if p.Name == "" {
			return nil, fmt.Errorf("entry %d: name is required", i)
		}
		if p.ID == "" {
			players[i].ID = display.OfflineID(p.Name)
		}
	}
	return players, nil
}

func withStore(cmd *cobra.Command, opts *StatsOptions, fn func(context.Context, *OutputFormatter, *store.Store) error) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout())
	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer closeStore(st, newLogger(opts.RootOptions, cmd.ErrOrStderr()))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, f, st)
}
