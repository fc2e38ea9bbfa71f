package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/sbstats/internal/store"
)

type topResult []store.Entry

func (r topResult) RenderText(w io.Writer) error {
	if len(r) == 0 {
		_, err := fmt.Fprintln(w, "no players yet")
		return err
	}
	for i, e := range r {
		fmt.Fprintf(w, "%2d. %-16s %d\n", i+1, e.Name, e.Value)
	}
	return nil
}

// NewTopCommand creates the top command.
func NewTopCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}
	var limit int

	cmd := &cobra.Command{
		Use:           "top",
		Short:         "Show the players with the most kills",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return newFormatter(rootOpts, cmd.OutOrStdout()).fail(ExitCommandError, CodeInput, "--limit must be positive", nil)
			}
			return withStore(cmd, opts, func(ctx context.Context, f *OutputFormatter, st *store.Store) error {
				entries, err := st.Top(ctx, limit)
				if err != nil {
					return f.fail(ExitCommandError, CodeDatabase, "cannot read top list", err)
				}
				return f.Success(topResult(entries))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite stats database (required)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of players")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
