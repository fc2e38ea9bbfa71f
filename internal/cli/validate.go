package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/sbstats/internal/config"
)

// ValidationResult is the outcome of validate.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Rows   int                      `json:"rows,omitempty"`
	Errors []config.ValidationError `json:"errors,omitempty"`
}

func (r ValidationResult) RenderText(w io.Writer) error {
	if r.Valid {
		_, err := fmt.Fprintf(w, "✓ Config valid (%d rows)\n", r.Rows)
		return err
	}
	fmt.Fprintln(w, "✗ Validation failed")
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  %s\n", e.Error())
	}
	return nil
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config>",
		Short: "Check a scoreboard config file",
		Long: `Validate a scoreboard YAML config against the built-in schema.

Reports every violation with its path: over-long titles, too many rows,
empty variable keys and duplicate row titles.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd.OutOrStdout())
		},
	}
}

func runValidate(opts *RootOptions, path string, w io.Writer) error {
	f := newFormatter(opts, w)

	data, err := os.ReadFile(path)
	if err != nil {
		return f.fail(ExitCommandError, CodeConfigRead, "cannot read config", err)
	}

	cfg, err := config.Parse(data)
	var verrs config.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		result := ValidationResult{Errors: verrs}
		if f.Format == "json" {
			_ = f.Error(CodeConfigInvalid, verrs[0].Error(), result)
		} else {
			_ = result.RenderText(f.Writer)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(verrs)))
	case err != nil:
		return f.fail(ExitFailure, CodeConfigInvalid, "config is not valid YAML", err)
	}

	return f.Success(ValidationResult{Valid: true, Rows: cfg.Rows.Len()})
}

// loadConfig reads the config for commands that run the engine.
func loadConfig(f *OutputFormatter, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	var verrs config.ValidationErrors
	if errors.As(err, &verrs) {
		return nil, f.fail(ExitFailure, CodeConfigInvalid, "config is invalid", err)
	}
	return nil, f.fail(ExitCommandError, CodeConfigRead, "cannot load config", err)
}
