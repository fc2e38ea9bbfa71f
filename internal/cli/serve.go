package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/sbstats/internal/engine"
	"github.com/roach88/sbstats/internal/httpapi"
	"github.com/roach88/sbstats/internal/schedule"
)

const shutdownTimeout = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	HostOptions
	Config   string
	Database string
	Addr     string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scoreboard engine behind an HTTP API",
		Long: `Start the single-writer event loop, the top list refresher and an HTTP
API for joining players, recording stats and inspecting boards.

Example:
  sbstats serve --config scoreboard.yml --db ./stats.db --addr :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runServe(ctx, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to scoreboard config (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "stats database (default: config stats.database)")
	cmd.Flags().StringVar(&opts.Addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.Version, "host-version", DefaultHostVersion, "version reported by the host")
	cmd.Flags().BoolVar(&opts.Legacy, "legacy", false, "host without named-entry scores")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runServe(parent context.Context, opts *ServeOptions, out, errOut io.Writer) error {
	f := newFormatter(opts.RootOptions, out)
	logger := newLogger(opts.RootOptions, errOut)
	slog.SetDefault(logger)

	cfg, err := loadConfig(f, opts.Config)
	if err != nil {
		return err
	}
	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Stats.Database
	}
	if dbPath == "" {
		return f.fail(ExitCommandError, CodeDatabase, "no stats database: set stats.database or --db", nil)
	}

	st, err := openStore(f, dbPath)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	rt := newRuntime(cfg, st, schedule.RealClock{}, opts.HostOptions, logger)
	defer rt.close()
	dispatcher := engine.NewDispatcher(rt.mgr, engine.WithDispatchLogger(logger))

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	dispatched := make(chan error, 1)
	go func() { dispatched <- dispatcher.Run(ctx) }()
	go func() { _ = rt.top.Run(ctx, cfg.Stats.RefreshInterval) }()
	go rt.pump(ctx, dispatcher, cfg.Scoreboard.UpdateInterval)

	srv := &http.Server{
		Addr: opts.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Config: cfg,
			Host:   rt.host,
			Events: dispatcher,
			Boards: rt.mgr,
			Stats:  rt.players,
			Top:    rt.top,
			Logger: logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", "error", err)
		}
	}()

	logger.Info("server starting", "addr", opts.Addr, "db", dbPath, "strategy", rt.mgr.Strategy().Name())
	fmt.Fprintf(out, "Listening on %s. Press Ctrl-C to stop.\n", opts.Addr)

	serveErr := srv.ListenAndServe()
	cancel()
	if err := <-dispatched; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("dispatcher error", "error", err)
	}
	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return f.fail(ExitCommandError, CodeInput, "http server failed", serveErr)
	}

	logger.Info("server stopped gracefully")
	return nil
}
