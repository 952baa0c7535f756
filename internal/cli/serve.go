package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/histopath-mcp/internal/config"
	"github.com/ironsheep/histopath-mcp/internal/logging"
	"github.com/ironsheep/histopath-mcp/internal/metrics"
	"github.com/ironsheep/histopath-mcp/internal/project"
	"github.com/ironsheep/histopath-mcp/internal/server"
	"github.com/ironsheep/histopath-mcp/internal/session"
)

type serveOptions struct {
	MetricsAddr string
}

func newServeCommand() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	addServeFlags(cmd, opts)
	return cmd
}

func addServeFlags(cmd *cobra.Command, opts *serveOptions) {
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cc, err := getCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg, log := cc.Config, cc.Logger
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Metrics.Addr
	if opts.MetricsAddr != "" {
		addr = opts.MetricsAddr
	}
	var rec *metrics.Recorder
	if addr != "" {
		rec = metrics.NewRecorder(true)
		go func() {
			if err := rec.Serve(ctx, addr, cfg.Metrics.Path, log); err != nil {
				log.Error("metrics endpoint failed", logging.Err(err))
			}
		}()
	}

	if cc.ConfigPath != "" {
		watchLogLevel(cc)
	}

	recent, err := project.LoadRecent(cfg.Recent.Path)
	if err != nil {
		log.Warn("recent files list unreadable, starting empty", logging.Err(err))
	}

	sess := session.New(session.Options{
		Config:       cfg.Session,
		Logger:       log,
		Metrics:      rec,
		Recent:       recent,
		DetectorSeed: cfg.Detector.Seed,
	})
	srv := server.New(sess, server.Options{
		Logger:  log,
		Metrics: rec,
		Version: Version,
	})

	log.Info("histopath-mcp starting",
		logging.String("version", Version),
		logging.String("commit", GitCommit),
		logging.String("session_id", sess.ID().String()))

	// The stdin read cannot be interrupted, so a signal returns without
	// waiting for it.
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Info("client disconnected")
		return nil
	}
}

// watchLogLevel applies log level changes from the config file while
// serving.
func watchLogLevel(cc *cliContext) {
	log := cc.Logger
	err := config.Watch(cc.ConfigPath, func(cfg *config.Config, err error) {
		if err != nil {
			log.Warn("config reload failed", logging.Err(err))
			return
		}
		if err := logging.SetLevel(log, cfg.Log.Level); err != nil {
			log.Warn("config reload failed", logging.Err(err))
			return
		}
		log.Info("config reloaded", logging.String("log_level", cfg.Log.Level))
	}, cc.Binds...)
	if err != nil {
		log.Warn("config watch disabled", logging.Err(err))
	}
}
