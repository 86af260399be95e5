package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saimonmoore/experiment-autobee/internal/config"
	"github.com/saimonmoore/experiment-autobee/internal/console"
	"github.com/saimonmoore/experiment-autobee/internal/metrics"
	"github.com/saimonmoore/experiment-autobee/internal/mneme"
	"github.com/saimonmoore/experiment-autobee/internal/models"
)

var _ console.Node = (*mneme.Mneme)(nil)

func newStartCommand(rootOpts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run a node",
		Long: `Run a node on this device.

Without --bootstrap-key the device creates its own stores and prints the
sync key other devices pair with. With it, the device joins those stores
and asks the owning device for write access.

Example:
  mneme start --data-dir ./laptop --listen 127.0.0.1:4077
  mneme start --data-dir ./phone --listen "" --peer 127.0.0.1:4077 --bootstrap-key <key>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd, rootOpts)
		},
	}

	config.AddFlags(cmd.Flags())

	return cmd
}

func runStart(cmd *cobra.Command, rootOpts *rootOptions) error {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: rootOpts.ConfigFile,
		EnvFile:    rootOpts.EnvFile,
	})
	if err != nil {
		return err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	node, err := mneme.New(ctx, mneme.Options{
		DataDir:       cfg.DataDir,
		BootstrapKey:  cfg.BootstrapKey,
		ListenAddr:    cfg.ListenAddr,
		Peers:         cfg.Peers,
		Logger:        logger,
		Metrics:       m,
		RequestDelay:  cfg.Pairing.RequestDelay,
		LoginDelay:    cfg.Pairing.LoginDelay,
		RetryInterval: cfg.Pairing.RetryInterval,
		MaxAttempts:   cfg.Pairing.MaxAttempts,
		LoginTimeout:  cfg.Pairing.LoginTimeout,
		OnReady: func(u *models.User) {
			fmt.Fprintf(cmd.OutOrStdout(), "\nPaired, logged in as %s\n", u.Username)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to open node: %w", err)
	}
	defer func() {
		if err := node.Destroy(); err != nil {
			logger.Error("failed to close node", "error", err)
		}
	}()

	if err := node.Start(ctx); err != nil {
		return fmt.Errorf("failed to start node: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Sync key: %s\n", node.OutOfBandSyncKey())
	if addr := node.Addr(); addr != "" {
		fmt.Fprintf(out, "Listening on %s\n", addr)
	}

	if console.IsTerminal(os.Stdin) {
		return console.New(node, console.NewStdio(os.Stdin, out)).Run(ctx)
	}

	fmt.Fprintln(out, "Press Ctrl-C to stop.")
	<-ctx.Done()
	logger.Info("shutting down")

	return nil
}
