package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anime-shed/lineart-prep/internal/config"
	"github.com/anime-shed/lineart-prep/internal/container"
	"github.com/anime-shed/lineart-prep/internal/logger"
)

// Execute runs the lineart command tree and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel  string
	logFormat string
	workers   int
}

// NewRootCmd builds the lineart command with its subcommands.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "lineart",
		Short:        "Prepare line art for printing and preview it on background photos",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error (default from LOG_LEVEL or info)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: json|text (default from LOG_FORMAT or json)")
	cmd.PersistentFlags().IntVar(&opts.workers, "workers", 0, "Concurrent jobs (default from WORKERS or the number of CPUs)")

	cmd.AddCommand(
		processCmd(opts),
		embedCmd(opts),
		serveCmd(opts),
	)
	return cmd
}

// loadConfig reads the environment then applies flag overrides.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func (o *rootOptions) newContainer(cmd *cobra.Command, opts ...container.Option) (*container.Container, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	c, err := container.NewContainer(cfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	return c, nil
}
