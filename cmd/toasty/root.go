// Package main provides the CLI entrypoint for toasty.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/config"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "toasty",
	Short: "Toast notification stack for terminal apps",
	Long: `toasty manages a stack of short-lived toast notifications: it tracks
active toasts, expires them after a timeout (held back while the pointer
hovers over them) and lays them out stacked against a screen corner.

Running toasty without a subcommand launches an interactive demo that
overlays toasts on a scrolling event log.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(os.Stderr)

		var err error
		cfg, err = config.LoadConfig(configPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/toasty/toasty.toml)")
}

// setupLogger configures the global slog logger to write to w.
func setupLogger(w io.Writer) {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(w, opts)
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// configPath returns the config file in use.
func configPath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.ConfigPath()
}

// getConfig returns the global config instance.
func getConfig() *config.Config {
	if cfg == nil {
		return config.DefaultConfig()
	}
	return cfg
}
