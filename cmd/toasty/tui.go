package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/theme"
	"github.com/jmylchreest/toasty/internal/tui"
)

var tuiOpts struct {
	logFile string
	noWatch bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive toast demo",
	Long: `Launch a terminal demo that overlays the toast stack on a scrolling
event log. Move the mouse over a toast to keep it on screen.

Key bindings:
  i/s/w/e     Push an info/success/warning/error toast
  a           Push a toast with an action
  x           Dismiss the newest toast
  X           Close all toasts
  c           Copy the newest toast's message to the clipboard
  j/k, ↑/↓    Scroll the event log
  ?           Show help
  q           Quit

Mouse buttons are mapped by the [mouse] section of the config file.
The config file is reloaded when it changes.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	for _, c := range []*cobra.Command{rootCmd, tuiCmd} {
		c.Flags().StringVar(&tuiOpts.logFile, "log-file", "",
			"Write logs to this file while the TUI is running (default: discard)")
		c.Flags().BoolVar(&tuiOpts.noWatch, "no-watch", false,
			"Do not reload the config file when it changes")
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The alt-screen owns the terminal, so logs must go elsewhere.
	var w io.Writer = io.Discard
	if tuiOpts.logFile != "" {
		f, err := os.OpenFile(tuiOpts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	setupLogger(w)

	c := getConfig()
	dir, err := theme.ThemesDir()
	if err != nil {
		dir = ""
	}
	th, err := theme.Load(dir, c.Theme.Name, c.ColorScheme())
	if err != nil {
		logger.Warn("falling back to default theme", "theme", c.Theme.Name, "error", err)
		th = theme.NewDefaultTheme(c.ColorScheme())
	}

	opts := tui.RunOptions{
		Config:    c,
		Theme:     th,
		ThemesDir: dir,
		Logger:    logger,
	}
	if !tuiOpts.noWatch {
		opts.ConfigPath = configPath()
	}

	return tui.Run(cmd.Context(), opts)
}
