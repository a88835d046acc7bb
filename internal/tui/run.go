package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/theme"
)

// RunOptions configures the TUI.
type RunOptions struct {
	Config     *config.Config
	ConfigPath string // Config file to watch for changes (empty = no watching)
	Theme      *theme.Theme
	ThemesDir  string // User themes, searched when a reload names another theme
	Logger     *slog.Logger
}

// Run starts the TUI and blocks until it exits or ctx is cancelled.
func Run(ctx context.Context, opts RunOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := New(opts.Config,
		WithTheme(opts.Theme),
		WithThemesDir(opts.ThemesDir),
		WithLogger(logger),
	)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	if opts.ConfigPath != "" {
		watcher, err := config.NewWatcher(opts.ConfigPath, func(cfg *config.Config) {
			p.Send(configReloadMsg{cfg: cfg})
		}, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else if err := watcher.Start(ctx); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	_, err := p.Run()
	return err
}
