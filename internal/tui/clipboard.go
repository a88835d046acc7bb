package tui

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/jmylchreest/toasty/internal/config"
)

var errNoClipboard = errors.New("no clipboard command available")

// clipboardCommands are tried in order when none is configured:
// Wayland, X11, then macOS.
var clipboardCommands = [][]string{
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
	{"pbcopy"},
}

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

const copyTimeout = 5 * time.Second

// copyText pipes text into the clipboard command.
func copyText(text string, cfg *config.Config) error {
	args := clipboardArgs(cfg)
	if len(args) == 0 {
		return errNoClipboard
	}

	ctx, cancel := context.WithTimeout(context.Background(), copyTimeout)
	defer cancel()

	c := exec.CommandContext(ctx, args[0], args[1:]...)
	c.Stdin = strings.NewReader(text)
	return c.Run()
}

// clipboardArgs returns the configured clipboard command split into
// arguments, or the first installed one of clipboardCommands.
func clipboardArgs(cfg *config.Config) []string {
	if cfg != nil && strings.TrimSpace(cfg.Clipboard.Command) != "" {
		return strings.Fields(cfg.Clipboard.Command)
	}

	for _, args := range clipboardCommands {
		if _, err := lookPath(args[0]); err == nil {
			return args
		}
	}
	return nil
}
