package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/replay"
	"github.com/jmylchreest/toasty/internal/stack"
)

var replayOpts struct {
	format  string
	width   int
	height  int
	toastW  int
	toastH  int
	noDrain bool
}

var replayCmd = &cobra.Command{
	Use:   "replay [script.jsonl]",
	Short: "Replay a scripted toast session",
	Long: `Replay a JSON lines script of host events against the toast manager
with a simulated clock, and print the resulting trace. Reads stdin when no
file is given or the file is "-".

Each line is one step:
  {"at": "0s", "op": "push", "key": "build", "level": "success", "message": "Build finished", "action": "Open"}
  {"at": "2s", "op": "hover", "x": 60, "y": 20}
  {"at": "3s", "op": "leave"}
  {"at": "4s", "op": "layout"}

Ops: push, dismiss, activate, close-all, hover, leave, tick, layout.
Push steps without a key get a generated ULID.

Examples:
  # Human-readable trace
  toasty replay session.jsonl

  # Trace as YAML on a 120x40 screen
  toasty replay session.jsonl --format yaml --width 120 --height 40`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	defaults := replay.DefaultOptions()
	replayCmd.Flags().StringVarP(&replayOpts.format, "format", "f", string(replay.FormatPlain),
		"Output format (plain, json, yaml)")
	replayCmd.Flags().IntVar(&replayOpts.width, "width", defaults.Container.Width,
		"Screen width")
	replayCmd.Flags().IntVar(&replayOpts.height, "height", defaults.Container.Height,
		"Screen height")
	replayCmd.Flags().IntVar(&replayOpts.toastW, "toast-width", defaults.ToastSize.Width,
		"Width of toasts that do not give one")
	replayCmd.Flags().IntVar(&replayOpts.toastH, "toast-height", defaults.ToastSize.Height,
		"Height of toasts that do not give one")
	replayCmd.Flags().BoolVar(&replayOpts.noDrain, "no-drain", false,
		"Stop after the last step instead of running until every toast expires")
}

func runReplay(cmd *cobra.Command, args []string) error {
	formatter, err := replay.NewFormatter(replay.FormatType(replayOpts.format))
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		r = f
	}

	steps, err := replay.ReadScript(r)
	if err != nil {
		return err
	}

	events, err := replay.Run(cmd.Context(), steps, replay.Options{
		Config:    getConfig(),
		Container: stack.Rect{Width: replayOpts.width, Height: replayOpts.height},
		ToastSize: stack.Size{Width: replayOpts.toastW, Height: replayOpts.toastH},
		Drain:     !replayOpts.noDrain,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("replay interrupted: %w", err)
	}

	logger.Debug("replay complete", "steps", len(steps), "events", len(events))
	return formatter.Format(cmd.OutOrStdout(), events)
}
