package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/stack"
	"github.com/jmylchreest/toasty/internal/toast"
)

var layoutOpts struct {
	width    int
	height   int
	position string
	json     bool
}

var layoutCmd = &cobra.Command{
	Use:   "layout WxH [WxH...]",
	Short: "Compute stack placements for toasts of the given sizes",
	Long: `Lay out toasts of the given sizes, oldest first, using the [display]
settings of the config, and print where each one would be drawn. Toasts that
do not fit are reported as hidden.

Examples:
  toasty layout 40x4 40x6 30x3
  toasty layout 100x60 100x60 100x60 --width 300 --height 125 --position bottom-right`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLayout,
}

func init() {
	rootCmd.AddCommand(layoutCmd)

	layoutCmd.Flags().IntVar(&layoutOpts.width, "width", 80, "Container width")
	layoutCmd.Flags().IntVar(&layoutOpts.height, "height", 24, "Container height")
	layoutCmd.Flags().StringVar(&layoutOpts.position, "position", "",
		"Override the configured position (top-left, bottom-right, ...)")
	layoutCmd.Flags().BoolVar(&layoutOpts.json, "json", false, "Output as JSON")
}

// layoutEntry is one row of layout output.
type layoutEntry struct {
	Index   int         `json:"index"`
	Size    stack.Size  `json:"size"`
	Visible bool        `json:"visible"`
	Rect    *stack.Rect `json:"rect,omitempty"`
	Clipped bool        `json:"clipped,omitempty"`
}

func runLayout(cmd *cobra.Command, args []string) error {
	stackCfg := getConfig().StackConfig()
	if layoutOpts.position != "" {
		alignment, err := stack.Position(layoutOpts.position).Alignment()
		if err != nil {
			return err
		}
		stackCfg.Alignment = alignment
	}

	items := make([]stack.Item, len(args))
	for i, arg := range args {
		size, err := parseSize(arg)
		if err != nil {
			return err
		}
		items[i] = stack.Item{ID: toast.ID(i + 1), Size: size}
	}

	container := stack.Rect{Width: layoutOpts.width, Height: layoutOpts.height}
	placements := stack.NewEngine(stackCfg, logger).Layout(container, items)

	entries := make([]layoutEntry, len(items))
	for i, item := range items {
		entries[i] = layoutEntry{Index: i + 1, Size: item.Size}
	}
	for _, p := range placements {
		r := p.Rect
		entries[p.Index].Visible = true
		entries[p.Index].Rect = &r
		entries[p.Index].Clipped = p.Clipped
	}

	out := cmd.OutOrStdout()
	if layoutOpts.json {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	}

	fmt.Fprintf(out, "%s in %dx%d\n", stackCfg.Alignment.Position(), container.Width, container.Height)
	for _, e := range entries {
		if !e.Visible {
			fmt.Fprintf(out, "%3d  %dx%d  hidden\n", e.Index, e.Size.Width, e.Size.Height)
			continue
		}
		line := fmt.Sprintf("%3d  %dx%d  at %d,%d size %dx%d", e.Index, e.Size.Width, e.Size.Height,
			e.Rect.X, e.Rect.Y, e.Rect.Width, e.Rect.Height)
		if e.Clipped {
			line += " (clipped)"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

// parseSize parses "WxH".
func parseSize(s string) (stack.Size, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return stack.Size{}, fmt.Errorf("invalid size %q: want WxH", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return stack.Size{}, fmt.Errorf("invalid width in %q: %w", s, err)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return stack.Size{}, fmt.Errorf("invalid height in %q: %w", s, err)
	}
	if width <= 0 || height <= 0 {
		return stack.Size{}, fmt.Errorf("invalid size %q: must be positive", s)
	}
	return stack.Size{Width: width, Height: height}, nil
}
