package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/toasty/internal/theme"
	"github.com/jmylchreest/toasty/internal/toast"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Long: `List the bundled themes and any user themes in ~/.config/toasty/themes.
A user theme with the same name as a bundled one replaces it.

Each theme is shown with a sample of its level colors.`,
	RunE: runThemes,
}

func init() {
	rootCmd.AddCommand(themesCmd)
}

func runThemes(cmd *cobra.Command, args []string) error {
	dir, err := theme.ThemesDir()
	if err != nil {
		dir = ""
	}

	themes, err := theme.ListAvailableThemes(dir)
	if err != nil {
		logger.Warn("failed to read user themes", "dir", dir, "error", err)
	}

	c := getConfig()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, info := range themes {
		th, err := theme.Load(dir, info.Name, c.ColorScheme())
		if err != nil {
			logger.Warn("skipping theme", "theme", info.Name, "error", err)
			continue
		}

		source := "bundled"
		if !info.IsBundled {
			source = info.Path
		}
		marker := " "
		if info.Name == c.Theme.Name {
			marker = "*"
		}

		fmt.Fprintf(w, "%s %s\t%s\t%s\n", marker, info.Name, swatch(th), source)
	}
	return w.Flush()
}

// swatch renders one block per level in its theme color.
func swatch(th *theme.Theme) string {
	var s string
	for _, level := range toast.Levels() {
		style := theme.DefaultResolver.Resolve(level, th)
		s += lipgloss.NewStyle().Foreground(style.Border).Render("██")
	}
	return s
}
