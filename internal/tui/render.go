package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jmylchreest/toasty/internal/stack"
	"github.com/jmylchreest/toasty/internal/theme"
	"github.com/jmylchreest/toasty/internal/toast"
)

// toastBorder draws only a thick bar on the left edge.
var toastBorder = lipgloss.Border{Left: "┃"}

// renderToast draws a toast no wider than maxWidth cells (0 = unbounded).
func renderToast[M any](t toast.Toast[M], style theme.Style, maxWidth int) string {
	textStyle := lipgloss.NewStyle().Foreground(style.Text)

	var lines []string
	if t.HasTitle() {
		lines = append(lines, textStyle.Bold(true).Render(t.Title))
	}
	lines = append(lines, textStyle.Render(t.Message))
	if t.Action != nil {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(style.Border).
			Underline(true).
			Render(t.Action.Label))
	}
	body := strings.Join(lines, "\n")

	box := lipgloss.NewStyle().
		Background(style.Background).
		Border(toastBorder, false, false, false, true).
		BorderForeground(style.Border).
		BorderBackground(style.Background).
		Padding(0, 1)

	// Border and padding take three cells.
	const chrome = 3
	if maxWidth > 0 && lipgloss.Width(body)+chrome > maxWidth {
		inner := max(maxWidth-chrome, 1)
		box = box.Width(inner + 2) // Width includes padding
	}

	return box.Render(body)
}

// measure returns the size a rendered block occupies.
func measure(s string) stack.Size {
	return stack.Size{Width: lipgloss.Width(s), Height: lipgloss.Height(s)}
}

// fit cuts a rendered block down to the size of its placement.
func fit(s string, r stack.Rect) string {
	lines := strings.Split(s, "\n")
	if r.Height < len(lines) {
		lines = lines[:max(r.Height, 0)]
	}
	for i, line := range lines {
		if ansi.StringWidth(line) > r.Width {
			lines[i] = ansi.Truncate(line, r.Width, "")
		}
	}
	return strings.Join(lines, "\n")
}

// overlay draws box over base with its top-left corner at (x, y). Rows and
// columns outside base are dropped.
func overlay(base []string, box string, x, y int) {
	for i, line := range strings.Split(box, "\n") {
		row := y + i
		if row < 0 || row >= len(base) {
			continue
		}

		bg := base[row]
		if w := ansi.StringWidth(bg); w < x {
			bg += strings.Repeat(" ", x-w)
		}

		left := ansi.Truncate(bg, x, "")
		right := ansi.TruncateLeft(bg, x+ansi.StringWidth(line), "")
		base[row] = left + line + right
	}
}

// fitLines returns s split into exactly height lines.
func fitLines(s string, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}
