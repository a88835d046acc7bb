package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toasty/internal/toast"
)

// Style holds the resolved colors for one toast.
type Style struct {
	Text       lipgloss.Color
	Background lipgloss.Color
	Border     lipgloss.Color
}

// Resolver maps a toast level and theme to colors.
type Resolver interface {
	Resolve(level toast.Level, t *Theme) Style
}

// ResolverFunc adapts a plain function to a Resolver.
type ResolverFunc func(level toast.Level, t *Theme) Style

// Resolve calls f(level, t).
func (f ResolverFunc) Resolve(level toast.Level, t *Theme) Style {
	return f(level, t)
}

// DefaultResolver colors the border by level and takes text and
// background from the theme.
var DefaultResolver Resolver = ResolverFunc(Resolve)

// Resolve is the default style function. A nil theme uses the bundled
// default in dark mode.
func Resolve(level toast.Level, t *Theme) Style {
	if t == nil {
		t = NewDefaultTheme(ColorSchemeDark)
	}
	c := t.Colors()
	return Style{
		Text:       lipgloss.Color(c.Text),
		Background: lipgloss.Color(c.Background),
		Border:     lipgloss.Color(LevelColor(c, level)),
	}
}

// LevelColor returns the accent color for level.
func LevelColor(c Colors, level toast.Level) string {
	switch level {
	case toast.LevelSuccess:
		return c.Success
	case toast.LevelWarning:
		return c.Warning
	case toast.LevelError:
		return c.Error
	default:
		return c.Info
	}
}
