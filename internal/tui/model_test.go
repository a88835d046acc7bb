package tui

import (
	"os/exec"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/stack"
	"github.com/jmylchreest/toasty/internal/theme"
	"github.com/jmylchreest/toasty/internal/toast"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestModel(t *testing.T) (Model, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := New(config.DefaultConfig(), WithClock(clock.Now), WithTheme(theme.NewDefaultTheme(theme.ColorSchemeDark)))
	return update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24}), clock
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// pointAt returns a point inside the placement of the newest toast.
func pointAt(t *testing.T, m Model) (int, int) {
	t.Helper()
	require.NotEmpty(t, m.frame.Placements)
	r := m.frame.Placements[0].Rect
	return r.X + 1, r.Y
}

// runCmd executes cmd and flattens batches. Only use on commands that
// contain no timers.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, runCmd(c)...)
	}
	return msgs
}

func TestModel_InitialView(t *testing.T) {
	m := New(nil)
	assert.Equal(t, "Initializing...", m.View())

	m, _ = newTestModel(t)
	view := m.View()
	assert.Contains(t, view, "no toasts")
	assert.Len(t, strings.Split(view, "\n"), 24)
}

func TestModel_PushKeys(t *testing.T) {
	m, _ := newTestModel(t)

	for _, k := range []string{"i", "s", "w", "e"} {
		next, cmd := m.Update(keyPress(k))
		m = next.(Model)
		if k == "i" {
			assert.NotNil(t, cmd, "first push schedules a wake-up")
		}
	}

	active := m.toasts.Active()
	require.Len(t, active, 4)
	assert.Equal(t, toast.LevelInfo, active[0].Level)
	assert.Equal(t, toast.LevelSuccess, active[1].Level)
	assert.Equal(t, toast.LevelWarning, active[2].Level)
	assert.Equal(t, toast.LevelError, active[3].Level)
	assert.Equal(t, "Error #4", active[3].Title)

	view := m.View()
	assert.Contains(t, view, "Error #4")
	assert.Contains(t, view, "4 toasts")
	assert.Contains(t, view, "from now")
	assert.Len(t, strings.Split(view, "\n"), 24)
}

func TestModel_DismissNewestAndCloseAll(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, keyPress("i"))
	m = update(t, m, keyPress("w"))

	m = update(t, m, keyPress("x"))
	active := m.toasts.Active()
	require.Len(t, active, 1)
	assert.Equal(t, toast.LevelInfo, active[0].Level)

	m = update(t, m, keyPress("i"))
	m = update(t, m, keyPress("X"))
	assert.Equal(t, 0, m.toasts.Len())
	assert.Empty(t, m.frame.Placements)

	// Nothing to dismiss.
	m = update(t, m, keyPress("x"))
	assert.Equal(t, 0, m.toasts.Len())
}

func TestModel_WakeExpires(t *testing.T) {
	m, clock := newTestModel(t)
	m = update(t, m, keyPress("i"))
	require.Equal(t, 1, m.toasts.Len())

	clock.Advance(5 * time.Second)

	// A superseded wake-up does nothing.
	m = update(t, m, wakeMsg{gen: m.wakeGen - 1})
	assert.Equal(t, 1, m.toasts.Len())

	next, cmd := m.Update(wakeMsg{gen: m.wakeGen})
	m = next.(Model)
	assert.Equal(t, 0, m.toasts.Len())

	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	assert.IsType(t, toastDismissedMsg{}, msgs[0])

	m = update(t, m, msgs[0])
	assert.Contains(t, m.events[len(m.events)-1], "dismissed")
}

func TestModel_HoverKeepsToast(t *testing.T) {
	m, clock := newTestModel(t)
	m = update(t, m, keyPress("i"))

	x, y := pointAt(t, m)
	m = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion})
	assert.Contains(t, m.View(), "hovering")

	// Due, but the pointer is still resting on the stack.
	clock.Advance(5 * time.Second)
	m = update(t, m, wakeMsg{gen: m.wakeGen})
	require.Equal(t, 1, m.toasts.Len())

	// Pointer leaves after the grace period has run out.
	clock.Advance(2 * time.Second)
	m = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion})
	assert.Equal(t, 0, m.toasts.Len())
}

func TestModel_MouseDismiss(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, keyPress("i"))
	m = update(t, m, keyPress("s"))

	x, y := pointAt(t, m)
	next, cmd := m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	m = next.(Model)

	active := m.toasts.Active()
	require.Len(t, active, 1)
	assert.Equal(t, toast.LevelInfo, active[0].Level)
	assert.NotNil(t, cmd)
}

func TestModel_MouseDoAction(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, keyPress("a"))
	id := m.toasts.Active()[0].ID

	x, y := pointAt(t, m)
	next, cmd := m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(Model)
	assert.Equal(t, 0, m.toasts.Len())

	msgs := runCmd(cmd)
	require.Len(t, msgs, 2)
	assert.Equal(t, toastActionMsg{ID: id, Label: "Undo"}, msgs[0])
	assert.Equal(t, toastDismissedMsg{ID: id}, msgs[1])
}

func TestModel_MouseCloseAll(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, keyPress("i"))
	m = update(t, m, keyPress("e"))

	x, y := pointAt(t, m)
	m = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonMiddle})
	assert.Equal(t, 0, m.toasts.Len())
}

func TestModel_ClickOutsideStack(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, keyPress("i"))

	m = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	assert.Equal(t, 1, m.toasts.Len())
}

func TestModel_ConfigReload(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, keyPress("i"))
	require.Len(t, m.frame.Placements, 1)
	assert.Greater(t, m.frame.Placements[0].Rect.Y, 1)

	cfg := config.DefaultConfig()
	cfg.Display.Position = string(stack.PositionTopLeft)
	m = update(t, m, configReloadMsg{cfg: cfg})

	require.Len(t, m.frame.Placements, 1)
	assert.Equal(t, 1, m.frame.Placements[0].Rect.X)
	assert.Equal(t, 1, m.frame.Placements[0].Rect.Y)
	assert.Contains(t, m.events[len(m.events)-1], "config reloaded")
}

func TestModel_ConfigReloadTheme(t *testing.T) {
	m, _ := newTestModel(t)
	require.Equal(t, theme.DefaultThemeName, m.theme.Name)

	cfg := config.DefaultConfig()
	cfg.Theme.Name = "catppuccin"
	cfg.Theme.ColorScheme = string(theme.ColorSchemeLight)
	next, cmd := m.Update(configReloadMsg{cfg: cfg})
	m = next.(Model)

	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	loaded, ok := msgs[0].(themeLoadedMsg)
	require.True(t, ok)
	require.NoError(t, loaded.err)

	m = update(t, m, loaded)
	assert.Equal(t, "catppuccin", m.theme.Name)
	assert.Equal(t, theme.ColorSchemeLight, m.theme.Scheme)
	assert.Contains(t, m.events[len(m.events)-1], "theme catppuccin loaded")

	// Same theme again: nothing to load.
	_, cmd = m.Update(configReloadMsg{cfg: cfg})
	assert.Nil(t, cmd)
}

func TestModel_ConfigReloadUnknownTheme(t *testing.T) {
	m, _ := newTestModel(t)

	cfg := config.DefaultConfig()
	cfg.Theme.Name = "does-not-exist"
	next, cmd := m.Update(configReloadMsg{cfg: cfg})
	m = next.(Model)

	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	m = update(t, m, msgs[0])
	assert.Equal(t, theme.DefaultThemeName, m.theme.Name)
}

func TestModel_ToastsStayInsidePlacements(t *testing.T) {
	t.Run("height cap", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Display.MaxHeight = 1
		cfg.Display.MinHeight = 1
		m := New(cfg, WithTheme(theme.NewDefaultTheme(theme.ColorSchemeDark)))
		m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
		m = update(t, m, keyPress("i"))
		m = update(t, m, keyPress("i"))

		require.Len(t, m.frame.Placements, 2)
		newest, older := m.frame.Placements[0].Rect, m.frame.Placements[1].Rect
		require.Equal(t, 1, newest.Height)
		require.Equal(t, 1, older.Height)

		lines := strings.Split(m.View(), "\n")
		assert.Contains(t, lines[newest.Y], "Info #2")
		assert.Contains(t, lines[older.Y], "Info #1")
		for row := older.Y + 1; row < newest.Y; row++ {
			assert.NotContains(t, lines[row], "┃", "row %d is between toasts", row)
		}
		assert.NotContains(t, lines[newest.Y+1], "┃")
	})

	t.Run("narrow window", func(t *testing.T) {
		m, _ := newTestModel(t)
		m = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 24})
		m = update(t, m, keyPress("w"))

		require.Len(t, m.frame.Placements, 1)
		pl := m.frame.Placements[0]
		assert.LessOrEqual(t, pl.Rect.Width, 28)
		assert.LessOrEqual(t, lipgloss.Width(m.rendered[pl.ID]), pl.Rect.Width)

		lines := strings.Split(m.View(), "\n")
		for row := pl.Rect.Y; row < pl.Rect.Y+pl.Rect.Height; row++ {
			assert.LessOrEqual(t, ansi.StringWidth(lines[row]), 30, "row %d", row)
		}
	})
}

func TestModel_LayoutDropsDueToasts(t *testing.T) {
	m, clock := newTestModel(t)
	m = update(t, m, keyPress("i"))

	// The wake-up has not been delivered yet, but the next redraw must not
	// show the expired toast.
	clock.Advance(5 * time.Second)
	m = update(t, m, keyPress("s"))

	active := m.toasts.Active()
	require.Len(t, active, 1)
	assert.Equal(t, toast.LevelSuccess, active[0].Level)
	require.Len(t, m.frame.Placements, 1)
	assert.NotContains(t, m.View(), "Info #1")
}

func TestButtonName(t *testing.T) {
	tests := []struct {
		button tea.MouseButton
		want   string
	}{
		{tea.MouseButtonLeft, "left"},
		{tea.MouseButtonMiddle, "middle"},
		{tea.MouseButtonRight, "right"},
		{tea.MouseButtonWheelUp, ""},
		{tea.MouseButtonNone, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, buttonName(tt.button))
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	short := m.contentHeight()

	m = update(t, m, keyPress("?"))
	assert.True(t, m.showHelp)
	assert.Less(t, m.contentHeight(), short)
	assert.Len(t, strings.Split(m.View(), "\n"), 24)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(keyPress("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestTokenCmds(t *testing.T) {
	assert.Nil(t, tokenCmds(nil))
	assert.Nil(t, tokenCmds([]tea.Msg{nil}))

	msgs := runCmd(tokenCmds([]tea.Msg{toastDismissedMsg{ID: 1}, toastDismissedMsg{ID: 2}}))
	assert.Equal(t, []tea.Msg{toastDismissedMsg{ID: 1}, toastDismissedMsg{ID: 2}}, msgs)
}

func TestRenderToast(t *testing.T) {
	style := theme.Resolve(toast.LevelWarning, nil)

	short := toast.Toast[tea.Msg]{Message: "Saved"}
	out := renderToast(short, style, 40)
	assert.Equal(t, stack.Size{Width: len("Saved") + 3, Height: 1}, measure(out))

	long := toast.Toast[tea.Msg]{
		Title:   "Upload",
		Message: strings.Repeat("word ", 30),
		Action:  &toast.Action[tea.Msg]{Label: "Retry"},
	}
	out = renderToast(long, style, 30)
	size := measure(out)
	assert.LessOrEqual(t, size.Width, 30)
	assert.Greater(t, size.Height, 3)
	assert.Contains(t, out, "Retry")
}

func TestOverlay(t *testing.T) {
	base := []string{"hello world", "ab", "untouched"}
	overlay(base, "XX\nZ", 2, 0)
	assert.Equal(t, "heXXo world", base[0])
	assert.Equal(t, "abZ", base[1])
	assert.Equal(t, "untouched", base[2])

	base = []string{"ab"}
	overlay(base, "Z\nY", 4, 0)
	assert.Equal(t, []string{"ab  Z"}, base)
}

func TestFitAndFitLines(t *testing.T) {
	assert.Equal(t, "a\nb", fit("a\nb\nc", stack.Rect{Width: 5, Height: 2}))
	assert.Equal(t, "a", fit("a", stack.Rect{Width: 5, Height: 3}))
	assert.Equal(t, "abc\nde", fit("abcdef\nde", stack.Rect{Width: 3, Height: 2}))
	assert.Equal(t, 2, lipgloss.Height(fit("a\nb\nc", stack.Rect{Width: 1, Height: 2})))
	assert.Equal(t, []string{"a", "", ""}, fitLines("a", 3))
	assert.Equal(t, []string{"a"}, fitLines("a\nb", 1))
}

func TestClipboardArgs(t *testing.T) {
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	installed := map[string]bool{}
	lookPath = func(file string) (string, error) {
		if installed[file] {
			return "/usr/bin/" + file, nil
		}
		return "", exec.ErrNotFound
	}

	assert.Nil(t, clipboardArgs(nil))
	assert.ErrorIs(t, copyText("x", nil), errNoClipboard)

	installed["xsel"] = true
	installed["pbcopy"] = true
	assert.Equal(t, []string{"xsel", "--clipboard", "--input"}, clipboardArgs(nil))

	cfg := config.DefaultConfig()
	cfg.Clipboard.Command = "  "
	assert.Equal(t, []string{"xsel", "--clipboard", "--input"}, clipboardArgs(cfg))

	cfg.Clipboard.Command = "tmux load-buffer -"
	assert.Equal(t, []string{"tmux", "load-buffer", "-"}, clipboardArgs(cfg))
}
