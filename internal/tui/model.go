// Package tui provides a BubbleTea host that overlays the toast stack on
// top of ordinary terminal content.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/manager"
	"github.com/jmylchreest/toasty/internal/stack"
	"github.com/jmylchreest/toasty/internal/theme"
	"github.com/jmylchreest/toasty/internal/toast"
)

// toastDismissedMsg is the dismiss token of every toast.
type toastDismissedMsg struct {
	ID toast.ID
}

// toastActionMsg is the action token of toasts pushed with an action.
type toastActionMsg struct {
	ID    toast.ID
	Label string
}

// wakeMsg fires when the earliest toast is due. Only the latest
// generation is acted on.
type wakeMsg struct {
	gen int
}

// configReloadMsg carries a config loaded by the file watcher.
type configReloadMsg struct {
	cfg *config.Config
}

// themeLoadedMsg carries the theme named by a reloaded config.
type themeLoadedMsg struct {
	theme *theme.Theme
	err   error
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

// Model is the main TUI model.
type Model struct {
	// Configuration
	cfg       *config.Config
	theme     *theme.Theme
	themesDir string
	resolver  theme.Resolver
	logger    *slog.Logger
	clock     func() time.Time

	// Toasts
	toasts   *manager.Manager[tea.Msg]
	frame    manager.Frame[tea.Msg]
	rendered map[toast.ID]string
	pointer  *stack.Point
	wakeGen  int
	pushed   int

	// Components
	viewport viewport.Model
	help     help.Model
	keys     KeyMap

	// State
	events   []string
	width    int
	height   int
	ready    bool
	showHelp bool

	// Status message
	statusMsg string
	statusErr bool
}

// Option configures a Model.
type Option func(*Model)

// WithTheme sets the palette toasts are drawn with.
func WithTheme(t *theme.Theme) Option {
	return func(m *Model) { m.theme = t }
}

// WithThemesDir sets the user themes directory searched when the config
// names a different theme.
func WithThemesDir(dir string) Option {
	return func(m *Model) { m.themesDir = dir }
}

// WithResolver replaces the level-to-style function.
func WithResolver(r theme.Resolver) Option {
	return func(m *Model) { m.resolver = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithClock sets the time source.
func WithClock(clock func() time.Time) Option {
	return func(m *Model) { m.clock = clock }
}

// New creates a new TUI model.
func New(cfg *config.Config, opts ...Option) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	m := Model{
		cfg:      cfg,
		resolver: theme.DefaultResolver,
		logger:   slog.Default(),
		clock:    time.Now,
		help:     help.New(),
		keys:     DefaultKeyMap(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.theme == nil {
		m.theme = theme.NewDefaultTheme(cfg.ColorScheme())
	}

	m.toasts = manager.New[tea.Msg](cfg,
		manager.WithClock[tea.Msg](m.clock),
		manager.WithLogger[tea.Msg](m.logger),
		manager.WithDismissMessage(func(id toast.ID) tea.Msg {
			return toastDismissedMsg{ID: id}
		}),
	)

	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		m.viewport = viewport.New(msg.Width, m.contentHeight())
		m.viewport.SetContent(strings.Join(m.events, "\n"))
		m.viewport.GotoBottom()
		m.help.Width = msg.Width

		m.relayout()
		return m, nil

	case wakeMsg:
		if msg.gen != m.wakeGen {
			return m, nil
		}
		m.toasts.WakeupFired()
		return m.sync(nil)

	case toastDismissedMsg:
		m.logEvent(fmt.Sprintf("toast #%d dismissed", msg.ID))
		return m, nil

	case toastActionMsg:
		m.logEvent(fmt.Sprintf("toast #%d action %q", msg.ID, msg.Label))
		return m, nil

	case configReloadMsg:
		prev := m.cfg
		m.cfg = msg.cfg
		m.toasts.UpdateConfig(msg.cfg)
		m.logEvent("config reloaded")

		var cmd tea.Cmd
		if prev.Theme != msg.cfg.Theme {
			cmd = m.loadTheme(msg.cfg.Theme.Name, msg.cfg.ColorScheme())
		}
		return m.sync(cmd)

	case themeLoadedMsg:
		if msg.err != nil {
			m.logger.Warn("failed to reload theme", "error", msg.err)
			return m, status("Theme reload failed: "+msg.err.Error(), true)
		}
		m.theme = msg.theme
		m.logEvent(fmt.Sprintf("theme %s loaded", msg.theme.Name))
		return m.sync(nil)

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, status("Copy failed: "+msg.err.Error(), true)
		}
		return m, status("Copied to clipboard", false)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.PushInfo):
		return m.push(toast.LevelInfo, false)
	case key.Matches(msg, m.keys.PushSuccess):
		return m.push(toast.LevelSuccess, false)
	case key.Matches(msg, m.keys.PushWarning):
		return m.push(toast.LevelWarning, false)
	case key.Matches(msg, m.keys.PushError):
		return m.push(toast.LevelError, false)
	case key.Matches(msg, m.keys.PushAction):
		return m.push(toast.LevelInfo, true)

	case key.Matches(msg, m.keys.Dismiss):
		active := m.toasts.Active()
		if len(active) == 0 {
			return m, nil
		}
		return m.dismiss(active[len(active)-1].ID)

	case key.Matches(msg, m.keys.CloseAll):
		return m.sync(tokenCmds(m.toasts.DismissAll()))

	case key.Matches(msg, m.keys.Copy):
		active := m.toasts.Active()
		if len(active) == 0 {
			return m, nil
		}
		return m, m.copyToClipboard(active[len(active)-1].Message)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleMouse treats every mouse event as a pointer sample and applies
// button presses to the toast under the pointer.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := stack.Point{X: msg.X, Y: msg.Y}
	m.pointer = &p

	cmds := []tea.Cmd{m.tick()}

	if msg.Action == tea.MouseActionPress {
		if id, ok := m.toasts.At(p); ok {
			cmds = append(cmds, m.click(id, msg.Button))
		} else {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m.sync(tea.Batch(cmds...))
}

// click runs the configured mouse action on a toast.
func (m Model) click(id toast.ID, button tea.MouseButton) tea.Cmd {
	switch m.cfg.MouseActionFor(buttonName(button)) {
	case config.MouseActionDismiss:
		token, _ := m.toasts.Dismiss(id)
		return tokenCmds([]tea.Msg{token})
	case config.MouseActionDoAction:
		var tokens []tea.Msg
		if action, ok := m.toasts.Activate(id); ok {
			if a, ok := action.(toastActionMsg); ok {
				a.ID = id
				action = a
			}
			tokens = append(tokens, action)
		}
		if token, ok := m.toasts.Dismiss(id); ok {
			tokens = append(tokens, token)
		}
		return tokenCmds(tokens)
	case config.MouseActionCloseAll:
		return tokenCmds(m.toasts.DismissAll())
	default:
		return nil
	}
}

// buttonName is the config spelling of a mouse button.
func buttonName(b tea.MouseButton) string {
	switch b {
	case tea.MouseButtonLeft:
		return "left"
	case tea.MouseButtonMiddle:
		return "middle"
	case tea.MouseButtonRight:
		return "right"
	default:
		return ""
	}
}

func (m Model) push(level toast.Level, withAction bool) (tea.Model, tea.Cmd) {
	m.pushed++
	n := toast.Notice[tea.Msg]{
		Level:   level,
		Title:   fmt.Sprintf("%s #%d", strings.ToUpper(level.String()[:1])+level.String()[1:], m.pushed),
		Message: sampleMessages[m.pushed%len(sampleMessages)],
	}
	if withAction {
		// Activation fills in the toast id.
		n.Action = &toast.Action[tea.Msg]{Label: "Undo", Token: toastActionMsg{Label: "Undo"}}
	}
	id := m.toasts.Push(n)

	m.logEvent(fmt.Sprintf("toast #%d pushed (%s)", id, level))
	return m.sync(nil)
}

func (m Model) dismiss(id toast.ID) (tea.Model, tea.Cmd) {
	token, ok := m.toasts.Dismiss(id)
	if !ok {
		return m, nil
	}
	return m.sync(tokenCmds([]tea.Msg{token}))
}

// tick applies the current time and pointer sample, returning the dismiss
// messages of expired toasts.
func (m Model) tick() tea.Cmd {
	return tokenCmds(m.toasts.Tick(m.clock(), m.pointer))
}

// sync expires due toasts, lays the stack out again and makes sure a
// wake-up is pending for the next expiry.
func (m Model) sync(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	cmd = tea.Batch(m.tick(), cmd)
	m.relayout()

	wait, ok := m.toasts.NextWakeup(m.clock())
	if !ok {
		return m, cmd
	}
	m.wakeGen++
	gen := m.wakeGen
	wake := tea.Tick(wait, func(time.Time) tea.Msg {
		return wakeMsg{gen: gen}
	})
	return m, tea.Batch(cmd, wake)
}

// relayout renders every active toast and computes the stack placements.
func (m *Model) relayout() {
	if !m.ready {
		return
	}

	maxWidth := m.cfg.Display.MaxWidth
	rendered := make(map[toast.ID]string)
	m.frame = m.toasts.Frame(m.stackArea(), func(t toast.Toast[tea.Msg]) stack.Size {
		s := renderToast(t, m.resolver.Resolve(t.Level, m.theme), maxWidth)
		rendered[t.ID] = s
		return measure(s)
	})

	// Wrap again at the width the layout gave toasts it narrowed.
	for _, pl := range m.frame.Placements {
		if lipgloss.Width(rendered[pl.ID]) > pl.Rect.Width {
			t := m.frame.Toast(pl)
			rendered[pl.ID] = renderToast(t, m.resolver.Resolve(t.Level, m.theme), pl.Rect.Width)
		}
	}
	m.rendered = rendered
}

// loadTheme loads a theme off the update loop.
func (m Model) loadTheme(name string, scheme theme.ColorScheme) tea.Cmd {
	dir := m.themesDir
	return func() tea.Msg {
		t, err := theme.Load(dir, name, scheme)
		return themeLoadedMsg{theme: t, err: err}
	}
}

// stackArea is the region toasts are laid out in: everything above the footer.
func (m Model) stackArea() stack.Rect {
	return stack.Rect{Width: m.width, Height: m.contentHeight()}
}

func (m Model) contentHeight() int {
	return max(m.height-m.footerHeight(), 0)
}

func (m Model) footerHeight() int {
	return 1 + lipgloss.Height(m.help.View(m.keys))
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	m.viewport.Width = m.width
	m.viewport.Height = m.contentHeight()
	m.relayout()
}

// logEvent appends a line to the event log shown under the toasts.
func (m *Model) logEvent(text string) {
	line := fmt.Sprintf("%s  %s", m.clock().Format("15:04:05.000"), text)
	m.events = append(m.events, line)
	m.logger.Debug("tui event", "event", text)

	if m.ready {
		m.viewport.SetContent(strings.Join(m.events, "\n"))
		m.viewport.GotoBottom()
	}
}

func (m Model) copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return copyResultMsg{err: copyText(text, m.cfg)}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	base := fitLines(m.viewport.View(), m.contentHeight())
	for _, pl := range m.frame.Placements {
		overlay(base, fit(m.rendered[pl.ID], pl.Rect), pl.Rect.X, pl.Rect.Y)
	}

	return strings.Join(base, "\n") + "\n" + m.statusLine() + "\n" + m.help.View(m.keys)
}

// statusLine summarises the stack, or shows a transient status message.
func (m Model) statusLine() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	if m.statusMsg != "" {
		if m.statusErr {
			return style.Foreground(lipgloss.Color("9")).Render(m.statusMsg)
		}
		return style.Foreground(lipgloss.Color("7")).Render(m.statusMsg)
	}

	n := m.toasts.Len()
	if n == 0 {
		return style.Render("no toasts")
	}

	parts := []string{fmt.Sprintf("%d %s", n, plural(n, "toast", "toasts"))}
	if hidden := m.frame.Hidden(); hidden > 0 {
		parts = append(parts, fmt.Sprintf("%d hidden", hidden))
	}
	if next, ok := m.toasts.NextExpiry(); ok {
		parts = append(parts, "next expires "+humanize.RelTime(next, m.clock(), "ago", "from now"))
	}
	if m.pointer != nil && m.toasts.Hovering(*m.pointer) {
		parts = append(parts, "hovering")
	}

	line := strings.Join(parts, " · ")
	if m.width > 0 && ansi.StringWidth(line) > m.width {
		line = ansi.Truncate(line, m.width, "…")
	}
	return style.Render(line)
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// tokenCmds delivers toast tokens back into the program as messages.
func tokenCmds(tokens []tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, token := range tokens {
		if token == nil {
			continue
		}
		cmds = append(cmds, func() tea.Msg { return token })
	}
	return tea.Batch(cmds...)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

var sampleMessages = []string{
	"Build finished in 42s",
	"3 files changed, 120 insertions(+), 18 deletions(-)",
	"Connection to the server was lost. Retrying in a few seconds.",
	"Settings saved",
	"Disk usage is above 90% on /home",
}
