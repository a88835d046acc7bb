package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the TUI.
type KeyMap struct {
	// Scrolling the event log
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Toasts
	PushInfo    key.Binding
	PushSuccess key.Binding
	PushWarning key.Binding
	PushError   key.Binding
	PushAction  key.Binding
	Dismiss     key.Binding
	CloseAll    key.Binding
	Copy        key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PushInfo, k.PushAction, k.Dismiss, k.CloseAll, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PushInfo, k.PushSuccess, k.PushWarning, k.PushError, k.PushAction},
		{k.Dismiss, k.CloseAll, k.Copy},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "page down"),
		),
		PushInfo: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "info"),
		),
		PushSuccess: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "success"),
		),
		PushWarning: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "warning"),
		),
		PushError: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "error"),
		),
		PushAction: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "with action"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss newest"),
		),
		CloseAll: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "close all"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy newest"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
