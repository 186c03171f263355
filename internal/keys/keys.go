// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// Common bindings shared by every component.
var Common = struct {
	Enter  key.Binding
	Escape key.Binding
	Quit   key.Binding
}{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// Component bindings for list-like widgets where j/k would clash with typing.
var Component = struct {
	Next key.Binding
	Prev key.Binding
}{
	Next: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓/ctrl+n", "next"),
	),
	Prev: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑/ctrl+p", "previous"),
	),
}

// ConsoleKeyMap holds the console prompt bindings.
type ConsoleKeyMap struct {
	Execute     key.Binding
	Complete    key.Binding
	HistoryPrev key.Binding
	HistoryNext key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	ClearOutput key.Binding
	ToggleLogs  key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// Console is the console prompt keymap.
var Console = ConsoleKeyMap{
	Execute: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run"),
	),
	Complete: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "complete"),
	),
	HistoryPrev: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous command"),
	),
	HistoryNext: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next command"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "scroll down"),
	),
	ClearOutput: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear output"),
	),
	ToggleLogs: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "logs"),
	),
	Help: key.NewBinding(
		key.WithKeys("ctrl+_", "f1"),
		key.WithHelp("f1", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "ctrl+d"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k ConsoleKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Execute, k.Complete, k.HistoryPrev, k.ToggleLogs, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k ConsoleKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Execute, k.Complete, k.HistoryPrev, k.HistoryNext},
		{k.ScrollUp, k.ScrollDown, k.ClearOutput},
		{k.ToggleLogs, k.Help, k.Quit},
	}
}

// LogOverlay bindings for the log viewer.
var LogOverlay = struct {
	Close        key.Binding
	Clear        key.Binding
	LevelDebug   key.Binding
	LevelInfo    key.Binding
	LevelWarn    key.Binding
	LevelError   key.Binding
	NextCategory key.Binding
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
}{
	Close: key.NewBinding(
		key.WithKeys("esc", "ctrl+x"),
		key.WithHelp("esc", "close"),
	),
	Clear:        key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	LevelDebug:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "debug")),
	LevelInfo:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "info")),
	LevelWarn:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "warn")),
	LevelError:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "error")),
	NextCategory: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "category")),
	Up:           key.NewBinding(key.WithKeys("k", "up")),
	Down:         key.NewBinding(key.WithKeys("j", "down")),
	Top:          key.NewBinding(key.WithKeys("g")),
	Bottom:       key.NewBinding(key.WithKeys("G")),
}
