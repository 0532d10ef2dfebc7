package main

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts of the explorer
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Heap operations
	AllocBlob   key.Binding
	AllocRecord key.Binding
	Protect     key.Binding
	Collect     key.Binding
	Verify      key.Binding

	// Commands
	CopyStats key.Binding
	Esc       key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "go to bottom"),
		),

		AllocBlob: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "allocate blob"),
		),
		AllocRecord: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "allocate linked record"),
		),
		Protect: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p", "toggle root"),
		),
		Collect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "collect"),
		),
		Verify: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "verify"),
		),

		CopyStats: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy stats"),
		),
		Esc: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.AllocBlob,
		k.Protect,
		k.Collect,
		k.Help,
		k.Quit,
	}
}

// FullHelp returns all key bindings for the full help view
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.AllocBlob, k.AllocRecord, k.Protect, k.Collect, k.Verify},
		{k.CopyStats, k.Help, k.Quit},
	}
}
