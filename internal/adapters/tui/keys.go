package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the bindings the board responds to.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Reveal     key.Binding
	NewGame    key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	Quit       key.Binding
}

// DefaultKeys are arrows or hjkl to move, space or enter to reveal.
var DefaultKeys = KeyMap{ //nolint:gochecknoglobals // key table
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Reveal:     key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "reveal")),
	NewGame:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new game")),
	VolumeUp:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
	VolumeDown: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "volume down")),
	Quit:       key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reveal, k.NewGame, k.VolumeUp, k.VolumeDown, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Reveal, k.NewGame},
		{k.VolumeUp, k.VolumeDown, k.Quit},
	}
}
