// Package keymap defines the key bindings of the interactive face.
package keymap

import "github.com/charmbracelet/bubbles/key"

// Face holds the bindings of `tos face --tui`. Printable keys go to the
// command prompt, so every default here is a control or modified key.
type Face struct {
	Submit     key.Binding
	Quit       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Bezel      key.Binding
	Help       key.Binding
}

// DefaultFace returns the stock bindings.
func DefaultFace() Face {
	return Face{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "dispatch"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("alt+down", "ctrl+n"),
			key.WithHelp("alt+↓", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("alt+up", "ctrl+p"),
			key.WithHelp("alt+↑", "zoom out"),
		),
		Bezel: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("ctrl+b", "bezel"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
	}
}

// Load returns the stock bindings with overrides applied.
func Load(overrides map[string][]string) Face {
	km := DefaultFace()
	ApplyOverrides(&km, overrides)
	return km
}

// ShortHelp implements help.KeyMap.
func (k Face) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.ZoomIn, k.ZoomOut, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k Face) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Quit, k.Help},
		{k.ZoomIn, k.ZoomOut, k.Bezel},
		{k.ScrollUp, k.ScrollDown},
	}
}
