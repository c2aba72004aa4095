package keys

import "github.com/charmbracelet/bubbles/key"

// SessionKeys are the bindings of the live write session view
type SessionKeys struct {
	Quit key.Binding
	Help key.Binding
}

func NewSessionKeys() SessionKeys {
	return SessionKeys{
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "hide view, keep writing"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

func (k SessionKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

func (k SessionKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Help, k.Quit},
	}
}
