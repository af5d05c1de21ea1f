package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] set for the harvest workflow. List
// navigation keys come from the bubbles list itself.
type keyMap struct {
	harvest key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		harvest: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "harvest")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		no:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "cancel")),
		restart: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "back to tracks")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.harvest, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.harvest, k.back},
		{k.yes, k.no},
		{k.restart, k.quit},
	}
}
