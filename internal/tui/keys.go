package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Reset  key.Binding
	Next   key.Binding
	Random key.Binding
	Again  key.Binding
	Quit   key.Binding
}

func newKeyMap(practice bool) keyMap {
	k := keyMap{
		Reset:  key.NewBinding(key.WithKeys("alt+r"), key.WithHelp("alt+r", "restart")),
		Next:   key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "next snippet")),
		Random: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "random snippet")),
		Again:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	}
	k.Next.SetEnabled(practice)
	k.Random.SetEnabled(practice)
	return k
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Reset, k.Next, k.Random, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Reset, k.Next, k.Random, k.Again, k.Quit}}
}

func (k keyMap) results() []key.Binding {
	return []key.Binding{k.Again, k.Reset, k.Quit}
}
