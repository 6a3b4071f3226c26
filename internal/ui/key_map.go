package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Views with a text input only honor forceQuit, so q can be typed.
type keyMap struct {
	enter     key.Binding
	back      key.Binding
	add       key.Binding
	edit      key.Binding
	remove    key.Binding
	refresh   key.Binding
	next      key.Binding
	yes       key.Binding
	no        key.Binding
	quit      key.Binding
	forceQuit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rate")),
		remove:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		next:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next field")),
		yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:        key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		forceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.enter, k.back, k.add},
		{k.edit, k.remove, k.refresh},
		{k.yes, k.no, k.quit},
	}
}
