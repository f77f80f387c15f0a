package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	back      key.Binding
	search    key.Binding
	favOnly   key.Binding
	toggleFav key.Binding
	add       key.Binding
	edit      key.Binding
	delete    key.Binding
	refresh   key.Binding
	yes       key.Binding
	no        key.Binding
	next      key.Binding
	prev      key.Binding
	submit    key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		favOnly:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorites only")),
		toggleFav: key.NewBinding(key.WithKeys("*"), key.WithHelp("*", "favorite")),
		add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		edit:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:        key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		next:      key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		prev:      key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.favOnly, k.toggleFav, k.add, k.edit, k.delete, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.search, k.favOnly, k.toggleFav, k.refresh},
		{k.add, k.edit, k.delete, k.quit},
	}
}
