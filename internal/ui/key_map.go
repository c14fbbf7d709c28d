package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	upload  key.Binding
	project key.Binding
	enter   key.Binding
	back    key.Binding
	browse  key.Binding
	reset   key.Binding
	open    key.Binding
	dismiss key.Binding
	quit    key.Binding
	exit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		upload:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "upload")),
		project: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "project")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		browse:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "browse")),
		reset:   key.NewBinding(key.WithKeys("r", "enter"), key.WithHelp("r", "reset")),
		open:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open file")),
		dismiss: key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter", "dismiss")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		exit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.upload, k.project, k.enter},
		{k.back, k.browse, k.reset, k.open},
		{k.dismiss, k.quit},
	}
}
