package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the dashboard.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	panel    key.Binding
	toggle   key.Binding
	next     key.Binding
	prev     key.Binding
	seekFwd  key.Binding
	seekBack key.Binding
	volUp    key.Binding
	volDown  key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play selected")),
		panel:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch panel")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		seekFwd:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "seek +10s")),
		seekBack: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "seek -10s")),
		volUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		volDown:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.panel, k.enter, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.panel},
		{k.toggle, k.next, k.prev},
		{k.seekFwd, k.seekBack, k.volUp, k.volDown},
		{k.quit},
	}
}
