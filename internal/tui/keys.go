package tui

import "github.com/charmbracelet/bubbles/key"

// ─── Key Map ─────────────────────────────────────────────────────────────────

type keyMap struct {
	NextPane key.Binding
	PrevPane key.Binding
	New      key.Binding
	Save     key.Binding
	Preview  key.Binding
	Theme    key.Binding
	Delete   key.Binding
	Copy     key.Binding
	Pin      key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		NextPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next note")),
		PrevPane: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous note")),
		New:      key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new note")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Preview:  key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "preview")),
		Theme:    key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "color")),
		Delete:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Copy:     key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy markdown")),
		Pin:      key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "pin")),
		Help:     key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "help")),
		Quit:     key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "save & quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPane, k.New, k.Preview, k.Theme, k.Delete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Note actions
		{k.New, k.Save, k.Theme, k.Pin, k.Copy, k.Delete},
		// Navigation / app
		{k.NextPane, k.PrevPane, k.Preview, k.Help, k.Quit},
	}
}
