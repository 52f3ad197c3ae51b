package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Focus      key.Binding
	FocusBack  key.Binding
	Up         key.Binding
	Down       key.Binding
	Insert     key.Binding
	MoveUp     key.Binding
	MoveDown   key.Binding
	Delete     key.Binding
	Collapse   key.Binding
	Borders    key.Binding
	Padding    key.Binding
	Undo       key.Binding
	Redo       key.Binding
	Copy       key.Binding
	Cancel     key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Help       key.Binding
	Quit       key.Binding
	Confirm    key.Binding
	Decline    key.Binding
	ModalFocus key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next pane")),
		FocusBack: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev pane")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Insert:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "insert block")),
		// Alt+arrows are not reported by every terminal; shift+arrows and
		// ctrl+k/j are fallbacks.
		MoveUp:     key.NewBinding(key.WithKeys("alt+up", "shift+up", "ctrl+k", "K"), key.WithHelp("alt+↑", "move up")),
		MoveDown:   key.NewBinding(key.WithKeys("alt+down", "shift+down", "ctrl+j", "J"), key.WithHelp("alt+↓", "move down")),
		Delete:     key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Collapse:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "collapse")),
		Borders:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "borders")),
		Padding:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "padding")),
		Undo:       key.NewBinding(key.WithKeys("ctrl+z", "u"), key.WithHelp("ctrl+z", "undo")),
		Redo:       key.NewBinding(key.WithKeys("ctrl+y", "ctrl+shift+z", "ctrl+r"), key.WithHelp("ctrl+y", "redo")),
		Copy:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy tree")),
		Cancel:     key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "cancel drag")),
		PageUp:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:    key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		Decline:    key.NewBinding(key.WithKeys("n", "esc", "ctrl+g"), key.WithHelp("n", "cancel")),
		ModalFocus: key.NewBinding(key.WithKeys("tab", "shift+tab", "left", "right", "h", "l")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Insert, k.MoveUp, k.Delete, k.Undo, k.Redo, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Focus, k.FocusBack, k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Insert, k.MoveUp, k.MoveDown, k.Delete, k.Collapse},
		{k.Undo, k.Redo, k.Borders, k.Padding, k.Copy},
		{k.Cancel, k.Help, k.Quit},
	}
}
