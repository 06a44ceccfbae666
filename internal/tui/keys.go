package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the desk TUI.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding

	Generate     key.Binding
	EditText     key.Binding
	EditStatus   key.Binding
	EditApprover key.Binding
	Save         key.Binding
	Approve      key.Binding
	Post         key.Binding
	Leave        key.Binding // Leave an input, keeping its value.

	ResetOne key.Binding
	ResetAll key.Binding
	Refresh  key.Binding

	Confirm key.Binding
	Cancel  key.Binding

	Dismiss key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("PgUp", "scroll up"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("PgDn", "scroll down"),
	),
	Generate: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "generate"),
	),
	EditText: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit text"),
	),
	EditStatus: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "status"),
	),
	EditApprover: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "approver"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("C-s", "save edit"),
	),
	Approve: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "approve"),
	),
	Post: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "post to CRM"),
	),
	Leave: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "done"),
	),
	ResetOne: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset thread"),
	),
	ResetAll: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "reset all"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("f5"),
		key.WithHelp("F5", "refresh"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "enter"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n", "cancel"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "dismiss"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k KeyMap) listHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Refresh, k.ResetAll, k.Quit}
}

func (k KeyMap) detailHelp() []key.Binding {
	return []key.Binding{k.Generate, k.EditText, k.EditStatus, k.EditApprover, k.Save, k.Approve, k.Post, k.ResetOne, k.Dismiss}
}
