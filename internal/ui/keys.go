package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	Quit    key.Binding
	Help    key.Binding
	Escape  key.Binding
	Confirm key.Binding

	PrevDay key.Binding
	NextDay key.Binding
	Today   key.Binding
	Refresh key.Binding

	Up   key.Binding
	Down key.Binding

	AddFood  key.Binding
	Remove   key.Binding
	MoreQty  key.Binding
	LessQty  key.Binding
	Undo     key.Binding
	CopyPrev key.Binding
	EditGoal key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel input"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),

		PrevDay: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "Previous day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "Next day"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Jump to today"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "Select previous item"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "Select next item"),
		),

		AddFood: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Log food"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "Remove item"),
		),
		MoreQty: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Increase quantity"),
		),
		LessQty: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Decrease quantity"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Undo last log"),
		),
		CopyPrev: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Copy yesterday"),
		),
		EditGoal: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "Set calorie goal"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.AddFood, k.Remove, k.PrevDay, k.NextDay, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevDay, k.NextDay, k.Today, k.Refresh},
		{k.Up, k.Down, k.AddFood, k.Remove},
		{k.MoreQty, k.LessQty, k.Undo, k.CopyPrev},
		{k.EditGoal, k.Help, k.Quit},
	}
}
