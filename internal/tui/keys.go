package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	New         key.Binding
	Edit        key.Binding
	Delete      key.Binding
	Unset       key.Binding
	Add         key.Binding
	Rename      key.Binding
	Recolor     key.Binding
	Summary     key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
	Confirm     key.Binding
	PrevYear    key.Binding
	NextYear    key.Binding
	PrevMonth   key.Binding
	NextMonth   key.Binding
	NextTracker key.Binding
	Export      key.Binding
	Import      key.Binding
	Tab1        key.Binding
	Tab2        key.Binding
	Tab3        key.Binding
	Tab4        key.Binding
	Tab5        key.Binding
	Tab         key.Binding
	Help        key.Binding
	Enter       key.Binding
	Back        key.Binding
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Unset: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "unset"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add option"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	Recolor: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "recolor"),
	),
	Summary: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "toggle summary"),
	),
	MoveUp: key.NewBinding(
		key.WithKeys("K", "shift+up"),
		key.WithHelp("K", "move up"),
	),
	MoveDown: key.NewBinding(
		key.WithKeys("J", "shift+down"),
		key.WithHelp("J", "move down"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	PrevYear: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "prev year"),
	),
	NextYear: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next year"),
	),
	PrevMonth: key.NewBinding(
		key.WithKeys("<", "pgup"),
		key.WithHelp("<", "prev month"),
	),
	NextMonth: key.NewBinding(
		key.WithKeys(">", "pgdown"),
		key.WithHelp(">", "next month"),
	),
	NextTracker: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "next tracker"),
	),
	Export: key.NewBinding(
		key.WithKeys("E"),
		key.WithHelp("E", "export"),
	),
	Import: key.NewBinding(
		key.WithKeys("I"),
		key.WithHelp("I", "import"),
	),
	Tab1: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "dashboard"),
	),
	Tab2: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "trackers"),
	),
	Tab3: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "calendar"),
	),
	Tab4: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "stats"),
	),
	Tab5: key.NewBinding(
		key.WithKeys("5"),
		key.WithHelp("5", "settings"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "left"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "right"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.New, k.Enter, k.Export, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.Edit, k.Delete, k.Unset},
		{k.Add, k.Rename, k.Recolor, k.Summary, k.MoveUp, k.MoveDown},
		{k.PrevYear, k.NextYear, k.PrevMonth, k.NextMonth, k.NextTracker},
		{k.Export, k.Import},
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.Tab5},
		{k.Up, k.Down, k.Enter, k.Back, k.Quit},
	}
}
