package cli

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type ganttKeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Multi      key.Binding
	Range      key.Binding
	Fold       key.Binding
	BarLeft    key.Binding
	BarRight   key.Binding
	EndLeft    key.Binding
	EndRight   key.Binding
	StartLeft  key.Binding
	StartRight key.Binding
	Indent     key.Binding
	Outdent    key.Binding
	MoveUp     key.Binding
	MoveDown   key.Binding
	Link       key.Binding
	ViewMode   key.Binding
	Reload     key.Binding
	Quit       key.Binding
}

var ganttKeys = ganttKeyMap{
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("j/k", "move")),
	Down:       key.NewBinding(key.WithKeys("down", "j")),
	Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Multi:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "multi")),
	Range:      key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "range")),
	Fold:       key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "fold")),
	BarLeft:    key.NewBinding(key.WithKeys("h"), key.WithHelp("h/l", "shift bar")),
	BarRight:   key.NewBinding(key.WithKeys("l")),
	EndLeft:    key.NewBinding(key.WithKeys("H"), key.WithHelp("H/L", "end")),
	EndRight:   key.NewBinding(key.WithKeys("L")),
	StartLeft:  key.NewBinding(key.WithKeys("["), key.WithHelp("[/]", "start")),
	StartRight: key.NewBinding(key.WithKeys("]")),
	Indent:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i/o", "indent")),
	Outdent:    key.NewBinding(key.WithKeys("o")),
	MoveUp:     key.NewBinding(key.WithKeys("K"), key.WithHelp("J/K", "reorder")),
	MoveDown:   key.NewBinding(key.WithKeys("J")),
	Link:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "link")),
	ViewMode:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view")),
	Reload:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func helpLine() string {
	bindings := []key.Binding{
		ganttKeys.Up, ganttKeys.Select, ganttKeys.Multi, ganttKeys.Range,
		ganttKeys.Fold, ganttKeys.BarLeft, ganttKeys.EndLeft, ganttKeys.StartLeft,
		ganttKeys.Indent, ganttKeys.MoveUp, ganttKeys.Link, ganttKeys.ViewMode,
		ganttKeys.Reload, ganttKeys.Quit,
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return styleDim.Render(strings.Join(parts, " · "))
}
