package cli

import (
	"github.com/atelierworks/timberline/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorRed    = lipgloss.Color("#fb4934")
	colorBlue   = lipgloss.Color("#83a598")
	colorPurple = lipgloss.Color("#d3869b")
	colorDim    = lipgloss.Color("#928374")
	colorFg     = lipgloss.Color("#ebdbb2")
	colorHeader = lipgloss.Color("#fe8019")
)

var (
	styleDim      = lipgloss.NewStyle().Foreground(colorDim)
	styleFg       = lipgloss.NewStyle().Foreground(colorFg)
	styleYellow   = lipgloss.NewStyle().Foreground(colorYellow)
	styleHeader   = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleErr      = lipgloss.NewStyle().Foreground(colorRed)
	styleSelected = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleWeekend  = lipgloss.NewStyle().Foreground(colorDim)
	styleToday    = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
)

// kindStyle picks the bar style for an item, preferring the item's own
// color when one is stored.
func kindStyle(item *domain.ScheduleItem) lipgloss.Style {
	if item.Color != "" {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(item.Color))
	}
	switch item.Kind {
	case domain.KindPhase:
		return lipgloss.NewStyle().Foreground(colorPurple)
	case domain.KindMilestone:
		return lipgloss.NewStyle().Foreground(colorYellow)
	default:
		return lipgloss.NewStyle().Foreground(colorBlue)
	}
}

func priorityLabel(p domain.Priority) string {
	switch p {
	case domain.PriorityLow:
		return styleDim.Render("low")
	case domain.PriorityHigh:
		return styleYellow.Render("high")
	case domain.PriorityCritical:
		return styleErr.Render("critical")
	default:
		return styleFg.Render("medium")
	}
}

// timberlineHuhTheme restyles huh forms to match the rest of the UI.
func timberlineHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(colorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(colorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(colorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(colorFg).Background(colorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(colorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(colorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(colorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(colorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(colorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(colorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(colorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(colorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(colorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(colorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(colorDim)

	return t
}
