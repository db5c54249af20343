package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/atelierworks/timberline/internal/domain"
	"github.com/atelierworks/timberline/internal/router"
	"github.com/atelierworks/timberline/internal/timeline"
)

const (
	// nameColWidth is the fixed width of the item name column, progress
	// figure included.
	nameColWidth = 26
	// minChartCells keeps the bar area usable on narrow terminals.
	minChartCells = 20
)

func (m ganttModel) View() string {
	if m.quitting {
		return ""
	}
	s := &m.state
	rows := s.VisibleItems()
	chart := m.chartCells()

	var b strings.Builder
	b.WriteString(styleHeader.Render(m.project.Name))
	b.WriteString(styleDim.Render(fmt.Sprintf("  %s  %s to %s",
		s.ViewMode, s.Range.Start.Format("Jan 2"), s.Range.End.Format("Jan 2 2006"))))
	b.WriteString("\n")
	b.WriteString(m.renderHeader(chart))
	b.WriteString("\n")

	hasChildren := make(map[string]bool)
	for _, it := range s.Items {
		if it.ParentID != nil {
			hasChildren[*it.ParentID] = true
		}
	}

	bars := make(map[string]router.Bar, len(rows))
	for i, it := range rows {
		span := it.ScheduleItem
		span.StartDate, span.EndDate = s.SpanFor(it)
		geom := timeline.CalculateBarPosition(&span, s.Range, s.TotalWidthPx)
		bars[it.ID] = router.Bar{Left: geom.Left, Width: geom.Width, Top: float64(i) * s.RowHeightPx}
		b.WriteString(m.renderRow(i, it, &span, geom, chart, hasChildren[it.ID]))
		b.WriteString("\n")
	}
	if len(rows) == 0 {
		b.WriteString(styleDim.Render("  no timeline items yet"))
		b.WriteString("\n")
	}

	if deps := m.renderDeps(bars); deps != "" {
		b.WriteString("\n")
		b.WriteString(deps)
	}
	if s.ErrMsg != "" {
		b.WriteString("\n")
		b.WriteString(styleErr.Render(s.ErrMsg))
		b.WriteString("\n")
	}
	if m.info != "" {
		b.WriteString("\n")
		b.WriteString(m.info)
		b.WriteString("\n")
	}
	if m.form != nil {
		b.WriteString("\n")
		b.WriteString(m.form.View())
	}
	b.WriteString("\n")
	b.WriteString(helpLine())
	return b.String()
}

// renderHeader lays the column labels of the current view mode along the
// chart axis.
func (m ganttModel) renderHeader(chart int) string {
	s := &m.state
	cols := timeline.GenerateColumns(s.Range, s.ViewMode, s.Today)
	cellsPerDay := float64(chart) / float64(s.Range.TotalDays())

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", nameColWidth+2))
	pos := 0
	for _, col := range cols {
		cell := int(float64(domain.DaysBetween(s.Range.Start, col.Date)) * cellsPerDay)
		if cell < pos || cell >= chart {
			continue
		}
		b.WriteString(strings.Repeat(" ", cell-pos))
		label := col.Label
		if cell+len(label) > chart {
			label = label[:chart-cell]
		}
		st := styleDim
		switch {
		case col.IsToday:
			st = styleToday
		case col.IsWeekend:
			st = styleWeekend
		}
		b.WriteString(st.Render(label))
		pos = cell + len(label)
	}
	return b.String()
}

func (m ganttModel) renderRow(idx int, it *timeline.Item, span *domain.ScheduleItem, geom timeline.BarGeometry, chart int, hasKids bool) string {
	s := &m.state

	prefix := "  "
	if idx == m.cursor {
		prefix = styleYellow.Render("> ")
	}
	marker := "  "
	if hasKids {
		if s.Collapsed[it.ID] {
			marker = "+ "
		} else {
			marker = "- "
		}
	}
	nameWidth := nameColWidth - 5
	name := truncate(strings.Repeat("  ", it.HierarchyLevel)+marker+it.Name, nameWidth)
	label := fmt.Sprintf("%-*s %3d%%", nameWidth, name, it.Progress)
	labelStyle := styleFg
	if s.IsSelected(it.ID) {
		labelStyle = styleSelected
	}

	start := int(geom.Left / pxPerCell)
	width := int(geom.Width / pxPerCell)
	if width < 1 {
		width = 1
	}
	if start < 0 {
		start = 0
	}
	if start >= chart {
		start = chart - 1
	}
	barRune := "█"
	switch {
	case it.IsMilestone():
		barRune = "◆"
		width = 1
	case it.IsPhase():
		barRune = "▓"
	}
	if start+width > chart {
		width = chart - start
	}

	left := []rune(strings.Repeat(" ", start))
	right := []rune(strings.Repeat(" ", chart-start-width))
	if cell := m.todayCell(chart); cell >= 0 {
		if cell < start {
			left[cell] = '·'
		} else if cell >= start+width && cell-start-width < len(right) {
			right[cell-start-width] = '·'
		}
	}
	bar := kindStyle(span).Render(strings.Repeat(barRune, width))
	return prefix + labelStyle.Render(label) + " " +
		styleDim.Render(string(left)) + bar + styleDim.Render(string(right))
}

// todayCell returns the chart cell of today's date, or -1 when today
// falls outside the visible range.
func (m ganttModel) todayCell(chart int) int {
	s := &m.state
	if !s.Range.Contains(s.Today) {
		return -1
	}
	cell := int(float64(domain.DaysBetween(s.Range.Start, s.Today)) / float64(s.Range.TotalDays()) * float64(chart))
	if cell >= chart {
		cell = chart - 1
	}
	return cell
}

// renderDeps summarizes the routed connectors below the chart. Entries
// whose endpoints are hidden by a collapsed subtree are skipped.
func (m ganttModel) renderDeps(bars map[string]router.Bar) string {
	s := &m.state
	if len(s.Deps) == 0 {
		return ""
	}
	names := make(map[string]string, len(s.Items))
	for _, it := range s.Items {
		names[it.ID] = it.Name
	}

	var b strings.Builder
	b.WriteString(styleHeader.Render("Links"))
	b.WriteString("\n")
	for _, d := range s.Deps {
		src, okSrc := bars[d.SourceID]
		dst, okDst := bars[d.TargetID]
		if !okSrc || !okDst {
			continue
		}
		path := router.Route(src, dst, d.Type, d.LagDays, s.RowHeightPx)
		arrow := "──▶"
		if path.Dashed {
			arrow = "┄┄▶"
		}
		line := fmt.Sprintf("  %s %s %s  %s %s",
			truncate(names[d.SourceID], 16), arrow, truncate(names[d.TargetID], 16),
			d.Type.Label(), path.LagLabel)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(path.Color)).Render(strings.TrimRight(line, " ")))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w {
		return s
	}
	if w < 1 {
		return ""
	}
	return string(r[:w-1]) + "…"
}
