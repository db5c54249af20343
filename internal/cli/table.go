package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderTable renders an aligned two-space-gapped table. Widths are
// measured with lipgloss so styled cells line up.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style lipgloss.Style) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(style.Render(cell))
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)))
		}
		b.WriteString("\n")
	}
	writeRow(headers, styleHeader)
	for _, row := range rows {
		writeRow(row, lipgloss.NewStyle())
	}
	return b.String()
}
