package tui

import (
	"fmt"

	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var severityColors = map[domain.Severity]string{
	domain.SeverityInfo:    "#60a5fa",
	domain.SeveritySuccess: "#34d399",
	domain.SeverityWarning: "#fbbf24",
	domain.SeverityError:   "#f87171",
}

var severityIcons = map[domain.Severity]string{
	domain.SeverityInfo:    "i",
	domain.SeveritySuccess: "✓",
	domain.SeverityWarning: "!",
	domain.SeverityError:   "✗",
}

// Toast formats a notification as a single coloured line.
func Toast(p termenv.Profile, n domain.Notification) string {
	head := p.String(fmt.Sprintf("[%s] %s", severityIcons[n.Severity], n.Title)).
		Foreground(p.Color(severityColors[n.Severity])).
		Bold()
	if n.Description == "" {
		return head.String()
	}
	return head.String() + " " + p.String(n.Description).Faint().String()
}

var (
	cell   = lipgloss.NewStyle().PaddingRight(2)
	header = cell.Bold(true)
	frame  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// CompareTable lays the comparison tray out side by side.
func CompareTable(items []domain.ComparisonItem) string {
	if len(items) == 0 {
		return frame.Render("Comparison tray is empty")
	}

	rows := [][]string{{"", "Category", "Rating", "Pricing"}}
	for _, it := range items {
		rows = append(rows, []string{it.Name, it.Category, fmt.Sprintf("%.1f", it.Rating), it.PriceLabel})
	}

	columns := make([]string, len(rows[0]))
	for c := range columns {
		var col []string
		for r, row := range rows {
			style := cell
			if r == 0 || c == 0 {
				style = header
			}
			col = append(col, style.Render(row[c]))
		}
		columns[c] = lipgloss.JoinVertical(lipgloss.Left, col...)
	}
	return frame.Render(lipgloss.JoinHorizontal(lipgloss.Top, columns...))
}
