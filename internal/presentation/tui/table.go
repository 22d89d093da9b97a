package tui

import (
	"fmt"

	"github.com/aretw0/toolshed/pkg/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// ToolTable lists catalog entries, one row per tool.
func ToolTable(tools []domain.Tool) string {
	if len(tools) == 0 {
		return "No tools found"
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "CATEGORY", "RATING", "PRICING", "STATUS")
	for _, tool := range tools {
		t.Row(tool.ID, tool.Name, tool.Category, fmt.Sprintf("%.1f", tool.Rating), tool.Label(), string(tool.Status))
	}
	return t.String()
}
