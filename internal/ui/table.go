package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// KeyValueTable renders rows of label/value pairs in a rounded table.
func KeyValueTable(rows [][2]string, valueWidth int) string {
	if len(rows) == 0 {
		return ""
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorSubtle)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return lipgloss.NewStyle().
					Foreground(ColorSecondary).
					Bold(true).
					Padding(0, 1)
			}
			return lipgloss.NewStyle().
				Foreground(ColorText).
				Padding(0, 1).
				Width(valueWidth)
		})

	for _, row := range rows {
		t.Row(row[0], row[1])
	}
	return t.Render()
}
