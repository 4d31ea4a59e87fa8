package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderCell renders a single grid symbol in a color
func RenderCell(sym rune, color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Render(string(sym))
}

// RenderCellRow renders a row of colored cells without spacing
func RenderCellRow(syms []rune, colors []lipgloss.Color) string {
	var out strings.Builder
	for i, s := range syms {
		out.WriteString(RenderCell(s, colors[i]))
	}
	return out.String()
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			h := k.Help()
			lines = append(lines, fmt.Sprintf("  %-12s %s", h.Key, h.Desc))
		}
	}
	return strings.Join(lines, "\n")
}
