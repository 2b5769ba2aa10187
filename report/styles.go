package report

import "github.com/charmbracelet/lipgloss"

// Color palette, shared with the TUI surfaces.
var (
	successColor = lipgloss.Color("#10B981") // Green
	errorColor   = lipgloss.Color("#EF4444") // Red
)

func successStyle() lipgloss.Style {
	if !isTTY() {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Bold(true).Foreground(successColor)
}

func failureStyle() lipgloss.Style {
	if !isTTY() {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Bold(true).Foreground(errorColor)
}
