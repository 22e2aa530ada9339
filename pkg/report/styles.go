package report

import "github.com/charmbracelet/lipgloss"

// Styles
var (
	accentFg = lipgloss.Color("#7C3AED")
	warnFg   = lipgloss.Color("#D97706")

	headingStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(warnFg)
)
