package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89B4FA"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6ADC8"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CDD6F4"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1E1E2E")).
			Background(lipgloss.Color("#89B4FA"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1"))

	noticeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F9E2AF"))
)
