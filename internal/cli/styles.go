package cli

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	DangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// Cells of the history grid
	DoneCell    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).SetString("■")
	PartialCell = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).SetString("▪")
	MissedCell  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).SetString("·")
	OffCell     = lipgloss.NewStyle().Foreground(lipgloss.Color("236")).SetString(" ")
)
