package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("2"))

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	strongStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("2"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1).
			MarginLeft(2)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("9"))
)

// cell renders s into exactly width columns on one line
func cell(s string, width int, right bool) string {
	st := lipgloss.NewStyle().Width(width).MaxWidth(width).MaxHeight(1)
	if right {
		st = st.Align(lipgloss.Right)
	}
	return st.Render(s)
}
