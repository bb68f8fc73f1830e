package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/spec-view-go/internal/spec"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Reverse(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	barFullStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	barEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("4")).
			Padding(0, 1)

	statusStyles = map[spec.Status]lipgloss.Style{
		spec.StatusDraft:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		spec.StatusReady:      lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		spec.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		spec.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		spec.StatusBlocked:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
)

var statusIcons = map[spec.Status]string{
	spec.StatusDraft:      "○",
	spec.StatusReady:      "●",
	spec.StatusInProgress: "◔",
	spec.StatusDone:       "✓",
	spec.StatusBlocked:    "✗",
}

// statusIcon returns the plain icon for s.
func statusIcon(s spec.Status) string {
	if icon, ok := statusIcons[s]; ok {
		return icon
	}
	return " "
}

func styledStatusIcon(s spec.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return statusIcon(s)
	}
	return style.Render(statusIcon(s))
}
