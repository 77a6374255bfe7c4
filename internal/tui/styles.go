package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true)

	// GainStyle for positive performance.
	GainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	// LossStyle for negative performance.
	LossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// FormatPerformance renders a performance percentage with a direction
// indicator.
func FormatPerformance(percent float64) string {
	s := fmt.Sprintf("%+.2f%%", percent)

	switch {
	case percent > 0:
		return GainStyle.Render(s + " ▲")
	case percent < 0:
		return LossStyle.Render(s + " ▼")
	default:
		return s
	}
}
