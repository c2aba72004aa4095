package styles

import (
	"github.com/allbin/go-serial-stress/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	// Header styles
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext0)

	ValueStyle = lipgloss.NewStyle().
			Foreground(colors.Text).
			Bold(true)

	// Outcome styles
	StatusOKStyle = lipgloss.NewStyle().
			Foreground(colors.Green).
			Bold(true)

	StatusWarningStyle = lipgloss.NewStyle().
				Foreground(colors.Yellow).
				Bold(true)

	StatusFailedStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	// Dump styles
	OffsetStyle = lipgloss.NewStyle().
			Foreground(colors.Overlay0)

	ControlByteStyle = lipgloss.NewStyle().
				Foreground(colors.Peach)

	HelpStyle = lipgloss.NewStyle().
			Foreground(colors.Surface2)
)

type StatusType int

const (
	StatusOK StatusType = iota
	StatusWarning
	StatusFailed
)

func GetStatusStyle(status StatusType) lipgloss.Style {
	switch status {
	case StatusOK:
		return StatusOKStyle
	case StatusWarning:
		return StatusWarningStyle
	default:
		return StatusFailedStyle
	}
}
