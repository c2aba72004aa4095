package components

import (
	"fmt"
	"strings"

	"github.com/allbin/go-serial-stress/internal/tui/colors"
	"github.com/allbin/go-serial-stress/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// SessionInfo is what the header shows about a write session
type SessionInfo struct {
	Device      string
	Description string
	Speed       string
	RawConfig   bool
	NonBlocking bool
	Reader      bool
	Total       uint64
}

type StatusBar struct {
	info  SessionInfo
	width int
}

func NewStatusBar(info SessionInfo) *StatusBar {
	return &StatusBar{info: info}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

// modes lists the session switches that are on
func (sb *StatusBar) modes() string {
	var modes []string
	if sb.info.RawConfig {
		modes = append(modes, "raw")
	}
	if sb.info.NonBlocking {
		modes = append(modes, "non-blocking")
	}
	if sb.info.Reader {
		modes = append(modes, "reader")
	}
	if len(modes) == 0 {
		return "plain"
	}
	return strings.Join(modes, " ")
}

// View renders the header line: device, description, speed and modes
func (sb *StatusBar) View() string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	title := styles.TitleStyle.Render(sb.info.Device)

	details := sb.info.Description
	if sb.info.Speed != "" {
		details += " ⚡ " + sb.info.Speed
	}
	detailStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1)
	left := lipgloss.JoinHorizontal(lipgloss.Left, title, detailStyle.Render(details))

	modeStyle := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(colors.Blue).
		Bold(true).
		Padding(0, 1)
	right := lipgloss.JoinHorizontal(lipgloss.Left,
		modeStyle.Render(sb.modes()),
		detailStyle.Render(fmt.Sprintf("%d bytes", sb.info.Total)),
	)

	spacerWidth := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	barStyle := lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(width)
	return barStyle.Render(lipgloss.JoinHorizontal(lipgloss.Left, left, spacer, right))
}
