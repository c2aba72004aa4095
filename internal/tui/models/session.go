package models

import (
	"fmt"
	"strings"
	"time"

	serial "github.com/allbin/go-serial-stress"
	"github.com/allbin/go-serial-stress/internal/tui/colors"
	"github.com/allbin/go-serial-stress/internal/tui/components"
	"github.com/allbin/go-serial-stress/internal/tui/keys"
	"github.com/allbin/go-serial-stress/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProgressMsg carries the writer's running totals
type ProgressMsg serial.WriteStats

// DoneMsg ends the session view
type DoneMsg struct {
	Stats serial.WriteStats
	Err   error
}

const maxProgressWidth = 80

// SessionModel shows a write session while it runs
type SessionModel struct {
	header   *components.StatusBar
	total    uint64
	stats    serial.WriteStats
	started  time.Time
	done     bool
	detached bool
	err      error

	progress progress.Model
	spinner  spinner.Model
	help     help.Model
	keys     keys.SessionKeys
}

func NewSessionModel(info components.SessionInfo) SessionModel {
	return SessionModel{
		header:  components.NewStatusBar(info),
		total:   info.Total,
		started: time.Now(),
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(maxProgressWidth/2),
		),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(colors.Sky)),
		),
		help: help.New(),
		keys: keys.NewSessionKeys(),
	}
}

func (m SessionModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.detached = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.header.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.progress.Width = min(msg.Width-4, maxProgressWidth)
		return m, nil

	case ProgressMsg:
		m.stats = serial.WriteStats(msg)
		return m, nil

	case DoneMsg:
		m.stats = msg.Stats
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Fraction is the share of the total written so far
func (m SessionModel) Fraction() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.stats.Sent) / float64(m.total)
}

// Detached reports whether the user left the view before the writer finished
func (m SessionModel) Detached() bool {
	return m.detached && !m.done
}

func (m SessionModel) View() string {
	var b strings.Builder

	b.WriteString(m.header.View())
	b.WriteString("\n\n")

	state := m.spinner.View() + " writing"
	if m.done {
		if m.err != nil {
			state = styles.StatusFailedStyle.Render("✗ " + m.err.Error())
		} else {
			state = styles.StatusOKStyle.Render("✓ written")
		}
	}
	b.WriteString(state + "  " + m.progress.ViewAs(m.Fraction()) + "\n\n")

	elapsed := time.Since(m.started)
	b.WriteString(styles.LabelStyle.Render("sent ") +
		styles.ValueStyle.Render(fmt.Sprintf("%d/%d", m.stats.Sent, m.total)))
	b.WriteString(styles.LabelStyle.Render("  attempts ") +
		styles.ValueStyle.Render(fmt.Sprintf("%d", m.stats.Attempts)))
	b.WriteString(styles.LabelStyle.Render("  eagain ") +
		styles.ValueStyle.Render(fmt.Sprintf("%d", m.stats.EAGAINs)))
	b.WriteString(styles.LabelStyle.Render("  elapsed ") +
		styles.ValueStyle.Render(elapsed.Round(100*time.Millisecond).String()))
	b.WriteString("\n\n")

	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
