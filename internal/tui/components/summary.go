package components

import (
	"fmt"
	"time"

	"github.com/allbin/go-serial-stress/internal/tui/colors"
	"github.com/allbin/go-serial-stress/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
)

const (
	columnKeyMetric = "metric"
	columnKeyValue  = "value"
)

// Summary holds the outcome of a write session
type Summary struct {
	Device   string
	Total    uint64
	Sent     uint64
	Attempts uint64
	EAGAINs  uint64
	Elapsed  time.Duration

	Reader       bool
	ReaderStatus string
	BytesRead    uint64
	ReadAttempts uint64
	ReaderOK     bool
}

// Status classifies the session for coloring
func (s Summary) Status() styles.StatusType {
	switch {
	case s.Sent < s.Total:
		return styles.StatusFailed
	case s.Reader && !s.ReaderOK:
		return styles.StatusFailed
	case s.Reader && s.BytesRead != s.Sent:
		return styles.StatusWarning
	default:
		return styles.StatusOK
	}
}

func rate(n uint64, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f B/s", float64(n)/d.Seconds())
}

func row(metric, value string) table.Row {
	return table.NewRow(table.RowData{
		columnKeyMetric: metric,
		columnKeyValue:  value,
	})
}

// Rows returns the summary as table rows
func (s Summary) Rows() []table.Row {
	rows := []table.Row{
		row("Device", s.Device),
		row("Sent", fmt.Sprintf("%d / %d", s.Sent, s.Total)),
		row("Write attempts", fmt.Sprintf("%d", s.Attempts)),
		row("EAGAIN", fmt.Sprintf("%d", s.EAGAINs)),
		row("Elapsed", s.Elapsed.Round(time.Millisecond).String()),
		row("Rate", rate(s.Sent, s.Elapsed)),
	}
	if !s.Reader {
		return rows
	}

	readerStyle := styles.StatusOKStyle
	if !s.ReaderOK {
		readerStyle = styles.StatusFailedStyle
	}
	return append(rows,
		row("Received", fmt.Sprintf("%d", s.BytesRead)),
		row("Read attempts", fmt.Sprintf("%d", s.ReadAttempts)),
		table.NewRow(table.RowData{
			columnKeyMetric: "Reader",
			columnKeyValue:  table.NewStyledCell(s.ReaderStatus, readerStyle),
		}),
	)
}

// RenderSummary renders the session outcome as a bordered table
func RenderSummary(s Summary) string {
	columns := []table.Column{
		table.NewColumn(columnKeyMetric, "Metric", 16),
		table.NewColumn(columnKeyValue, "Value", 32),
	}

	t := table.New(columns).
		WithRows(s.Rows()).
		BorderRounded().
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(colors.Mauve)).
		WithBaseStyle(lipgloss.NewStyle().
			Foreground(colors.Text).
			BorderForeground(colors.Surface1).
			Align(lipgloss.Left))

	var verdict string
	switch s.Status() {
	case styles.StatusOK:
		verdict = "✓ session complete"
	case styles.StatusWarning:
		verdict = "! received count differs from sent"
	default:
		verdict = "✗ session failed"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		t.View(),
		styles.GetStatusStyle(s.Status()).Render(verdict),
	)
}
