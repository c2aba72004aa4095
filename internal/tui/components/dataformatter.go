package components

import (
	"fmt"
	"strings"

	"github.com/allbin/go-serial-stress/internal/tui/styles"
)

// BytesPerLine is the width of one hex dump line
const BytesPerLine = 16

type DataFormatter struct {
	styled bool
}

// NewDataFormatter returns a hex dump formatter. Styled output colors
// offsets and control bytes for a terminal.
func NewDataFormatter(styled bool) *DataFormatter {
	return &DataFormatter{styled: styled}
}

func isControl(b byte) bool {
	low := b & 0x7f
	return low < 0x20 || low == 0x7f
}

// FormatLine renders one dump line starting at offset
func (df *DataFormatter) FormatLine(offset int, data []byte) string {
	var hex, ascii strings.Builder

	for i := 0; i < BytesPerLine; i++ {
		if i == BytesPerLine/2 {
			hex.WriteByte(' ')
		}
		if i >= len(data) {
			hex.WriteString("   ")
			continue
		}

		b := data[i]
		cell := fmt.Sprintf("%02x", b)
		char := "."
		if b >= 32 && b <= 126 {
			char = string(b)
		}
		if df.styled && isControl(b) {
			cell = styles.ControlByteStyle.Render(cell)
			char = styles.ControlByteStyle.Render(char)
		}
		hex.WriteString(cell)
		hex.WriteByte(' ')
		ascii.WriteString(char)
	}

	off := fmt.Sprintf("%08x", offset)
	if df.styled {
		off = styles.OffsetStyle.Render(off)
	}
	return fmt.Sprintf("%s  %s |%s|", off, hex.String(), ascii.String())
}

// FormatDump renders data as hex dump lines
func (df *DataFormatter) FormatDump(data []byte) []string {
	lines := make([]string, 0, (len(data)+BytesPerLine-1)/BytesPerLine)
	for off := 0; off < len(data); off += BytesPerLine {
		end := off + BytesPerLine
		if end > len(data) {
			end = len(data)
		}
		lines = append(lines, df.FormatLine(off, data[off:end]))
	}
	return lines
}
