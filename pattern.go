package serial

import (
	"io"
	"sync"
)

// PatternLen is the length of the test pattern
const PatternLen = 196

var (
	patternOnce sync.Once
	pattern     []byte
)

// patternBuffer returns the shared, read-only test pattern. It holds the
// pairs (v|0x80, v) for v from 127 down to 32, then 0x80, 0x00, CR, LF.
// The only control bytes in it are 0x00, 0x80, CR and LF, so no other
// byte can be taken for a line discipline character if raw mode was not
// fully applied.
func patternBuffer() []byte {
	patternOnce.Do(func() {
		p := make([]byte, 0, PatternLen)
		for v := 127; v >= 32; v-- {
			p = append(p, byte(v)|0x80, byte(v))
		}
		p = append(p, 0x80, 0x00, '\r', '\n')
		pattern = p
	})
	return pattern
}

// Pattern returns a copy of the test pattern
func Pattern() []byte {
	return append([]byte(nil), patternBuffer()...)
}

// DumpPattern writes the whole test pattern once
func DumpPattern(w io.Writer) error {
	_, err := w.Write(patternBuffer())
	return err
}
