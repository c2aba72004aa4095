package serial

import (
	"errors"
	"io"

	"golang.org/x/sys/unix"
)

// WriteStats counts the work done by a write session
type WriteStats struct {
	Sent     uint64 // bytes accepted by the device
	Attempts uint64 // write calls, including ones that would have blocked
	EAGAINs  uint64 // writes refused because the output queue was full
}

// minWindow is the shortest burst: 0x00, CR, LF
const minWindow = 3

// maxIdleWrites is how many writes in a row may accept zero bytes
// without error before the session fails
const maxIdleWrites = 64

// WriteCursor tracks the burst being written. Bursts are suffixes of the
// test pattern: first the last 3 bytes, then the last 4, and so on up to
// all 196, after which the walk starts over at 3. Every burst ends in
// CR LF.
type WriteCursor struct {
	LineStart int // start of the next burst
	Pos       int // next byte to write in the current burst
}

// NewWriteCursor returns a cursor positioned before the first burst
func NewWriteCursor() WriteCursor {
	return WriteCursor{LineStart: PatternLen - minWindow, Pos: PatternLen}
}

// next returns the cursor ready for a write: the burst start is kept in
// range and a finished burst is replaced by the next, one byte longer.
func (c WriteCursor) next() WriteCursor {
	if c.LineStart < 0 || c.LineStart > PatternLen-minWindow {
		c.LineStart = PatternLen - minWindow
	}
	if c.Pos >= PatternLen || c.Pos < 0 {
		c.Pos = c.LineStart
		c.LineStart--
	}
	return c
}

// span returns the part of the pattern to write next, capped at remaining
func (c WriteCursor) span(remaining uint64) (start, end int) {
	n := PatternLen - c.Pos
	if uint64(n) > remaining {
		n = int(remaining)
	}
	return c.Pos, c.Pos + n
}

// advance moves past n written bytes
func (c WriteCursor) advance(n int) WriteCursor {
	c.Pos += n
	return c
}

// WritePattern writes exactly total bytes of bursts to w, continuing from
// cur. Short writes resume where they stopped. Writes refused with EAGAIN
// are counted and retried; any other error ends the session with ErrIO, as
// does a run of maxIdleWrites writes that accept nothing.
func WritePattern(w io.Writer, total uint64, cur *WriteCursor, opts ...Option) (WriteStats, error) {
	config, err := newConfig(opts)
	if err != nil {
		return WriteStats{}, err
	}
	return writePattern(w, total, cur, config)
}

func writePattern(w io.Writer, total uint64, cur *WriteCursor, config Config) (WriteStats, error) {
	var stats WriteStats
	buf := patternBuffer()
	remaining := total
	idle := 0

	for remaining > 0 {
		stats.Attempts++

		*cur = cur.next()
		start, end := cur.span(remaining)

		n, err := w.Write(buf[start:end])
		if err != nil {
			if errors.Is(err, unix.EAGAIN) {
				stats.EAGAINs++
				continue
			}
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return stats, &DeviceError{Op: "write", Kind: ErrIO, Err: err}
		}
		if n < 0 || n > end-start {
			return stats, &DeviceError{Op: "write", Kind: ErrIO, Err: io.ErrShortWrite}
		}

		if n == 0 {
			idle++
			if idle >= maxIdleWrites {
				return stats, &DeviceError{Op: "write", Kind: ErrIO, Err: io.ErrNoProgress}
			}
			continue
		}
		idle = 0

		remaining -= uint64(n)
		stats.Sent += uint64(n)
		*cur = cur.advance(n)

		if config.Progress != nil {
			config.Progress(stats)
		}
	}
	return stats, nil
}

// fdWriter writes straight to a file descriptor, so a non-blocking
// descriptor reports EAGAIN instead of being parked by the runtime poller
type fdWriter int

func (fd fdWriter) Write(p []byte) (int, error) {
	n, err := unix.Write(int(fd), p)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// WriteTestPattern writes count bytes of test bursts to an open file
// descriptor, starting a fresh burst sequence.
func WriteTestPattern(fd int, count uint64, opts ...Option) (WriteStats, error) {
	cur := NewWriteCursor()
	return WritePattern(fdWriter(fd), count, &cur, opts...)
}
