package serial

import "golang.org/x/sys/unix"

// LineDisciplineState mirrors the device's termios: the four flag words,
// the line discipline, the control character array and the speed fields.
type LineDisciplineState struct {
	unix.Termios
}

func stateFromTermios(t *unix.Termios) LineDisciplineState {
	return LineDisciplineState{Termios: *t}
}

// flagWord returns the flag word a mode group applies to
func (s *LineDisciplineState) flagWord(g ModeGroup) *uint32 {
	switch g {
	case GroupControl:
		return &s.Cflag
	case GroupInput:
		return &s.Iflag
	case GroupOutput:
		return &s.Oflag
	case GroupLocal:
		return &s.Lflag
	default:
		return nil
	}
}

// SetMode applies a mode in its set direction
func (s *LineDisciplineState) SetMode(m ModeSpec) {
	w := s.flagWord(m.Group)
	if w == nil {
		return
	}
	*w = (*w &^ m.Clear) | m.Set
}

// ClearMode clears a reversible mode. It reports false and leaves the
// state untouched when the mode cannot be reversed.
func (s *LineDisciplineState) ClearMode(m ModeSpec) bool {
	if !m.Reversible {
		return false
	}
	w := s.flagWord(m.Group)
	if w == nil {
		return false
	}
	*w &^= m.Clear | m.Set
	return true
}

// DisableControlChar assigns the disable sentinel to a control character slot
func (s *LineDisciplineState) DisableControlChar(c ControlCharSpec) {
	if c.Slot < 0 || c.Slot >= len(s.Cc) {
		return
	}
	s.Cc[c.Slot] = DisabledChar
}

// HasMode reports whether every Set bit of the mode is present and no
// other bit of its Clear mask is.
func (s LineDisciplineState) HasMode(m ModeSpec) bool {
	w := s.flagWord(m.Group)
	if w == nil {
		return false
	}
	return *w&m.Clear == m.Set
}

// Equal compares every field, including the control characters and speeds
func (s LineDisciplineState) Equal(o LineDisciplineState) bool {
	return s.Termios == o.Termios
}

func (s LineDisciplineState) termios() *unix.Termios {
	t := s.Termios
	return &t
}
