package serial

import (
	"strings"

	"golang.org/x/sys/unix"
)

// ModeGroup identifies which termios flag word a mode applies to
type ModeGroup int

const (
	GroupControl ModeGroup = iota
	GroupInput
	GroupOutput
	GroupLocal
)

func (g ModeGroup) String() string {
	switch g {
	case GroupControl:
		return "control"
	case GroupInput:
		return "input"
	case GroupOutput:
		return "output"
	case GroupLocal:
		return "local"
	default:
		return "unknown"
	}
}

// ModeSpec maps an stty mode name to the bits it sets in one flag word.
// Clear always contains Set.
type ModeSpec struct {
	Name       string
	Group      ModeGroup
	Reversible bool
	Set        uint32
	Clear      uint32
}

// ControlCharSpec maps an stty control character name to its slot in Cc.
type ControlCharSpec struct {
	Name string
	Slot int
}

// SpeedSpec maps a baud rate token to its termios rate code. A Code of
// unix.BOTHER selects the extended path, which programs Value directly.
type SpeedSpec struct {
	Token string
	Code  uint32
	Value uint32
}

// Extended reports whether the rate is set through termios2 speed fields
func (s SpeedSpec) Extended() bool {
	return s.Code == unix.BOTHER
}

// DisabledChar is the Linux _POSIX_VDISABLE value
const DisabledChar = 0

const cmspar = 0x40000000

func rev(name string, g ModeGroup, bits uint32) ModeSpec {
	return ModeSpec{Name: name, Group: g, Reversible: true, Set: bits, Clear: bits}
}

func field(name string, g ModeGroup, bits, mask uint32) ModeSpec {
	return ModeSpec{Name: name, Group: g, Set: bits, Clear: bits | mask}
}

var modeTable = []ModeSpec{
	rev("parenb", GroupControl, unix.PARENB),
	rev("parodd", GroupControl, unix.PARODD),
	rev("cmspar", GroupControl, cmspar),
	field("cs5", GroupControl, unix.CS5, unix.CSIZE),
	field("cs6", GroupControl, unix.CS6, unix.CSIZE),
	field("cs7", GroupControl, unix.CS7, unix.CSIZE),
	field("cs8", GroupControl, unix.CS8, unix.CSIZE),
	rev("hupcl", GroupControl, unix.HUPCL),
	rev("cstopb", GroupControl, unix.CSTOPB),
	rev("cread", GroupControl, unix.CREAD),
	rev("clocal", GroupControl, unix.CLOCAL),
	rev("crtscts", GroupControl, unix.CRTSCTS),

	rev("ignbrk", GroupInput, unix.IGNBRK),
	rev("brkint", GroupInput, unix.BRKINT),
	rev("ignpar", GroupInput, unix.IGNPAR),
	rev("parmrk", GroupInput, unix.PARMRK),
	rev("inpck", GroupInput, unix.INPCK),
	rev("istrip", GroupInput, unix.ISTRIP),
	rev("inlcr", GroupInput, unix.INLCR),
	rev("igncr", GroupInput, unix.IGNCR),
	rev("icrnl", GroupInput, unix.ICRNL),
	rev("ixon", GroupInput, unix.IXON),
	rev("ixoff", GroupInput, unix.IXOFF),
	rev("iuclc", GroupInput, unix.IUCLC),
	rev("ixany", GroupInput, unix.IXANY),
	rev("imaxbel", GroupInput, unix.IMAXBEL),
	rev("iutf8", GroupInput, unix.IUTF8),

	rev("opost", GroupOutput, unix.OPOST),
	rev("olcuc", GroupOutput, unix.OLCUC),
	rev("ocrnl", GroupOutput, unix.OCRNL),
	rev("onlcr", GroupOutput, unix.ONLCR),
	rev("onocr", GroupOutput, unix.ONOCR),
	rev("onlret", GroupOutput, unix.ONLRET),
	rev("ofill", GroupOutput, unix.OFILL),
	rev("ofdel", GroupOutput, unix.OFDEL),
	field("nl0", GroupOutput, unix.NL0, unix.NLDLY),
	field("cr0", GroupOutput, unix.CR0, unix.CRDLY),
	field("tab0", GroupOutput, unix.TAB0, unix.TABDLY),
	field("bs0", GroupOutput, unix.BS0, unix.BSDLY),
	field("vt0", GroupOutput, unix.VT0, unix.VTDLY),
	field("ff0", GroupOutput, unix.FF0, unix.FFDLY),

	rev("isig", GroupLocal, unix.ISIG),
	rev("icanon", GroupLocal, unix.ICANON),
	rev("iexten", GroupLocal, unix.IEXTEN),
	rev("echo", GroupLocal, unix.ECHO),
	rev("echoe", GroupLocal, unix.ECHOE),
	rev("echok", GroupLocal, unix.ECHOK),
	rev("echonl", GroupLocal, unix.ECHONL),
	rev("noflsh", GroupLocal, unix.NOFLSH),
	rev("xcase", GroupLocal, unix.XCASE),
	rev("tostop", GroupLocal, unix.TOSTOP),
	rev("echoprt", GroupLocal, unix.ECHOPRT),
	rev("echoctl", GroupLocal, unix.ECHOCTL),
	rev("echoke", GroupLocal, unix.ECHOKE),
	rev("flusho", GroupLocal, unix.FLUSHO),
	rev("extproc", GroupLocal, unix.EXTPROC),
}

var controlCharTable = []ControlCharSpec{
	{"intr", unix.VINTR},
	{"quit", unix.VQUIT},
	{"erase", unix.VERASE},
	{"kill", unix.VKILL},
	{"eof", unix.VEOF},
	{"eol", unix.VEOL},
	{"eol2", unix.VEOL2},
	{"swtch", unix.VSWTC},
	{"start", unix.VSTART},
	{"stop", unix.VSTOP},
	{"susp", unix.VSUSP},
	{"rprnt", unix.VREPRINT},
	{"werase", unix.VWERASE},
	{"lnext", unix.VLNEXT},
	{"discard", unix.VDISCARD},
}

var speedTable = []SpeedSpec{
	{"0", unix.B0, 0},
	{"50", unix.B50, 50},
	{"75", unix.B75, 75},
	{"110", unix.B110, 110},
	{"134", unix.B134, 134},
	{"134.5", unix.B134, 134},
	{"150", unix.B150, 150},
	{"200", unix.B200, 200},
	{"300", unix.B300, 300},
	{"600", unix.B600, 600},
	{"1200", unix.B1200, 1200},
	{"1800", unix.B1800, 1800},
	{"2400", unix.B2400, 2400},
	{"4800", unix.B4800, 4800},
	{"9600", unix.B9600, 9600},
	{"19200", unix.B19200, 19200},
	{"38400", unix.B38400, 38400},
	{"exta", unix.B19200, 19200},
	{"extb", unix.B38400, 38400},
	{"57600", unix.B57600, 57600},
	{"115200", unix.B115200, 115200},
	{"230400", unix.B230400, 230400},
	{"460800", unix.B460800, 460800},
	{"500000", unix.B500000, 500000},
	{"576000", unix.B576000, 576000},
	{"921600", unix.B921600, 921600},
	{"1000000", unix.B1000000, 1000000},
	{"1M", unix.B1000000, 1000000},
	{"1152000", unix.B1152000, 1152000},
	{"1.152M", unix.B1152000, 1152000},
	{"1500000", unix.B1500000, 1500000},
	{"1.5M", unix.B1500000, 1500000},
	{"2000000", unix.B2000000, 2000000},
	{"2M", unix.B2000000, 2000000},
	{"2500000", unix.B2500000, 2500000},
	{"2.5M", unix.B2500000, 2500000},
	{"3000000", unix.B3000000, 3000000},
	{"3M", unix.B3000000, 3000000},
	{"3500000", unix.B3500000, 3500000},
	{"3.5M", unix.B3500000, 3500000},
	{"4000000", unix.B4000000, 4000000},
	{"4M", unix.B4000000, 4000000},

	// Rates with no Bnnn code go through termios2
	{"8000000", unix.BOTHER, 8390625},
	{"8M", unix.BOTHER, 8390625},
	{"12000000", unix.BOTHER, 12000000},
	{"12M", unix.BOTHER, 12000000},
	{"12500000", unix.BOTHER, 12500000},
	{"12.5M", unix.BOTHER, 12500000},
}

var (
	modeIndex        = indexBy(modeTable, func(m ModeSpec) string { return m.Name })
	controlCharIndex = indexBy(controlCharTable, func(c ControlCharSpec) string { return c.Name })
	speedIndex       = indexBy(speedTable, func(s SpeedSpec) string { return s.Token })
)

func indexBy[T any](table []T, key func(T) string) map[string]int {
	idx := make(map[string]int, len(table))
	for i, v := range table {
		if _, dup := idx[key(v)]; !dup {
			idx[key(v)] = i
		}
	}
	return idx
}

// tableName strips an optional leading '-' from a token
func tableName(token string) string {
	return strings.TrimPrefix(token, "-")
}

// LookupMode finds the mode named by token, ignoring a leading '-'
func LookupMode(token string) (ModeSpec, bool) {
	i, ok := modeIndex[tableName(token)]
	if !ok {
		return ModeSpec{}, false
	}
	return modeTable[i], true
}

// LookupControlChar finds the control character named by token, ignoring a leading '-'
func LookupControlChar(token string) (ControlCharSpec, bool) {
	i, ok := controlCharIndex[tableName(token)]
	if !ok {
		return ControlCharSpec{}, false
	}
	return controlCharTable[i], true
}

// LookupSpeed finds the baud rate named by token, ignoring a leading '-'
func LookupSpeed(token string) (SpeedSpec, bool) {
	i, ok := speedIndex[tableName(token)]
	if !ok {
		return SpeedSpec{}, false
	}
	return speedTable[i], true
}

// Modes returns a copy of the mode table
func Modes() []ModeSpec {
	return append([]ModeSpec(nil), modeTable...)
}

// ControlChars returns a copy of the control character table
func ControlChars() []ControlCharSpec {
	return append([]ControlCharSpec(nil), controlCharTable...)
}

// Speeds returns a copy of the speed table
func Speeds() []SpeedSpec {
	return append([]SpeedSpec(nil), speedTable...)
}
