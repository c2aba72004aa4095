package serial

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestLookupMode(t *testing.T) {
	tests := []struct {
		token      string
		found      bool
		group      ModeGroup
		set        uint32
		reversible bool
	}{
		{"icanon", true, GroupLocal, unix.ICANON, true},
		{"-icanon", true, GroupLocal, unix.ICANON, true},
		{"ixon", true, GroupInput, unix.IXON, true},
		{"opost", true, GroupOutput, unix.OPOST, true},
		{"crtscts", true, GroupControl, unix.CRTSCTS, true},
		{"cs8", true, GroupControl, unix.CS8, false},
		{"nl0", true, GroupOutput, unix.NL0, false},
		{"cmspar", true, GroupControl, cmspar, true},
		{"intr", false, 0, 0, false},
		{"bogus", false, 0, 0, false},
		{"", false, 0, 0, false},
	}

	for _, test := range tests {
		m, ok := LookupMode(test.token)
		if ok != test.found {
			t.Errorf("LookupMode(%q) found = %v, expected %v", test.token, ok, test.found)
			continue
		}
		if !ok {
			continue
		}
		if m.Group != test.group {
			t.Errorf("LookupMode(%q) group = %v, expected %v", test.token, m.Group, test.group)
		}
		if m.Set != test.set {
			t.Errorf("LookupMode(%q) set = %#x, expected %#x", test.token, m.Set, test.set)
		}
		if m.Reversible != test.reversible {
			t.Errorf("LookupMode(%q) reversible = %v, expected %v", test.token, m.Reversible, test.reversible)
		}
	}
}

func TestModeTableMasks(t *testing.T) {
	for _, m := range Modes() {
		if m.Clear&m.Set != m.Set {
			t.Errorf("mode %s: clear mask %#x does not contain set bits %#x", m.Name, m.Clear, m.Set)
		}
		if m.Group < GroupControl || m.Group > GroupLocal {
			t.Errorf("mode %s: invalid group %d", m.Name, m.Group)
		}
	}
}

func TestLookupControlChar(t *testing.T) {
	tests := []struct {
		token string
		slot  int
		found bool
	}{
		{"intr", unix.VINTR, true},
		{"eof", unix.VEOF, true},
		{"swtch", unix.VSWTC, true},
		{"-werase", unix.VWERASE, true},
		{"icanon", 0, false},
	}

	for _, test := range tests {
		cc, ok := LookupControlChar(test.token)
		if ok != test.found {
			t.Errorf("LookupControlChar(%q) found = %v, expected %v", test.token, ok, test.found)
			continue
		}
		if ok && cc.Slot != test.slot {
			t.Errorf("LookupControlChar(%q) slot = %d, expected %d", test.token, cc.Slot, test.slot)
		}
	}

	for _, cc := range ControlChars() {
		if cc.Slot < 0 || cc.Slot >= len(unix.Termios{}.Cc) {
			t.Errorf("control char %s: slot %d out of range", cc.Name, cc.Slot)
		}
	}
}

func TestLookupSpeed(t *testing.T) {
	tests := []struct {
		token    string
		code     uint32
		value    uint32
		extended bool
		found    bool
	}{
		{"9600", unix.B9600, 9600, false, true},
		{"115200", unix.B115200, 115200, false, true},
		{"1M", unix.B1000000, 1000000, false, true},
		{"4M", unix.B4000000, 4000000, false, true},
		{"12M", unix.BOTHER, 12000000, true, true},
		{"12.5M", unix.BOTHER, 12500000, true, true},
		{"123456", 0, 0, false, false},
		{"fast", 0, 0, false, false},
	}

	for _, test := range tests {
		s, ok := LookupSpeed(test.token)
		if ok != test.found {
			t.Errorf("LookupSpeed(%q) found = %v, expected %v", test.token, ok, test.found)
			continue
		}
		if !ok {
			continue
		}
		if s.Code != test.code || s.Value != test.value {
			t.Errorf("LookupSpeed(%q) = {%#x %d}, expected {%#x %d}", test.token, s.Code, s.Value, test.code, test.value)
		}
		if s.Extended() != test.extended {
			t.Errorf("LookupSpeed(%q) extended = %v, expected %v", test.token, s.Extended(), test.extended)
		}
	}
}

func TestTableCopies(t *testing.T) {
	modes := Modes()
	modes[0].Name = "changed"
	if Modes()[0].Name == "changed" {
		t.Error("Modes returned the shared table")
	}

	speeds := Speeds()
	speeds[0].Token = "changed"
	if Speeds()[0].Token == "changed" {
		t.Error("Speeds returned the shared table")
	}
}
