package serial

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// cookedState looks like a terminal fresh out of a login shell
func cookedState() LineDisciplineState {
	var st LineDisciplineState
	st.Iflag = unix.ICRNL | unix.IXON | unix.BRKINT
	st.Oflag = unix.OPOST | unix.ONLCR
	st.Cflag = unix.CS7 | unix.CREAD | unix.B9600 | unix.HUPCL
	st.Lflag = unix.ICANON | unix.ECHO | unix.ISIG | unix.IEXTEN | unix.ECHOE
	st.Cc[unix.VINTR] = 0x03
	st.Cc[unix.VQUIT] = 0x1c
	st.Cc[unix.VERASE] = 0x7f
	st.Cc[unix.VEOF] = 0x04
	st.Cc[unix.VSTART] = 0x11
	st.Cc[unix.VSTOP] = 0x13
	st.Cc[unix.VMIN] = 1
	return st
}

func TestParseSettings_ClearsLocalModes(t *testing.T) {
	st := cookedState()
	before := st

	diags := ParseSettings("-icanon\n-echo\n-isig\n", &st, nil)
	require.Empty(t, diags)

	require.Equal(t, uint32(unix.IEXTEN|unix.ECHOE), st.Lflag)
	require.Equal(t, before.Iflag, st.Iflag)
	require.Equal(t, before.Oflag, st.Oflag)
	require.Equal(t, before.Cflag, st.Cflag)
	require.Equal(t, before.Cc, st.Cc)
}

func TestParseSettings_SetsModes(t *testing.T) {
	st := cookedState()

	diags := ParseSettings("cs8\nclocal\ncrtscts\n", &st, nil)
	require.Empty(t, diags)

	require.Equal(t, uint32(unix.CS8), st.Cflag&unix.CSIZE)
	require.NotZero(t, st.Cflag&unix.CLOCAL)
	require.NotZero(t, st.Cflag&unix.CRTSCTS)
	require.Equal(t, uint32(unix.B9600), st.Cflag&unix.CBAUD)
}

func TestParseSettings_NotReversible(t *testing.T) {
	st := cookedState()
	before := st

	diags := ParseSettings("-cs7\n", &st, nil)
	require.Len(t, diags, 1)
	require.Equal(t, DiagNotReversible, diags[0].Kind)
	require.Equal(t, "-cs7", diags[0].Token)
	require.True(t, st.Equal(before))
}

func TestParseSettings_NoIrreversibleModeClears(t *testing.T) {
	var checked int
	for _, m := range Modes() {
		if m.Reversible {
			continue
		}
		checked++

		st := cookedState()
		st.SetMode(m)
		before := st

		token := "-" + m.Name
		diags := ParseSettings(token+"\n", &st, nil)
		require.Len(t, diags, 1, token)
		require.Equal(t, DiagNotReversible, diags[0].Kind, token)
		require.Equal(t, token, diags[0].Token)
		require.True(t, st.Equal(before), "%s changed the state", token)
	}
	require.NotZero(t, checked)
}

func TestParseSettings_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		settings string
		disabled bool
	}{
		{"spaced suffix", "intr = <undef>;\n", true},
		{"compact suffix", "intr =<undef>;\n", true},
		{"extra blanks", "intr   =   <undef>;  \n", true},
		{"assigned character", "intr = ^C;\n", false},
		{"bare name", "intr\n", false},
		{"suffix on next line", "intr\n= <undef>;\n", false},
		{"trailing text", "intr = <undef>; quit\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := cookedState()
			diags := ParseSettings(tt.settings, &st, nil)

			if tt.disabled {
				require.Empty(t, diags)
				require.Equal(t, uint8(DisabledChar), st.Cc[unix.VINTR])
				return
			}
			require.NotEmpty(t, diags)
			require.Equal(t, DiagControlCharMismatch, diags[0].Kind)
			require.Equal(t, uint8(0x03), st.Cc[unix.VINTR])
		})
	}
}

func TestParseSettings_Diagnostics(t *testing.T) {
	st := cookedState()
	before := st

	text := "bogus\n" +
		"speed 9600 baud;\n" +
		"rows 0; columns 0;\n" +
		"abcdefghijklmnopqrstuvwxyz\n"
	diags := ParseSettings(text, &st, nil)

	require.Equal(t, []Diagnostic{
		{Line: 1, Token: "bogus", Kind: DiagIgnored},
		{Line: 2, Token: "speed", Kind: DiagDescriptive},
		{Line: 3, Token: "rows", Kind: DiagDescriptive},
		{Line: 4, Token: "abcdefghijklmnopqrstuvwxyz", Kind: DiagOverLength},
	}, diags)
	require.True(t, st.Equal(before))
}

func TestParseSettings_OverLengthBoundary(t *testing.T) {
	st := cookedState()

	// 20 characters is still a token, 21 is not
	diags := ParseSettings("aaaaaaaaaaaaaaaaaaaa\naaaaaaaaaaaaaaaaaaaaa\n", &st, nil)
	require.Len(t, diags, 2)
	require.Equal(t, DiagIgnored, diags[0].Kind)
	require.Equal(t, DiagOverLength, diags[1].Kind)
}

func TestParseSettings_OneTokenPerLine(t *testing.T) {
	st := cookedState()

	diags := ParseSettings("-icanon -echo\n", &st, nil)
	require.Empty(t, diags)
	require.Zero(t, st.Lflag&unix.ICANON)
	require.NotZero(t, st.Lflag&unix.ECHO)
}

func TestParseSettings_LineNumbers(t *testing.T) {
	st := cookedState()

	diags := ParseSettings("\n\n   bogus\r\n\n-echo\nnope", &st, nil)
	require.Equal(t, []Diagnostic{
		{Line: 3, Token: "bogus", Kind: DiagIgnored},
		{Line: 6, Token: "nope", Kind: DiagIgnored},
	}, diags)
	require.Zero(t, st.Lflag&unix.ECHO)
}

func TestParseSettings_UnterminatedLastLine(t *testing.T) {
	st := cookedState()

	diags := ParseSettings("-echo", &st, nil)
	require.Empty(t, diags)
	require.Zero(t, st.Lflag&unix.ECHO)
}

func TestParseSettings_DefaultScript(t *testing.T) {
	st := cookedState()

	diags := ParseSettings(DefaultRawSettings, &st, nil)
	for _, d := range diags {
		require.Equal(t, DiagDescriptive, d.Kind, "unexpected diagnostic %s", d)
	}

	for _, name := range []string{"icanon", "echo", "isig", "iexten", "icrnl", "ixon", "opost", "onlcr", "brkint", "hupcl"} {
		m, ok := LookupMode(name)
		require.True(t, ok, name)
		w := st.flagWord(m.Group)
		require.Zero(t, *w&m.Set, "%s still set", name)
	}
	for _, name := range []string{"cs8", "clocal", "cread"} {
		m, ok := LookupMode(name)
		require.True(t, ok, name)
		require.True(t, st.HasMode(m), "%s not set", name)
	}
	for _, cc := range ControlChars() {
		require.Equal(t, uint8(DisabledChar), st.Cc[cc.Slot], "%s not disabled", cc.Name)
	}
	require.Equal(t, uint8(1), st.Cc[unix.VMIN])
}

func TestParseSettings_Idempotent(t *testing.T) {
	st := cookedState()
	ParseSettings(DefaultRawSettings, &st, nil)
	once := st

	ParseSettings(DefaultRawSettings, &st, nil)
	require.True(t, st.Equal(once))
}
