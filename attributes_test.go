package serial

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// fakeDevice records attribute traffic instead of touching a real line
type fakeDevice struct {
	state   LineDisciplineState
	sets    int
	extSets int
	getErr  error
	setErr  error
	closed  bool
}

func (d *fakeDevice) State() (LineDisciplineState, error) {
	return d.state, d.getErr
}

func (d *fakeDevice) SetStateFlush(s LineDisciplineState) error {
	if d.setErr != nil {
		return d.setErr
	}
	d.sets++
	d.state = s
	return nil
}

func (d *fakeDevice) ExtendedState() (LineDisciplineState, error) {
	return d.state, d.getErr
}

func (d *fakeDevice) SetExtendedStateFlush(s LineDisciplineState) error {
	if d.setErr != nil {
		return d.setErr
	}
	d.extSets++
	d.state = s
	return nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func (d *fakeDevice) open(string) (termiosDevice, error) {
	return d, nil
}

func TestApplyRawConfig_WritesOnlyOnChange(t *testing.T) {
	dev := &fakeDevice{state: cookedState()}

	res, err := applyRawConfig(dev.open, "/dev/fake", "", DefaultConfig())
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Equal(t, 1, dev.sets)
	require.True(t, dev.closed)

	res, err = applyRawConfig(dev.open, "/dev/fake", "", DefaultConfig())
	require.NoError(t, err)
	require.False(t, res.Changed)
	require.Equal(t, 1, dev.sets, "second apply must not write")
}

func TestApplyRawConfig_SetAndClear(t *testing.T) {
	st := cookedState()
	st.Lflag &^= unix.ECHO
	dev := &fakeDevice{state: st}

	res, err := applyRawConfig(dev.open, "/dev/fake", "echo\n-icanon\n", DefaultConfig())
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Empty(t, res.Diagnostics)
	require.Equal(t, 1, dev.sets)
	require.NotZero(t, dev.state.Lflag&unix.ECHO)
	require.Zero(t, dev.state.Lflag&unix.ICANON)

	want := st
	want.Lflag = (want.Lflag | unix.ECHO) &^ unix.ICANON
	require.True(t, dev.state.Equal(want), "only echo and icanon may change")
}

func TestApplyRawConfig_NoOpSettings(t *testing.T) {
	dev := &fakeDevice{state: cookedState()}

	res, err := applyRawConfig(dev.open, "/dev/fake", "icanon\necho\n", DefaultConfig())
	require.NoError(t, err)
	require.False(t, res.Changed)
	require.Zero(t, dev.sets)
}

func TestApplyRawConfig_ReturnsDiagnostics(t *testing.T) {
	dev := &fakeDevice{state: cookedState()}

	res, err := applyRawConfig(dev.open, "/dev/fake", "-cs8\nintr = ^C;\n-echo\n", DefaultConfig())
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Len(t, res.Diagnostics, 2)
	require.Equal(t, DiagNotReversible, res.Diagnostics[0].Kind)
	require.Equal(t, DiagControlCharMismatch, res.Diagnostics[1].Kind)
	require.Zero(t, dev.state.Lflag&unix.ECHO)
}

func TestApplyRawConfig_Errors(t *testing.T) {
	openErr := func(string) (termiosDevice, error) { return nil, unix.ENOENT }

	_, err := applyRawConfig(openErr, "", "", DefaultConfig())
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = applyRawConfig(openErr, "/dev/missing", "", DefaultConfig())
	require.ErrorIs(t, err, ErrDeviceOpen)
	require.ErrorIs(t, err, unix.ENOENT)

	dev := &fakeDevice{getErr: unix.ENOTTY}
	_, err = applyRawConfig(dev.open, "/dev/fake", "", DefaultConfig())
	require.ErrorIs(t, err, ErrAttributeGet)
	require.ErrorIs(t, err, unix.ENOTTY)
	require.True(t, dev.closed)

	dev = &fakeDevice{state: cookedState(), setErr: unix.EPERM}
	_, err = applyRawConfig(dev.open, "/dev/fake", "", DefaultConfig())
	require.ErrorIs(t, err, ErrAttributeSet)
	require.ErrorIs(t, err, unix.EPERM)

	var de *DeviceError
	require.True(t, errors.As(err, &de))
	require.Equal(t, "/dev/fake", de.Device)
}

func TestApplyRawConfig_NotATerminal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := ApplyRawConfig(path, "")
	require.ErrorIs(t, err, ErrAttributeGet)
	require.ErrorIs(t, err, unix.ENOTTY)
}

func TestApplyRawConfig_PTY(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	// pty drivers force cs8 and clear parenb, so stick to modes they keep
	settings := "-icanon\n-echo\n-isig\n-icrnl\n-opost\nintr = <undef>;\nquit = <undef>;\n"

	res, err := ApplyRawConfig(slave.Name(), settings)
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Empty(t, res.Diagnostics)

	tio, err := unix.IoctlGetTermios(int(slave.Fd()), unix.TCGETS)
	require.NoError(t, err)
	require.Zero(t, tio.Lflag&(unix.ICANON|unix.ECHO|unix.ISIG))
	require.Zero(t, tio.Iflag&unix.ICRNL)
	require.Zero(t, tio.Oflag&unix.OPOST)
	require.Equal(t, uint8(DisabledChar), tio.Cc[unix.VINTR])
	require.Equal(t, uint8(DisabledChar), tio.Cc[unix.VQUIT])

	res, err = ApplyRawConfig(slave.Name(), settings)
	require.NoError(t, err)
	require.False(t, res.Changed, "already configured device must not be written")
}
