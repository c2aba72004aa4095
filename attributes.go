package serial

import (
	"golang.org/x/sys/unix"
)

// termiosDevice is an open device whose line discipline can be read and
// replaced. Every set flushes queued input before applying.
type termiosDevice interface {
	State() (LineDisciplineState, error)
	SetStateFlush(LineDisciplineState) error
	ExtendedState() (LineDisciplineState, error)
	SetExtendedStateFlush(LineDisciplineState) error
	Close() error
}

type openDeviceFunc func(device string) (termiosDevice, error)

// fdDevice is a termiosDevice backed by a file descriptor
type fdDevice struct {
	fd int
}

// openAttributeDevice opens a device only to inspect and change its
// attributes. It is opened read-only and non-blocking so a port without
// carrier does not hang the open.
func openAttributeDevice(device string) (termiosDevice, error) {
	fd, err := unix.Open(device, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, err
	}
	return &fdDevice{fd: fd}, nil
}

func (d *fdDevice) State() (LineDisciplineState, error) {
	t, err := unix.IoctlGetTermios(d.fd, unix.TCGETS)
	if err != nil {
		return LineDisciplineState{}, err
	}
	return stateFromTermios(t), nil
}

func (d *fdDevice) SetStateFlush(s LineDisciplineState) error {
	return unix.IoctlSetTermios(d.fd, unix.TCSETSF, s.termios())
}

func (d *fdDevice) ExtendedState() (LineDisciplineState, error) {
	t, err := unix.IoctlGetTermios(d.fd, unix.TCGETS2)
	if err != nil {
		return LineDisciplineState{}, err
	}
	return stateFromTermios(t), nil
}

func (d *fdDevice) SetExtendedStateFlush(s LineDisciplineState) error {
	return unix.IoctlSetTermios(d.fd, unix.TCSETSF2, s.termios())
}

func (d *fdDevice) Close() error {
	return unix.Close(d.fd)
}

// Result reports what ApplyRawConfig did
type Result struct {
	Changed     bool
	Diagnostics []Diagnostic
}

// ApplyRawConfig applies stty-style settings to a device. An empty settings
// text applies DefaultRawSettings. The device is only written when the
// settings change its state; the write discards any unread input.
func ApplyRawConfig(device, settings string, opts ...Option) (Result, error) {
	config, err := newConfig(opts)
	if err != nil {
		return Result{}, err
	}
	return applyRawConfig(openAttributeDevice, device, settings, config)
}

func applyRawConfig(open openDeviceFunc, device, settings string, config Config) (Result, error) {
	if device == "" {
		return Result{}, deviceError("raw-config", device, ErrInvalidArgument, nil)
	}
	if settings == "" {
		settings = DefaultRawSettings
	}
	log := config.logger().With("device", device)

	dev, err := open(device)
	if err != nil {
		return Result{}, deviceError("raw-config", device, ErrDeviceOpen, err)
	}
	defer dev.Close()

	original, err := dev.State()
	if err != nil {
		return Result{}, deviceError("raw-config", device, ErrAttributeGet, err)
	}

	working := original
	result := Result{Diagnostics: ParseSettings(settings, &working, log)}

	if working.Equal(original) {
		log.Debug("device already configured")
		return result, nil
	}

	if err := dev.SetStateFlush(working); err != nil {
		return result, deviceError("raw-config", device, ErrAttributeSet, err)
	}
	result.Changed = true
	log.Debug("applied raw configuration")
	return result, nil
}
