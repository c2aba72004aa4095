package serial

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrDeviceOpen      = errors.New("failed to open serial device")
	ErrAttributeGet    = errors.New("failed to get device attributes")
	ErrAttributeSet    = errors.New("failed to set device attributes")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotATTY         = errors.New("device is not a terminal")
	ErrIO              = errors.New("serial I/O error")
	ErrPortClosed      = errors.New("serial port is closed")

	// Detached reader errors
	ErrFork        = errors.New("failed to start reader process")
	ErrHandshake   = errors.New("reader handshake failed")
	ErrReadTimeout = errors.New("reader gave up waiting for data")
)

// DeviceError carries the device and operation that failed along with the
// error kind (one of the sentinels above) and the underlying OS error.
type DeviceError struct {
	Op     string
	Device string
	Kind   error
	Err    error
}

func (e *DeviceError) Error() string {
	msg := e.Op
	if e.Device != "" {
		msg += " " + e.Device
	}
	msg = fmt.Sprintf("%s: %v", msg, e.Kind)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Is reports whether target is the error kind.
func (e *DeviceError) Is(target error) bool {
	return target == e.Kind
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

func deviceError(op, device string, kind, err error) error {
	return &DeviceError{Op: op, Device: device, Kind: kind, Err: err}
}
