package cmd

import (
	"errors"

	serial "github.com/allbin/go-serial-stress"
)

// Exit codes by error kind
const (
	exitFailure    = 1
	exitUsage      = 2
	exitDevice     = 3
	exitReader     = 4
	exitIncomplete = 5
)

func exitCode(err error) int {
	switch {
	case errors.Is(err, serial.ErrInvalidArgument):
		return exitUsage
	case errors.Is(err, serial.ErrDeviceOpen),
		errors.Is(err, serial.ErrAttributeGet),
		errors.Is(err, serial.ErrAttributeSet),
		errors.Is(err, serial.ErrNotATTY):
		return exitDevice
	case errors.Is(err, serial.ErrFork),
		errors.Is(err, serial.ErrHandshake):
		return exitReader
	case errors.Is(err, serial.ErrReadTimeout),
		errors.Is(err, serial.ErrIO):
		return exitIncomplete
	default:
		return exitFailure
	}
}
