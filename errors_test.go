package serial

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sys/unix"
)

func TestDeviceError(t *testing.T) {
	err := deviceError("raw-config", "/dev/ttyS0", ErrAttributeSet, unix.EPERM)

	if !errors.Is(err, ErrAttributeSet) {
		t.Error("Expected error to match its kind")
	}
	if !errors.Is(err, unix.EPERM) {
		t.Error("Expected error to match its cause")
	}
	if errors.Is(err, ErrAttributeGet) {
		t.Error("Error matched an unrelated kind")
	}

	wrapped := fmt.Errorf("session: %w", err)
	if !errors.Is(wrapped, ErrAttributeSet) {
		t.Error("Expected wrapped error to match its kind")
	}

	expected := "raw-config /dev/ttyS0: failed to set device attributes: operation not permitted"
	if err.Error() != expected {
		t.Errorf("Error() = %q, expected %q", err.Error(), expected)
	}
}

func TestDeviceErrorWithoutDevice(t *testing.T) {
	err := &DeviceError{Op: "write", Kind: ErrIO}
	if err.Error() != "write: serial I/O error" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Error("Expected no cause")
	}
}
