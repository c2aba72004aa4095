package serial

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// DeviceInfo describes a device path before a session touches it
type DeviceInfo struct {
	Name         string
	Path         string
	Description  string
	Exists       bool
	IsCharDevice bool
	IsTerminal   bool
}

// DescribeDevice inspects path without changing it. A missing path is not
// an error; it is reported with Exists false so callers can decide whether
// to create it.
func DescribeDevice(path string) (*DeviceInfo, error) {
	if path == "" {
		return nil, deviceError("describe", path, ErrInvalidArgument, nil)
	}

	name := filepath.Base(path)
	info := &DeviceInfo{
		Name:        name,
		Path:        path,
		Description: deviceDescription(name),
	}

	st, err := os.Stat(path)
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return nil, deviceError("describe", path, ErrDeviceOpen, err)
	}
	info.Exists = true
	info.IsCharDevice = st.Mode()&os.ModeCharDevice != 0

	if !info.IsCharDevice {
		info.Description = "Regular File"
		return info, nil
	}
	info.IsTerminal = isTerminal(path)
	return info, nil
}

// isTerminal opens path without blocking and asks for its attributes
func isTerminal(path string) bool {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		return false
	}
	defer unix.Close(fd)

	_, err = unix.IoctlGetTermios(fd, unix.TCGETS)
	return err == nil
}

// deviceDescription names the kind of port a device node usually is
func deviceDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttymxc"):
		return "i.MX Serial Port"
	case strings.HasPrefix(name, "ttySAC"):
		return "Samsung Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyO"):
		return "OMAP Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	case name == "ptmx" || isDigits(name):
		return "Pseudo Terminal"
	default:
		return "Serial Port"
	}
}

// isDigits matches pts slave names like "3"
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
