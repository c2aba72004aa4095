package serial

import (
	"errors"
	"sync"

	"golang.org/x/sys/unix"
)

// Port is the write side of a device under test
type Port struct {
	mu     sync.RWMutex
	fd     int
	device string
	config Config
	closed bool
	cursor WriteCursor
}

// OpenPort opens device for writing. With WithNonBlocking the descriptor
// is non-blocking, so a full output queue is reported and counted instead
// of blocking. With WithCreate a missing device path is created as a plain
// file, which lets the stress writer run against a capture file.
func OpenPort(device string, opts ...Option) (*Port, error) {
	config, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if device == "" {
		return nil, deviceError("open", device, ErrInvalidArgument, nil)
	}
	log := config.logger().With("device", device)

	flags := unix.O_WRONLY | unix.O_NOCTTY | unix.O_CLOEXEC
	if config.NonBlocking {
		flags |= unix.O_NONBLOCK
	}

	fd, err := unix.Open(device, flags, 0)
	if errors.Is(err, unix.ENOENT) && config.Create {
		log.Debug("device missing, creating it")
		fd, err = unix.Open(device, flags|unix.O_CREAT, 0o644)
	}
	if err != nil {
		return nil, deviceError("open", device, ErrDeviceOpen, err)
	}

	log.Debug("opened write side", "non_blocking", config.NonBlocking)
	return &Port{
		fd:     fd,
		device: device,
		config: config,
		cursor: NewWriteCursor(),
	}, nil
}

// Device returns the path the port was opened with
func (p *Port) Device() string {
	return p.device
}

// Fd returns the underlying file descriptor
func (p *Port) Fd() int {
	return p.fd
}

// WritePattern writes count bytes of test bursts. Successive calls continue
// the burst sequence where the previous call stopped. Options override the
// port's configuration for this call only.
func (p *Port) WritePattern(count uint64, opts ...Option) (WriteStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return WriteStats{}, ErrPortClosed
	}

	config := p.config
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return WriteStats{}, err
		}
	}

	stats, err := writePattern(fdWriter(p.fd), count, &p.cursor, config)
	if err != nil {
		var de *DeviceError
		if errors.As(err, &de) {
			de.Device = p.device
		}
	}
	return stats, err
}

// Drain waits until all output written to the port has been transmitted.
// Plain files have nothing to drain.
func (p *Port) Drain() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	err := unix.IoctlSetInt(p.fd, unix.TCSBRK, 1)
	if errors.Is(err, unix.ENOTTY) {
		return nil
	}
	return err
}

// FlushOutput discards any unwritten output data
func (p *Port) FlushOutput() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPortClosed
	}

	err := unix.IoctlSetInt(p.fd, unix.TCFLSH, unix.TCOFLUSH)
	if errors.Is(err, unix.ENOTTY) {
		return nil
	}
	return err
}

// Close closes the port
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPortClosed
	}

	err := unix.Close(p.fd)
	p.closed = true
	return err
}
