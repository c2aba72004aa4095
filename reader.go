package serial

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sys/unix"
)

// readerParams configures one reader session
type readerParams struct {
	Device      string
	Target      uint64
	PollTimeout time.Duration
	Retries     int
	ChunkSize   int

	Debug     bool
	LogFormat string
}

func errnoOf(err error) int32 {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return int32(errno)
	}
	return int32(unix.EIO)
}

// runReader drains the device until Target bytes have arrived or Retries
// consecutive polls time out. It sends a readiness status on out as soon
// as the device is open, and the final status when it stops. The returned
// error is only set when out could not be written.
func runReader(p readerParams, out io.Writer, log *slog.Logger) (ReaderStatus, error) {
	log = log.With("device", p.Device)

	fd, err := unix.Open(p.Device, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_NOCTTY|unix.O_CLOEXEC, 0)
	if err != nil {
		st := ReaderStatus{Status: StatusOpenFailed, ErrorCode: errnoOf(err)}
		log.Error("reader failed to open device", "error", err)
		return st, writeStatus(out, st)
	}
	defer unix.Close(fd)

	if _, err := unix.IoctlGetTermios(fd, unix.TCGETS); err != nil {
		st := ReaderStatus{Status: StatusNotATTY, ErrorCode: errnoOf(err)}
		log.Error("reader device is not a terminal", "error", err)
		return st, writeStatus(out, st)
	}

	if err := writeStatus(out, ReaderStatus{Status: StatusOK}); err != nil {
		return ReaderStatus{}, err
	}
	log.Debug("reader ready", "target", p.Target)

	st := readLoop(fd, p, log)
	log.Debug("reader finished", "status", st)
	return st, writeStatus(out, st)
}

func readLoop(fd int, p readerParams, log *slog.Logger) ReaderStatus {
	var st ReaderStatus
	buf := make([]byte, p.ChunkSize)
	timeoutMs := int(p.PollTimeout / time.Millisecond)
	retries := p.Retries

	for st.BytesRead < p.Target {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, timeoutMs)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			st.Status, st.ErrorCode = StatusIOError, errnoOf(err)
			return st
		}

		if n == 0 {
			retries--
			log.Debug("reader poll timed out", "retries_left", retries, "read", st.BytesRead)
			if retries <= 0 {
				st.Status = StatusReadTimeout
				st.ErrorCode = int32(unix.ETIMEDOUT)
				return st
			}
			continue
		}

		st.ReadAttempts++
		m, err := unix.Read(fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			st.Status, st.ErrorCode = StatusIOError, errnoOf(err)
			return st
		}
		if m == 0 {
			// readable but empty: hangup with nothing queued
			retries--
			if retries <= 0 {
				st.Status = StatusReadTimeout
				st.ErrorCode = int32(unix.ETIMEDOUT)
				return st
			}
			continue
		}

		st.BytesRead += uint64(m)
		retries = p.Retries
	}
	return st
}
