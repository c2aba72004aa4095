package serial

import (
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// Reader status codes carried in ReaderStatus.Status
const (
	StatusOK int32 = iota
	StatusOpenFailed
	StatusNotATTY
	StatusReadTimeout
	StatusIOError
	StatusBadArguments
)

// ReaderStatusSize is the encoded size of a ReaderStatus
const ReaderStatusSize = 24

// ReaderStatus is the message the detached reader sends over its pipe:
// once when it is ready (or failed to start) and once when it is done.
//
// Wire layout, little-endian:
//
//	0  int32  status
//	4  int32  errno
//	8  uint64 bytes read
//	16 uint64 read attempts
type ReaderStatus struct {
	Status       int32
	ErrorCode    int32
	BytesRead    uint64
	ReadAttempts uint64
}

// MarshalBinary encodes the status in its fixed wire layout
func (s ReaderStatus) MarshalBinary() ([]byte, error) {
	b := make([]byte, ReaderStatusSize)
	binary.LittleEndian.PutUint32(b[0:], uint32(s.Status))
	binary.LittleEndian.PutUint32(b[4:], uint32(s.ErrorCode))
	binary.LittleEndian.PutUint64(b[8:], s.BytesRead)
	binary.LittleEndian.PutUint64(b[16:], s.ReadAttempts)
	return b, nil
}

// UnmarshalBinary decodes a status from its fixed wire layout
func (s *ReaderStatus) UnmarshalBinary(b []byte) error {
	if len(b) != ReaderStatusSize {
		return fmt.Errorf("reader status: got %d bytes, want %d", len(b), ReaderStatusSize)
	}
	s.Status = int32(binary.LittleEndian.Uint32(b[0:]))
	s.ErrorCode = int32(binary.LittleEndian.Uint32(b[4:]))
	s.BytesRead = binary.LittleEndian.Uint64(b[8:])
	s.ReadAttempts = binary.LittleEndian.Uint64(b[16:])
	return nil
}

func writeStatus(w io.Writer, s ReaderStatus) error {
	b, _ := s.MarshalBinary()
	n, err := w.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return io.ErrShortWrite
	}
	return nil
}

func readStatus(r io.Reader) (ReaderStatus, error) {
	b := make([]byte, ReaderStatusSize)
	if _, err := io.ReadFull(r, b); err != nil {
		return ReaderStatus{}, err
	}
	var s ReaderStatus
	err := s.UnmarshalBinary(b)
	return s, err
}

// OK reports whether the reader finished (or started) without error
func (s ReaderStatus) OK() bool {
	return s.Status == StatusOK
}

// Err converts a failed status into an error carrying its errno
func (s ReaderStatus) Err(device string) error {
	var kind error
	switch s.Status {
	case StatusOK:
		return nil
	case StatusOpenFailed:
		kind = ErrDeviceOpen
	case StatusNotATTY:
		kind = ErrNotATTY
	case StatusReadTimeout:
		kind = ErrReadTimeout
	case StatusBadArguments:
		kind = ErrInvalidArgument
	default:
		kind = ErrIO
	}
	var cause error
	if s.ErrorCode != 0 {
		cause = unix.Errno(s.ErrorCode)
	}
	return deviceError("reader", device, kind, cause)
}

func (s ReaderStatus) String() string {
	return fmt.Sprintf("status=%d errno=%d read=%d attempts=%d",
		s.Status, s.ErrorCode, s.BytesRead, s.ReadAttempts)
}
