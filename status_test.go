package serial

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestReaderStatusLayout(t *testing.T) {
	st := ReaderStatus{
		Status:       StatusReadTimeout,
		ErrorCode:    int32(unix.ETIMEDOUT),
		BytesRead:    0x0102030405060708,
		ReadAttempts: 42,
	}

	b, err := st.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, b, ReaderStatusSize)
	require.Equal(t, []byte{3, 0, 0, 0}, b[0:4])
	require.Equal(t, []byte{byte(unix.ETIMEDOUT), 0, 0, 0}, b[4:8])
	require.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, b[8:16])
	require.Equal(t, []byte{42, 0, 0, 0, 0, 0, 0, 0}, b[16:24])

	var back ReaderStatus
	require.NoError(t, back.UnmarshalBinary(b))
	require.Equal(t, st, back)
}

func TestReaderStatusBadLength(t *testing.T) {
	var st ReaderStatus
	require.Error(t, st.UnmarshalBinary(make([]byte, ReaderStatusSize-1)))
}

func TestReadStatusShort(t *testing.T) {
	_, err := readStatus(bytes.NewReader(make([]byte, 10)))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = readStatus(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)
}

func TestWriteReadStatus(t *testing.T) {
	var buf bytes.Buffer
	first := ReaderStatus{}
	second := ReaderStatus{BytesRead: 196, ReadAttempts: 3}

	require.NoError(t, writeStatus(&buf, first))
	require.NoError(t, writeStatus(&buf, second))
	require.Equal(t, 2*ReaderStatusSize, buf.Len())

	got, err := readStatus(&buf)
	require.NoError(t, err)
	require.Equal(t, first, got)

	got, err = readStatus(&buf)
	require.NoError(t, err)
	require.Equal(t, second, got)
}

func TestReaderStatusErr(t *testing.T) {
	tests := []struct {
		status int32
		kind   error
	}{
		{StatusOpenFailed, ErrDeviceOpen},
		{StatusNotATTY, ErrNotATTY},
		{StatusReadTimeout, ErrReadTimeout},
		{StatusIOError, ErrIO},
		{StatusBadArguments, ErrInvalidArgument},
		{99, ErrIO},
	}

	require.NoError(t, ReaderStatus{}.Err("/dev/x"))
	require.True(t, ReaderStatus{}.OK())

	for _, tt := range tests {
		st := ReaderStatus{Status: tt.status, ErrorCode: int32(unix.EBADF)}
		err := st.Err("/dev/x")
		require.ErrorIs(t, err, tt.kind)
		require.ErrorIs(t, err, unix.EBADF)
		require.Contains(t, err.Error(), "/dev/x")
		require.False(t, st.OK())
	}
}
