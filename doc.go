// Package serial configures Linux serial lines for raw transmission and
// stress tests them with a deterministic byte pattern.
//
// A test session has three parts: put the line into raw mode, start a
// reader that drains the line in a separate process, then write the test
// pattern and compare what the reader received.
//
// # Raw Configuration
//
// Settings use the stty mini-language: one mode name per token, "-" to
// clear a mode, and "name = <undef>;" to disable a control character. The
// device is only written when the settings change it:
//
//	res, err := serial.ApplyRawConfig("/dev/ttyUSB0", "",
//	    serial.WithLogger(slog.Default()),
//	)
//	for _, d := range res.Diagnostics {
//	    fmt.Println(d)
//	}
//
// An empty settings text applies DefaultRawSettings. Line speed is set
// separately, by token:
//
//	err := serial.ApplySpeed("/dev/ttyUSB0", "921600")
//
// # Detached Reader
//
// The reader is a re-executed copy of the running binary, started in its
// own session. Programs that spawn readers must hand control to it first
// thing in main:
//
//	func main() {
//	    if serial.RunWorker() {
//	        return
//	    }
//	    ...
//	}
//
// SpawnDetachedReader returns once the reader has the device open, and
// AwaitReaderResult collects its final count:
//
//	h, err := serial.SpawnDetachedReader("/dev/ttyUSB1", 1<<20)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// write...
//	st, err := serial.AwaitReaderResult(h)
//	fmt.Println(st.BytesRead, st.Err(h.Device))
//
// # Writing the Pattern
//
// The pattern is 196 bytes of high/low pairs ending in 0x80 0x00 CR LF.
// It is written in bursts that grow from the last 3 bytes to all 196,
// then start over, so every burst ends with CR LF:
//
//	port, err := serial.OpenPort("/dev/ttyUSB0", serial.WithNonBlocking())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	stats, err := port.WritePattern(1 << 20)
//	fmt.Println(stats.Sent, stats.EAGAINs)
//
// # Error Handling
//
// Failures are *DeviceError values that match both their kind and the
// underlying errno:
//
//	if errors.Is(err, serial.ErrAttributeSet) && errors.Is(err, unix.EPERM) {
//	    // no permission to reconfigure the port
//	}
package serial
