package serial

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/allbin/go-serial-stress/internal/logging"
	"golang.org/x/sys/unix"
)

// The detached reader runs as a re-executed copy of the current binary.
// The caller starts a launcher, the launcher starts the reader in a new
// session and exits at once, so the reader is never a child of the caller.
// Both hold the write end of the status pipe as descriptor 3.
const (
	envRole    = "SST_WORKER_ROLE"
	envDevice  = "SST_WORKER_DEVICE"
	envTarget  = "SST_WORKER_TARGET"
	envPollMs  = "SST_WORKER_POLL_MS"
	envRetries = "SST_WORKER_RETRIES"
	envChunk   = "SST_WORKER_CHUNK"
	envDebug   = "SST_WORKER_DEBUG"
	envLogFmt  = "SST_WORKER_LOG_FORMAT"

	roleLauncher = "launcher"
	roleReader   = "reader"

	statusFd = 3
)

// ReaderHandle is the caller's side of a running detached reader
type ReaderHandle struct {
	Device string
	Target uint64

	pipe          *os.File
	resultTimeout time.Duration
}

// Close releases the status pipe. The reader keeps running; its final
// status write then fails and it exits non-zero.
func (h *ReaderHandle) Close() error {
	if h == nil || h.pipe == nil {
		return nil
	}
	err := h.pipe.Close()
	h.pipe = nil
	return err
}

// SpawnDetachedReader starts a reader process that drains device until
// target bytes have arrived. It returns once the reader has opened the
// device and reported ready, so data written afterwards is not lost.
//
// The current binary is re-executed to run the reader. Programs using this
// must call RunWorker at the top of main, and test binaries in TestMain.
func SpawnDetachedReader(device string, target uint64, opts ...Option) (*ReaderHandle, error) {
	config, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if device == "" {
		return nil, deviceError("spawn reader", device, ErrInvalidArgument, nil)
	}
	log := config.logger().With("device", device)

	exe, err := os.Executable()
	if err != nil {
		return nil, deviceError("spawn reader", device, ErrFork, err)
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, deviceError("spawn reader", device, ErrFork, err)
	}

	cmd := exec.Command(exe)
	cmd.Env = workerEnv(os.Environ(), roleLauncher, readerParams{
		Device:      device,
		Target:      target,
		PollTimeout: config.ReadPollTimeout,
		Retries:     config.ReadRetries,
		ChunkSize:   config.ChunkSize,
		Debug:       config.Debug,
		LogFormat:   string(config.LogFormat),
	})
	cmd.ExtraFiles = []*os.File{w}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, deviceError("spawn reader", device, ErrFork, err)
	}
	w.Close()

	if err := cmd.Wait(); err != nil {
		r.Close()
		return nil, deviceError("spawn reader", device, ErrFork, err)
	}
	log.Debug("launcher exited", "pid", cmd.Process.Pid)

	if err := r.SetReadDeadline(time.Now().Add(config.HandshakeTimeout)); err != nil {
		r.Close()
		return nil, deviceError("spawn reader", device, ErrHandshake, err)
	}
	ready, err := readStatus(r)
	if err != nil {
		r.Close()
		return nil, deviceError("spawn reader", device, ErrHandshake, err)
	}
	if !ready.OK() {
		r.Close()
		return nil, ready.Err(device)
	}
	log.Debug("reader ready", "target", target)

	return &ReaderHandle{
		Device:        device,
		Target:        target,
		pipe:          r,
		resultTimeout: config.resultTimeout(),
	}, nil
}

// AwaitReaderResult waits for the reader's final status and closes the
// handle. A reader that stopped early still reports how much it read, so
// a failed status is returned as a value; check ReaderStatus.Err. The
// error is set only when no status arrived.
func AwaitReaderResult(h *ReaderHandle) (ReaderStatus, error) {
	if h == nil || h.pipe == nil {
		return ReaderStatus{}, deviceError("await reader", "", ErrInvalidArgument, nil)
	}
	defer h.Close()

	if err := h.pipe.SetReadDeadline(time.Now().Add(h.resultTimeout)); err != nil {
		return ReaderStatus{}, deviceError("await reader", h.Device, ErrHandshake, err)
	}
	st, err := readStatus(h.pipe)
	if err != nil {
		return ReaderStatus{}, deviceError("await reader", h.Device, ErrHandshake, err)
	}
	return st, nil
}

// RunWorker runs the reader roles of a re-executed binary. It returns
// false in a normal process and never returns in a worker.
func RunWorker() bool {
	role := os.Getenv(envRole)
	if role == "" {
		return false
	}
	os.Exit(runWorker(role))
	return true
}

func runWorker(role string) int {
	out := os.NewFile(statusFd, "reader-status")
	if out == nil {
		return 2
	}
	defer out.Close()

	p, err := workerParams()
	if err != nil {
		return rejectWorker(out, err)
	}

	switch role {
	case roleLauncher:
		return launchReader(out, p)
	case roleReader:
		if _, err := runReader(p, out, workerLogger(os.Stderr, p)); err != nil {
			fmt.Fprintf(os.Stderr, "reader: status pipe: %v\n", err)
			return 1
		}
		return 0
	default:
		return rejectWorker(out, fmt.Errorf("unknown role %q", role))
	}
}

// rejectWorker reports unusable worker parameters to the caller
func rejectWorker(out io.Writer, err error) int {
	fmt.Fprintf(os.Stderr, "reader: %v\n", err)
	writeStatus(out, ReaderStatus{Status: StatusBadArguments, ErrorCode: int32(unix.EINVAL)})
	return 2
}

// workerLogger renders reader logs like the caller's CLI does. Without
// debug the reader is silent.
func workerLogger(w io.Writer, p readerParams) *slog.Logger {
	if !p.Debug {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(logging.NewHandler(w, logging.Format(p.LogFormat), true)).
		With("module", "reader", "pid", os.Getpid())
}

// launchReader starts the reader in its own session and returns without
// waiting for it
func launchReader(out *os.File, p readerParams) int {
	exe, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "reader launcher: %v\n", err)
		return 1
	}

	cmd := exec.Command(exe)
	cmd.Env = workerEnv(os.Environ(), roleReader, p)
	cmd.ExtraFiles = []*os.File{out}
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "reader launcher: %v\n", err)
		return 1
	}
	cmd.Process.Release()
	return 0
}

// workerEnv returns env with every worker variable replaced
func workerEnv(env []string, role string, p readerParams) []string {
	out := make([]string, 0, len(env)+8)
	for _, kv := range env {
		if !strings.HasPrefix(kv, "SST_WORKER_") {
			out = append(out, kv)
		}
	}
	return append(out,
		envRole+"="+role,
		envDevice+"="+p.Device,
		envTarget+"="+strconv.FormatUint(p.Target, 10),
		envPollMs+"="+strconv.FormatInt(p.PollTimeout.Milliseconds(), 10),
		envRetries+"="+strconv.Itoa(p.Retries),
		envChunk+"="+strconv.Itoa(p.ChunkSize),
		envDebug+"="+strconv.FormatBool(p.Debug),
		envLogFmt+"="+p.LogFormat,
	)
}

func workerParams() (readerParams, error) {
	var p readerParams
	p.Device = os.Getenv(envDevice)
	if p.Device == "" {
		return p, errors.New("no device")
	}

	target, err := strconv.ParseUint(os.Getenv(envTarget), 10, 64)
	if err != nil {
		return p, fmt.Errorf("target: %w", err)
	}
	p.Target = target

	pollMs, err := strconv.ParseInt(os.Getenv(envPollMs), 10, 64)
	if err != nil || pollMs < 1 {
		return p, fmt.Errorf("poll timeout %q", os.Getenv(envPollMs))
	}
	p.PollTimeout = time.Duration(pollMs) * time.Millisecond

	if p.Retries, err = strconv.Atoi(os.Getenv(envRetries)); err != nil || p.Retries < 1 {
		return p, fmt.Errorf("retries %q", os.Getenv(envRetries))
	}
	if p.ChunkSize, err = strconv.Atoi(os.Getenv(envChunk)); err != nil || p.ChunkSize < 1 {
		return p, fmt.Errorf("chunk size %q", os.Getenv(envChunk))
	}

	p.Debug, _ = strconv.ParseBool(os.Getenv(envDebug))
	p.LogFormat = os.Getenv(envLogFmt)
	return p, nil
}
