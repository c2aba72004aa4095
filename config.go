package serial

import (
	"context"
	"log/slog"
	"time"

	"github.com/allbin/go-serial-stress/internal/logging"
)

// Config holds the settings shared by the configuration, write and reader
// operations. Every operation takes it through functional options.
type Config struct {
	Logger *slog.Logger
	Debug  bool // log every applied setting, not only problems

	// LogFormat is how the detached reader renders its debug log
	LogFormat logging.Format

	NonBlocking bool // open the write side with O_NONBLOCK
	Create      bool // create the write target if it does not exist

	HandshakeTimeout time.Duration // bound on the reader's readiness message
	ResultTimeout    time.Duration // bound on the reader's final message, 0 derives it
	ReadPollTimeout  time.Duration // reader's wait for data per poll
	ReadRetries      int           // consecutive poll timeouts before the reader gives up
	ChunkSize        int           // reader's maximum read size

	Progress func(WriteStats) // called after every successful write
}

// Option is a functional option for configuring an operation
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Logger:           slog.New(slog.DiscardHandler),
		LogFormat:        logging.FormatColor,
		HandshakeTimeout: 5 * time.Second,
		ReadPollTimeout:  3 * time.Second,
		ReadRetries:      4,
		ChunkSize:        4096,
	}
}

func newConfig(opts []Option) (Config, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return Config{}, err
		}
	}
	return config, nil
}

// resultTimeout bounds the wait for the reader's final status. The reader
// can idle for ReadRetries+1 poll periods after the last byte arrives.
func (c Config) resultTimeout() time.Duration {
	if c.ResultTimeout > 0 {
		return c.ResultTimeout
	}
	return time.Duration(c.ReadRetries+1)*c.ReadPollTimeout + c.HandshakeTimeout
}

// WithLogger sets the logger used for diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return ErrInvalidArgument
		}
		c.Logger = logger
		return nil
	}
}

// WithDebug enables per-setting debug logging
func WithDebug(debug bool) Option {
	return func(c *Config) error {
		c.Debug = debug
		return nil
	}
}

// WithLogFormat sets the detached reader's log format: "color" or "text"
func WithLogFormat(format string) Option {
	return func(c *Config) error {
		switch f := logging.Format(format); f {
		case logging.FormatColor, logging.FormatText:
			c.LogFormat = f
			return nil
		default:
			return ErrInvalidArgument
		}
	}
}

// WithNonBlocking opens the write side non-blocking, so a full output
// queue shows up as EAGAIN instead of a blocked write
func WithNonBlocking() Option {
	return func(c *Config) error {
		c.NonBlocking = true
		return nil
	}
}

// WithCreate creates the write target as a regular file when it does not exist
func WithCreate() Option {
	return func(c *Config) error {
		c.Create = true
		return nil
	}
}

// WithHandshakeTimeout sets how long to wait for the reader to report readiness
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return ErrInvalidArgument
		}
		c.HandshakeTimeout = timeout
		return nil
	}
}

// WithResultTimeout sets how long to wait for the reader's final status
func WithResultTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < 0 {
			return ErrInvalidArgument
		}
		c.ResultTimeout = timeout
		return nil
	}
}

// WithReadPollTimeout sets the reader's per-poll wait, in whole milliseconds
func WithReadPollTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < time.Millisecond || timeout%time.Millisecond != 0 {
			return ErrInvalidArgument
		}
		c.ReadPollTimeout = timeout
		return nil
	}
}

// WithReadRetries sets how many consecutive empty polls the reader tolerates
func WithReadRetries(retries int) Option {
	return func(c *Config) error {
		if retries < 1 {
			return ErrInvalidArgument
		}
		c.ReadRetries = retries
		return nil
	}
}

// WithChunkSize sets the reader's maximum read size
func WithChunkSize(size int) Option {
	return func(c *Config) error {
		if size < 1 {
			return ErrInvalidArgument
		}
		c.ChunkSize = size
		return nil
	}
}

// WithProgress registers a callback for write progress
func WithProgress(fn func(WriteStats)) Option {
	return func(c *Config) error {
		c.Progress = fn
		return nil
	}
}

// logger returns the configured logger, dropping debug records unless
// Debug is set
func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	if c.Debug {
		return c.Logger
	}
	return slog.New(&quietHandler{Handler: c.Logger.Handler()})
}

type quietHandler struct {
	slog.Handler
}

func (h *quietHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level > slog.LevelDebug && h.Handler.Enabled(ctx, level)
}

func (h *quietHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &quietHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *quietHandler) WithGroup(name string) slog.Handler {
	return &quietHandler{Handler: h.Handler.WithGroup(name)}
}
