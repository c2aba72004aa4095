package serial

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.HandshakeTimeout != 5*time.Second {
		t.Errorf("Expected HandshakeTimeout 5s, got %v", config.HandshakeTimeout)
	}
	if config.ReadPollTimeout != 3*time.Second {
		t.Errorf("Expected ReadPollTimeout 3s, got %v", config.ReadPollTimeout)
	}
	if config.ReadRetries != 4 {
		t.Errorf("Expected ReadRetries 4, got %d", config.ReadRetries)
	}
	if config.ChunkSize != 4096 {
		t.Errorf("Expected ChunkSize 4096, got %d", config.ChunkSize)
	}
	if config.NonBlocking || config.Create || config.Debug {
		t.Errorf("Expected all switches off, got %+v", config)
	}
	if config.Logger == nil {
		t.Error("Expected a default logger")
	}
}

func TestWithReadPollTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		wantErr bool
	}{
		{"1ms (min)", time.Millisecond, false},
		{"3s (default)", 3 * time.Second, false},
		{"250ms (valid)", 250 * time.Millisecond, false},
		{"0 (disabled)", 0, true},
		{"1500us (not whole ms)", 1500 * time.Microsecond, true},
		{"-1s (negative)", -time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			err := WithReadPollTimeout(tt.timeout)(&config)
			if (err != nil) != tt.wantErr {
				t.Errorf("WithReadPollTimeout(%v) error = %v, wantErr %v", tt.timeout, err, tt.wantErr)
			}
			if err == nil && config.ReadPollTimeout != tt.timeout {
				t.Errorf("ReadPollTimeout = %v, want %v", config.ReadPollTimeout, tt.timeout)
			}
		})
	}
}

func TestFunctionalOptions(t *testing.T) {
	config, err := newConfig([]Option{
		WithNonBlocking(),
		WithCreate(),
		WithDebug(true),
		WithHandshakeTimeout(time.Second),
		WithReadRetries(2),
		WithChunkSize(64),
		WithLogFormat("text"),
	})
	if err != nil {
		t.Fatalf("newConfig failed: %v", err)
	}

	if !config.NonBlocking || !config.Create || !config.Debug {
		t.Errorf("switches not applied: %+v", config)
	}
	if config.HandshakeTimeout != time.Second {
		t.Errorf("Expected HandshakeTimeout 1s, got %v", config.HandshakeTimeout)
	}
	if config.ReadRetries != 2 || config.ChunkSize != 64 {
		t.Errorf("Expected retries 2 and chunk 64, got %d and %d", config.ReadRetries, config.ChunkSize)
	}
	if config.LogFormat != "text" {
		t.Errorf("Expected LogFormat text, got %q", config.LogFormat)
	}
}

func TestInvalidOptions(t *testing.T) {
	opts := []Option{
		WithLogger(nil),
		WithHandshakeTimeout(0),
		WithResultTimeout(-time.Second),
		WithReadRetries(0),
		WithChunkSize(0),
		WithLogFormat("json"),
		WithLogFormat(""),
	}

	for i, opt := range opts {
		_, err := newConfig([]Option{opt})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("option %d: Expected ErrInvalidArgument, got %v", i, err)
		}
	}
}

func TestResultTimeout(t *testing.T) {
	config := DefaultConfig()
	if got := config.resultTimeout(); got != 20*time.Second {
		t.Errorf("Expected derived result timeout 20s, got %v", got)
	}

	config.ResultTimeout = time.Minute
	if got := config.resultTimeout(); got != time.Minute {
		t.Errorf("Expected explicit result timeout 1m, got %v", got)
	}
}

func TestLoggerDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	config := DefaultConfig()
	config.Logger = base
	config.logger().Debug("hidden")
	config.logger().With("k", "v").Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug record logged without Debug set")
	}
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "k=v") {
		t.Errorf("warning record missing: %q", buf.String())
	}

	buf.Reset()
	config.Debug = true
	config.logger().Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("debug record dropped with Debug set")
	}
}
