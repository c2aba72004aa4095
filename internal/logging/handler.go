package logging

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// Format selects how log records are rendered
type Format string

const (
	FormatColor Format = "color"
	FormatText  Format = "text"
)

// modulePrefixHandler moves a "module" attribute into a message prefix
type modulePrefixHandler struct {
	handler slog.Handler
	module  string
}

func (h *modulePrefixHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *modulePrefixHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	module := h.module
	var otherAttrs []slog.Attr

	for _, attr := range attrs {
		if attr.Key == "module" {
			module = attr.Value.String()
		} else {
			otherAttrs = append(otherAttrs, attr)
		}
	}

	return &modulePrefixHandler{
		handler: h.handler.WithAttrs(otherAttrs),
		module:  module,
	}
}

func (h *modulePrefixHandler) WithGroup(name string) slog.Handler {
	return &modulePrefixHandler{
		handler: h.handler.WithGroup(name),
		module:  h.module,
	}
}

func (h *modulePrefixHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.module == "" {
		return h.handler.Handle(ctx, r)
	}

	prefixed := slog.NewRecord(r.Time, r.Level, "["+h.module+"] "+r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		prefixed.AddAttrs(a)
		return true
	})
	return h.handler.Handle(ctx, prefixed)
}

// NewHandler returns the CLI's log handler. Color output goes through
// tint; text output is plain slog text for files and pipes.
func NewHandler(w io.Writer, format Format, debug bool) slog.Handler {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var base slog.Handler
	switch format {
	case FormatText:
		base = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	default:
		base = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	}
	return &modulePrefixHandler{handler: base}
}

// Setup installs the CLI handler as the slog default and returns its logger
func Setup(w io.Writer, format Format, debug bool) *slog.Logger {
	logger := slog.New(NewHandler(w, format, debug))
	slog.SetDefault(logger)
	return logger
}
