// Package log installs a slog handler inside the guest that forwards every
// record to the host's log_message import.
package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strings"

	"github.com/reglet-dev/rule-verifier/wireformat"
)

// Sink receives one serialized wireformat.LogMessageWire per record.
type Sink func(payload []byte)

// HandlerOption configures the GuestHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	sink      Sink
	level     slog.Leveler
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		sink:  defaultSink,
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
// Records below this level are dropped before crossing the boundary.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		if level != nil {
			c.level = level
		}
	}
}

// WithSource enables reporting of source location (file:line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithSink replaces the destination of serialized records.
func WithSink(sink Sink) HandlerOption {
	return func(c *handlerConfig) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// GuestHandler implements slog.Handler on top of a Sink.
type GuestHandler struct {
	opts   handlerConfig
	attrs  []wireformat.LogAttrWire
	prefix string
}

// NewHandler creates a new GuestHandler with the given options.
func NewHandler(opts ...HandlerOption) *GuestHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &GuestHandler{opts: cfg}
}

// Enabled reports whether the handler handles records at the given level.
func (h *GuestHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// Handle serializes the record and hands it to the sink.
func (h *GuestHandler) Handle(_ context.Context, record slog.Record) error {
	payload, err := h.encode(record)
	if err != nil {
		return fmt.Errorf("log: encode record: %w", err)
	}
	h.opts.sink(payload)
	return nil
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *GuestHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := h.clone()
	for _, attr := range attrs {
		clone.attrs = appendAttr(clone.attrs, h.prefix, attr)
	}
	return clone
}

// WithGroup returns a handler that qualifies later attribute keys with name.
func (h *GuestHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.prefix = h.prefix + name + "."
	return clone
}

func (h *GuestHandler) clone() *GuestHandler {
	return &GuestHandler{
		opts:   h.opts,
		attrs:  slices.Clip(h.attrs),
		prefix: h.prefix,
	}
}

func (h *GuestHandler) encode(record slog.Record) ([]byte, error) {
	msg := wireformat.LogMessageWire{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	msg.Attrs = make([]wireformat.LogAttrWire, 0, len(h.attrs)+record.NumAttrs()+1)
	if h.opts.addSource && record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		msg.Attrs = append(msg.Attrs, wireformat.LogAttrWire{
			Key:   slog.SourceKey,
			Type:  "string",
			Value: fmt.Sprintf("%s:%d", trimPath(frame.File), frame.Line),
		})
	}
	msg.Attrs = append(msg.Attrs, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		msg.Attrs = appendAttr(msg.Attrs, h.prefix, attr)
		return true
	})

	return json.Marshal(msg)
}

func trimPath(file string) string {
	if i := strings.LastIndexByte(file, '/'); i >= 0 {
		if j := strings.LastIndexByte(file[:i], '/'); j >= 0 {
			return file[j+1:]
		}
	}
	return file
}
