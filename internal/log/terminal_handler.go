package log

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TerminalHandler formats log records as coloured terminal output using
// zerolog's console writer. slog records are marshalled to the JSON shape
// zerolog expects (time/level/message fields) and handed to the writer,
// which does the actual column alignment and ANSI colouring.
//
// Output format:
//
//	15:04:05.000 INF server started port=8080
type TerminalHandler struct {
	console *zerolog.ConsoleWriter
	level   slog.Leveler
	attrs   []slog.Attr
	groups  []string
	mu      *sync.Mutex
}

func newTerminalHandler(w io.Writer, opts *slog.HandlerOptions) *TerminalHandler {
	var level slog.Leveler
	if opts != nil && opts.Level != nil {
		level = opts.Level
	} else {
		level = slog.LevelInfo
	}

	console := zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
		cw.Out = w
		cw.TimeFormat = "15:04:05.000"
	})

	return &TerminalHandler{
		console: &console,
		level:   level,
		mu:      &sync.Mutex{},
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats a log record as coloured terminal output and writes it.
func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	fields := make(map[string]any, len(h.attrs)+4)
	fields[zerolog.TimestampFieldName] = ts.Format(time.RFC3339Nano)
	fields[zerolog.LevelFieldName] = levelName(r.Level)
	fields[zerolog.MessageFieldName] = r.Message

	for _, a := range h.attrs {
		flattenAttr(fields, a, h.groups)
	}
	r.Attrs(func(a slog.Attr) bool {
		flattenAttr(fields, a, h.groups)
		return true
	})

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(fields); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.console.Write(buf.Bytes())
	return err
}

// WithAttrs returns a new handler whose attributes consist of both the
// existing attributes and attrs.
func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(merged, h.attrs)
	merged = append(merged, attrs...)
	return &TerminalHandler{
		console: h.console,
		level:   h.level,
		attrs:   merged,
		groups:  h.groups,
		mu:      h.mu,
	}
}

// WithGroup returns a new handler with the given group name prepended to
// subsequent attribute keys.
func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	extended := make([]string, len(h.groups)+1)
	copy(extended, h.groups)
	extended[len(h.groups)] = name
	return &TerminalHandler{
		console: h.console,
		level:   h.level,
		attrs:   h.attrs,
		groups:  extended,
		mu:      h.mu,
	}
}

func levelName(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return zerolog.LevelDebugValue
	case level < slog.LevelWarn:
		return zerolog.LevelInfoValue
	case level < slog.LevelError:
		return zerolog.LevelWarnValue
	default:
		return zerolog.LevelErrorValue
	}
}

func flattenAttr(fields map[string]any, a slog.Attr, groups []string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		prefix := groups
		if a.Key != "" {
			prefix = make([]string, len(groups)+1)
			copy(prefix, groups)
			prefix[len(groups)] = a.Key
		}
		for _, ga := range a.Value.Group() {
			flattenAttr(fields, ga, prefix)
		}
		return
	}

	key := a.Key
	for i := len(groups) - 1; i >= 0; i-- {
		key = groups[i] + "." + key
	}
	fields[key] = a.Value.Any()
}
