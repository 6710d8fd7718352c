// Package mlog is a small structured logger built directly on log/slog, in
// the shape of the teacher codebase's own log package: a colorized terminal
// handler for interactive use, a level filter, and a Logger that takes
// alternating key/value pairs rather than a format string.
package mlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level mirrors slog.Level with the naming the teacher uses.
type Level = slog.Level

const (
	LevelTrace Level = slog.Level(-8)
	LevelDebug Level = slog.LevelDebug
	LevelInfo  Level = slog.LevelInfo
	LevelWarn  Level = slog.LevelWarn
	LevelError Level = slog.LevelError
	LevelCrit  Level = slog.Level(12)
)

// Logger is a structured logger over a slog.Handler.
type Logger struct {
	inner *slog.Logger
}

// NewLogger wraps an slog.Handler.
func NewLogger(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// Root is the package-level default logger, writing to stderr at Info level
// through a terminal handler, colorized if stderr is a TTY.
var root = NewLogger(NewTerminalHandler(os.Stderr, LevelInfo))

// Root returns the package-level default logger.
func Root() *Logger { return root }

// SetRoot replaces the package-level default logger.
func SetRoot(l *Logger) { root = l }

func (l *Logger) log(level Level, msg string, ctx ...any) {
	l.inner.Log(context.Background(), level, msg, ctx...)
}

func (l *Logger) Trace(msg string, ctx ...any) { l.log(LevelTrace, msg, ctx...) }
func (l *Logger) Debug(msg string, ctx ...any) { l.log(LevelDebug, msg, ctx...) }
func (l *Logger) Info(msg string, ctx ...any)  { l.log(LevelInfo, msg, ctx...) }
func (l *Logger) Warn(msg string, ctx ...any)  { l.log(LevelWarn, msg, ctx...) }
func (l *Logger) Error(msg string, ctx ...any) { l.log(LevelError, msg, ctx...) }
func (l *Logger) Crit(msg string, ctx ...any) {
	l.log(LevelCrit, msg, ctx...)
	os.Exit(1)
}

// With returns a Logger that always includes the given key/value pairs.
func (l *Logger) With(ctx ...any) *Logger {
	return &Logger{inner: l.inner.With(ctx...)}
}

// NewTerminalHandlerWithLevel returns a handler that writes human-readable,
// optionally colorized lines to w, filtering out records below level.
// useColor forces color on or off regardless of whether w looks like a TTY;
// pass -1-style callers should use NewTerminalHandler to auto-detect.
func NewTerminalHandlerWithLevel(w io.Writer, level Level, useColor bool) slog.Handler {
	return &terminalHandler{w: w, level: level, color: useColor}
}

// NewTerminalHandler auto-detects whether w is a terminal to decide on
// colorization.
func NewTerminalHandler(w io.Writer, level Level) slog.Handler {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	h := &terminalHandler{w: w, level: level, color: color}
	if color {
		h.w = colorable.NewColorable(w.(*os.File))
	}
	return h
}

type terminalHandler struct {
	w     io.Writer
	level Level
	color bool
	attrs []slog.Attr
}

func (h *terminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *terminalHandler) Handle(_ context.Context, r slog.Record) error {
	var buf []byte
	buf = append(buf, formatLevel(r.Level, h.color)...)
	buf = append(buf, '[')
	buf = append(buf, r.Time.Format("01-02|15:04:05.000")...)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)
	for _, a := range h.attrs {
		buf = appendAttr(buf, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, a)
		return true
	})
	buf = append(buf, '\n')
	_, err := h.w.Write(buf)
	return err
}

func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &cp
}

func (h *terminalHandler) WithGroup(_ string) slog.Handler { return h }

func appendAttr(buf []byte, a slog.Attr) []byte {
	buf = append(buf, ' ')
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	return append(buf, fmt.Sprint(a.Value.Any())...)
}

func formatLevel(level Level, color bool) string {
	var name string
	var code int
	switch {
	case level >= LevelCrit:
		name, code = "CRIT ", 35
	case level >= LevelError:
		name, code = "ERROR", 31
	case level >= LevelWarn:
		name, code = "WARN ", 33
	case level >= LevelInfo:
		name, code = "INFO ", 32
	case level >= LevelDebug:
		name, code = "DEBUG", 36
	default:
		name, code = "TRACE", 34
	}
	if !color {
		return name + " "
	}
	return fmt.Sprintf("\x1b[%dm%s\x1b[0m ", code, name)
}

// Since is a convenience for logging elapsed durations, mirroring a common
// idiom in the teacher's startup/shutdown logging.
func Since(start time.Time) time.Duration { return time.Since(start) }
