// Package logging builds the slog loggers used by the rubikal commands.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Verbose bool      // Enable debug output on the console
	LogFile string    // Rotating log file path; empty disables file logging
	Writer  io.Writer // Console writer; defaults to os.Stderr
}

// consoleHandler writes the message followed by its attributes, without
// timestamps or level prefixes.
type consoleHandler struct {
	writer    io.Writer
	debugMode bool
	quiet     *atomic.Bool
	attrs     []slog.Attr
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	if level == slog.LevelDebug {
		return h.debugMode
	}
	return true
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if h.quiet.Load() {
		return nil
	}

	var b strings.Builder
	if record.Level >= slog.LevelWarn {
		b.WriteString(record.Level.String())
		b.WriteString(": ")
	}
	b.WriteString(record.Message)

	write := func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Any())
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	record.Attrs(write)

	_, err := fmt.Fprintln(h.writer, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *consoleHandler) WithGroup(_ string) slog.Handler {
	return h
}

// multiHandler fans out log records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: newHandlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	newHandlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		newHandlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: newHandlers}
}

// Logger owns a slog.Logger and the rotating file behind it.
type Logger struct {
	*slog.Logger
	file  *lumberjack.Logger
	quiet *atomic.Bool
}

// New creates a logger writing to the console and, if opts.LogFile is set,
// to a size-rotated file that always records debug output.
// Debug console output is on when opts.Verbose or the DEBUG env var is set.
func New(opts Options) (*Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	l := &Logger{quiet: new(atomic.Bool)}
	handlers := []slog.Handler{&consoleHandler{
		writer:    writer,
		debugMode: opts.Verbose || os.Getenv("DEBUG") != "",
		quiet:     l.quiet,
	}}

	if opts.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0750); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		l.file = newRotatingFile(opts.LogFile)
		handlers = append(handlers, slog.NewTextHandler(l.file, &slog.HandlerOptions{
			Level: slog.LevelDebug,
			ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.Attr{Key: a.Key, Value: slog.StringValue(a.Value.Time().Format("2006-01-02 15:04:05.000"))}
				}
				return a
			},
		}))
	}

	l.Logger = slog.New(&multiHandler{handlers: handlers})
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		quiet:  new(atomic.Bool),
	}
}

// SetQuiet suppresses console output, e.g. while a TUI owns the terminal.
// File logging is unaffected.
func (l *Logger) SetQuiet(quiet bool) {
	l.quiet.Store(quiet)
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// newRotatingFile creates a lumberjack logger with limits from the environment.
func newRotatingFile(path string) *lumberjack.Logger {
	config := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1, // megabytes
		MaxBackups: 2,
		MaxAge:     30, // days
		Compress:   false,
	}

	if n, ok := envInt("RUBIKAL_LOG_MAX_SIZE"); ok && n > 0 {
		config.MaxSize = n
	}
	if n, ok := envInt("RUBIKAL_LOG_MAX_BACKUPS"); ok && n >= 0 {
		config.MaxBackups = n
	}
	if n, ok := envInt("RUBIKAL_LOG_MAX_AGE"); ok && n > 0 {
		config.MaxAge = n
	}

	return config
}

func envInt(key string) (int, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
