// Package logging provides a leveled logger backed by zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeFormat = "15:04:05.000"

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.Disabled
	}
}

// ParseLevel parses a log level string. Unknown strings mean info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is a leveled printf-style logger.
type Logger struct {
	mu    sync.Mutex
	level Level
	zl    zerolog.Logger
	now   func() time.Time
}

// New creates a logger writing to stderr.
func New(level Level) *Logger {
	l := &Logger{level: level, now: time.Now}
	l.zl = l.build(os.Stderr)
	return l
}

// build wraps w in a plain console writer producing
// "15:04:05.000 [LEVEL] message" lines. Events are formatted as they are
// written, so the clock is read in the formatter rather than stored as a field.
func (l *Logger) build(w io.Writer) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:             w,
		NoColor:         true,
		PartsOrder:      []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatTimestamp: l.formatTimestamp,
		FormatLevel:     formatLevel,
	}
	return zerolog.New(cw).Level(l.level.zerolog())
}

func (l *Logger) formatTimestamp(any) string {
	return l.now().Format(timeFormat)
}

func formatLevel(i any) string {
	s, _ := i.(string)
	return "[" + strings.ToUpper(s) + "]"
}

// SetOutput sets the log output destination.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.zl = l.build(w)
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.zl = l.zl.Level(level.zerolog())
}

func (l *Logger) event(level Level) *zerolog.Event {
	switch level {
	case LevelDebug:
		return l.zl.Debug()
	case LevelInfo:
		return l.zl.Info()
	case LevelWarn:
		return l.zl.Warn()
	default:
		return l.zl.Error()
	}
}

func (l *Logger) log(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}
	l.event(level).Msgf(format, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}

// Discard returns a logger that discards all output.
func Discard() *Logger {
	l := &Logger{level: LevelError + 1, now: time.Now}
	l.zl = zerolog.New(io.Discard).Level(zerolog.Disabled)
	return l
}

// FileConfig controls rotation of a log file.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// NewFileWriter opens a size-rotated log file. The TUI logs here so output
// never lands on the terminal it is drawing.
func NewFileWriter(cfg FileConfig) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}
}
