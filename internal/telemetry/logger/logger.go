package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// Format is the output format (json, text).
	Format string
	// Output is the output writer (defaults to os.Stderr).
	Output io.Writer
	// AddSource adds caller file information to log entries.
	AddSource bool
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Output: os.Stderr,
	}
}

type zeroLogger struct {
	zl  zerolog.Logger
	ctx context.Context
}

// New creates a new logger with the given configuration.
// The level is applied globally so SetLevel affects every logger.
func New(cfg Config) (Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	switch strings.ToLower(cfg.Format) {
	case "text", "console":
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.RFC3339, NoColor: true}
	case "", "json":
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zctx := zerolog.New(output).With().Timestamp()
	if cfg.AddSource {
		zctx = zctx.Caller()
	}

	return &zeroLogger{
		zl:  zctx.Logger(),
		ctx: context.Background(),
	}, nil
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &zeroLogger{zl: zerolog.Nop(), ctx: context.Background()}
}

// SetLevel dynamically sets the global log level.
// Unknown levels are ignored.
func SetLevel(level string) {
	if l, err := ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(l)
	}
}

// GetLevel returns the current log level as a string.
func GetLevel() string {
	switch zerolog.GlobalLevel() {
	case zerolog.DebugLevel, zerolog.TraceLevel:
		return "debug"
	case zerolog.WarnLevel:
		return "warn"
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel converts a level name to a zerolog level. Empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "", "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// OpenOutput resolves an output name to a writer: stderr, stdout,
// discard, or a file path opened for appending. The returned close
// function is never nil.
func OpenOutput(name string) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(name) {
	case "", "stderr":
		return os.Stderr, noop, nil
	case "stdout":
		return os.Stdout, noop, nil
	case "discard", "none":
		return io.Discard, noop, nil
	}
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, noop, fmt.Errorf("open log file: %w", err)
	}
	return f, f.Close, nil
}

func (l *zeroLogger) Debug(msg string, args ...any) {
	l.emit(l.zl.Debug(), msg, args)
}

func (l *zeroLogger) Info(msg string, args ...any) {
	l.emit(l.zl.Info(), msg, args)
}

func (l *zeroLogger) Warn(msg string, args ...any) {
	l.emit(l.zl.Warn(), msg, args)
}

func (l *zeroLogger) Error(msg string, args ...any) {
	l.emit(l.zl.Error(), msg, args)
}

func (l *zeroLogger) With(args ...any) Logger {
	zctx := l.zl.With()
	forEachPair(args, func(key string, val any) {
		zctx = zctx.Interface(key, redactField(key, val))
	})
	return &zeroLogger{zl: zctx.Logger(), ctx: l.ctx}
}

func (l *zeroLogger) WithContext(ctx context.Context) Logger {
	return &zeroLogger{zl: l.zl, ctx: ctx}
}

func (l *zeroLogger) emit(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	if reqID := RequestIDFromContext(l.ctx); reqID != "" {
		e = e.Str("request_id", reqID)
	}
	forEachPair(args, func(key string, val any) {
		switch v := val.(type) {
		case error:
			e = e.AnErr(key, v)
		case string:
			e = e.Str(key, redactString(key, v))
		default:
			e = e.Interface(key, v)
		}
	})
	e.Msg(msg)
}

// forEachPair walks slog-style key/value arguments. A dangling value is
// reported under "!BADKEY".
func forEachPair(args []any, fn func(key string, val any)) {
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			fn("!BADKEY", args[i])
			if !ok {
				i--
			}
			continue
		}
		fn(key, args[i+1])
	}
}

// Global logger instance for convenience methods.
var defaultLogger atomic.Pointer[zeroLogger]

func init() {
	l, _ := New(DefaultConfig())
	defaultLogger.Store(l.(*zeroLogger))
}

// SetDefault sets the default global logger.
func SetDefault(l Logger) {
	if zl, ok := l.(*zeroLogger); ok {
		defaultLogger.Store(zl)
	}
}

// Default returns the default global logger.
func Default() Logger {
	return defaultLogger.Load()
}

// Debug logs at debug level using the default logger.
func Debug(msg string, args ...any) {
	defaultLogger.Load().Debug(msg, args...)
}

// Info logs at info level using the default logger.
func Info(msg string, args ...any) {
	defaultLogger.Load().Info(msg, args...)
}

// Warn logs at warn level using the default logger.
func Warn(msg string, args ...any) {
	defaultLogger.Load().Warn(msg, args...)
}

// Error logs at error level using the default logger.
func Error(msg string, args ...any) {
	defaultLogger.Load().Error(msg, args...)
}
