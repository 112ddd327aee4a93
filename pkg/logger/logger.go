package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a structured logger over zerolog. Entries at or above the
// collector's level are also aggregated by a LogCollector when one is set.
type Logger struct {
	zl        zerolog.Logger
	collector *LogCollector
}

// Config selects level, encoding and destination.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json or console
	Output     string // stdout, stderr, or file path
	TimeFormat string
	// Service is stamped on every entry when set.
	Service string
}

// New builds a Logger from cfg.
func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	out, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339Nano
	}
	zerolog.TimeFieldFormat = timeFormat

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
	}

	zctx := zerolog.New(out).Level(level).With().Timestamp().CallerWithSkipFrameCount(4)
	if cfg.Service != "" {
		zctx = zctx.Str("service", cfg.Service)
	}
	return &Logger{zl: zctx.Logger()}, nil
}

func openOutput(output string) (io.Writer, error) {
	switch output {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", output, err)
	}
	return f, nil
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child Logger carrying fields on every entry. The child
// shares the parent's collector.
func (l *Logger) With(fields ...Field) *Logger {
	zctx := l.zl.With()
	for _, f := range fields {
		k, v := f.GetKeyValue()
		zctx = zctx.Interface(k, v)
	}
	return &Logger{zl: zctx.Logger(), collector: l.collector}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(zerolog.DebugLevel, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(zerolog.InfoLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(zerolog.WarnLevel, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(zerolog.ErrorLevel, msg, fields) }

func (l *Logger) log(level zerolog.Level, msg string, fields []Field) {
	if event := l.zl.WithLevel(level); event != nil {
		for _, f := range fields {
			f.AddTo(event)
		}
		event.Msg(msg)
	}
	if l.collector != nil && level >= l.collector.level {
		l.collector.AddLog(level.String(), msg, fieldMap(fields), callerOf(3))
	}
}

// callerOf returns "dir/file.go:line" of the frame skip levels up.
func callerOf(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	short := filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file))
	return short + ":" + strconv.Itoa(line)
}

func fieldMap(fields []Field) map[string]interface{} {
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		k, v := f.GetKeyValue()
		m[k] = v
	}
	return m
}

// AddCollector starts aggregating entries into cfg.Publisher, replacing any
// previous collector.
func (l *Logger) AddCollector(cfg *CollectionConfig) {
	l.RemoveCollector()
	l.collector = NewLogCollector(cfg)
}

// RemoveCollector flushes and stops the collector.
func (l *Logger) RemoveCollector() {
	if l.collector != nil {
		l.collector.Close()
		l.collector = nil
	}
}

// Field is a typed key/value attached to an entry.
type Field interface {
	AddTo(event *zerolog.Event)
	GetKeyValue() (string, interface{})
}

type field[T any] struct {
	key   string
	value T
	add   func(e *zerolog.Event, key string, value T) *zerolog.Event
	plain func(T) interface{}
}

func (f field[T]) AddTo(event *zerolog.Event) { f.add(event, f.key, f.value) }

func (f field[T]) GetKeyValue() (string, interface{}) {
	if f.plain != nil {
		return f.key, f.plain(f.value)
	}
	return f.key, f.value
}

func String(key, value string) Field {
	return field[string]{key: key, value: value, add: (*zerolog.Event).Str}
}

func Int(key string, value int) Field {
	return field[int]{key: key, value: value, add: (*zerolog.Event).Int}
}

func Int64(key string, value int64) Field {
	return field[int64]{key: key, value: value, add: (*zerolog.Event).Int64}
}

func Uint64(key string, value uint64) Field {
	return field[uint64]{key: key, value: value, add: (*zerolog.Event).Uint64}
}

func Float64(key string, value float64) Field {
	return field[float64]{key: key, value: value, add: (*zerolog.Event).Float64}
}

func Bool(key string, value bool) Field {
	return field[bool]{key: key, value: value, add: (*zerolog.Event).Bool}
}

func Strings(key string, value []string) Field {
	return field[[]string]{key: key, value: value, add: (*zerolog.Event).Strs}
}

func Any(key string, value interface{}) Field {
	return field[interface{}]{key: key, value: value, add: (*zerolog.Event).Interface}
}

// Duration logs value in milliseconds.
func Duration(key string, value time.Duration) Field {
	return field[time.Duration]{
		key:   key,
		value: value,
		add: func(e *zerolog.Event, k string, d time.Duration) *zerolog.Event {
			return e.Int64(k, d.Milliseconds())
		},
		plain: func(d time.Duration) interface{} { return d.Milliseconds() },
	}
}

func Error(err error) Field {
	return field[error]{
		key:   zerolog.ErrorFieldName,
		value: err,
		add: func(e *zerolog.Event, _ string, err error) *zerolog.Event {
			return e.Err(err)
		},
		plain: func(err error) interface{} {
			if err == nil {
				return nil
			}
			return err.Error()
		},
	}
}
