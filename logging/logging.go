package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Swind/go-region-runner/core"
)

const consoleTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Config selects the sinks and the minimum level.
type Config struct {
	Level   string
	Console bool
	File    FileConfig
}

type FileConfig struct {
	Enabled bool
	Path    string
}

// Logger is a structured logger that satisfies core.Logger. With returns a
// derived logger sharing the same sinks.
type Logger struct {
	base   zerolog.Logger
	fields []core.Field
	closer *fileCloser
}

var _ core.Logger = (*Logger)(nil)

type fileCloser struct {
	once sync.Once
	f    *os.File
}

func (c *fileCloser) close() error {
	if c == nil || c.f == nil {
		return nil
	}
	var err error
	c.once.Do(func() { err = c.f.Close() })
	return err
}

// New builds a logger from cfg. Without any enabled sink it falls back to
// the console.
func New(cfg Config) (*Logger, error) {
	zerolog.ErrorFieldName = "err"
	level := ParseLevel(cfg.Level, zerolog.InfoLevel)

	writers := make([]io.Writer, 0, 2)
	if cfg.Console {
		writers = append(writers, newConsoleWriter(os.Stdout))
	}

	var closer *fileCloser
	if cfg.File.Enabled {
		path := strings.TrimSpace(cfg.File.Path)
		if path == "" {
			path = "./regionrunner.log"
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logging: open %q: %w", path, err)
		}
		closer = &fileCloser{f: f}
		writers = append(writers, zerolog.SyncWriter(f))
	}

	if len(writers) == 0 {
		writers = append(writers, newConsoleWriter(os.Stdout))
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	return &Logger{base: zl, closer: closer}, nil
}

// NewConsole creates a console logger at the given level.
func NewConsole(level string) *Logger {
	zl := zerolog.New(newConsoleWriter(os.Stdout)).
		Level(ParseLevel(level, zerolog.InfoLevel)).
		With().Timestamp().Logger()
	return &Logger{base: zl}
}

// NewJSON writes JSON lines to w. Mostly useful in tests.
func NewJSON(w io.Writer, level string) *Logger {
	zl := zerolog.New(w).Level(ParseLevel(level, zerolog.InfoLevel)).With().Timestamp().Logger()
	return &Logger{base: zl}
}

// Nop returns a logger that writes nothing.
func Nop() *Logger {
	return &Logger{base: zerolog.Nop()}
}

// With returns a logger that adds fields to every event.
func (l *Logger) With(fields ...core.Field) *Logger {
	if len(fields) == 0 {
		return l
	}
	cp := *l
	cp.fields = append(append([]core.Field(nil), l.fields...), fields...)
	return &cp
}

// Enabled reports whether events at level would be written.
func (l *Logger) Enabled(level zerolog.Level) bool {
	return level >= l.base.GetLevel()
}

func (l *Logger) Debug(msg string, fields ...core.Field) { l.log(zerolog.DebugLevel, msg, fields) }
func (l *Logger) Info(msg string, fields ...core.Field)  { l.log(zerolog.InfoLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields ...core.Field)  { l.log(zerolog.WarnLevel, msg, fields) }
func (l *Logger) Error(msg string, fields ...core.Field) { l.log(zerolog.ErrorLevel, msg, fields) }

// Close releases the file sink, if any.
func (l *Logger) Close() error {
	return l.closer.close()
}

func (l *Logger) log(level zerolog.Level, msg string, fields []core.Field) {
	e := l.base.WithLevel(level)
	if e == nil {
		return
	}
	if caller := shortCaller(3); caller != "" {
		e.Str(zerolog.CallerFieldName, caller)
	}
	for _, f := range l.fields {
		addField(e, f)
	}
	for _, f := range fields {
		addField(e, f)
	}
	e.Msg(msg)
}

func addField(e *zerolog.Event, f core.Field) {
	switch v := f.Value.(type) {
	case string:
		e.Str(f.Key, v)
	case int:
		e.Int(f.Key, v)
	case int64:
		e.Int64(f.Key, v)
	case bool:
		e.Bool(f.Key, v)
	case float64:
		e.Float64(f.Key, v)
	case time.Duration:
		e.Dur(f.Key, v)
	case time.Time:
		e.Time(f.Key, v)
	case error:
		if v != nil {
			e.AnErr(f.Key, v)
		}
	case fmt.Stringer:
		e.Stringer(f.Key, v)
	default:
		e.Interface(f.Key, v)
	}
}

func newConsoleWriter(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: consoleTimeFormat}
}

func shortCaller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok || file == "" {
		return ""
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

// ParseLevel maps a level name to a zerolog level, returning def for
// unknown names.
func ParseLevel(s string, def zerolog.Level) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return def
	}
}
