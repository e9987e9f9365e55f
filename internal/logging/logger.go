// Package logging writes levelled, single-line log records with key=value fields.
package logging

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"grapher/hal"
)

// Level orders log verbosity.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "info"
	}
}

func (l Level) tag() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case WarnLevel:
		return "WARN "
	case ErrorLevel:
		return "ERROR"
	default:
		return "INFO "
	}
}

func (l Level) ansi() string {
	switch l {
	case DebugLevel:
		return "\x1b[36m"
	case WarnLevel:
		return "\x1b[33m"
	case ErrorLevel:
		return "\x1b[31m"
	default:
		return "\x1b[32m"
	}
}

// ParseLevel accepts debug, info, warn/warning and error, case-insensitively. Empty is info.
func ParseLevel(raw string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", raw)
	}
}

// Field is a structured attribute appended to a record as key=value.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field                 { return Field{Key: key, Value: value} }
func Int(key string, value int) Field                { return Field{Key: key, Value: value} }
func Uint64(key string, value uint64) Field          { return Field{Key: key, Value: value} }
func Float(key string, value float64) Field          { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field              { return Field{Key: key, Value: value} }
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }
func Error(err error) Field                          { return Field{Key: "error", Value: err} }

// Logger is safe for concurrent use. A nil *Logger discards everything.
type Logger struct {
	mu     *sync.Mutex
	out    hal.Logger
	level  Level
	color  bool
	fields []Field
}

// New logs to w. Level tags are coloured when w is a terminal.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		mu:    &sync.Mutex{},
		out:   writerLines{w: w},
		level: level,
		color: isTerminal(w),
	}
}

// HAL logs through a hal.Logger line sink.
func HAL(h hal.Logger, level Level) *Logger {
	return &Logger{mu: &sync.Mutex{}, out: h, level: level}
}

// Nop returns a logger that drops every record.
func Nop() *Logger { return nil }

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// With returns a logger that appends fields to every record.
func (l *Logger) With(fields ...Field) *Logger {
	if l == nil {
		return nil
	}
	child := *l
	child.fields = append(append([]Field(nil), l.fields...), fields...)
	return &child
}

func (l *Logger) Enabled(level Level) bool { return l != nil && level >= l.level }

func (l *Logger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

func (l *Logger) log(level Level, msg string, fields []Field) {
	if !l.Enabled(level) {
		return
	}
	var sb strings.Builder
	if l.color {
		sb.WriteString(level.ansi())
		sb.WriteString(level.tag())
		sb.WriteString("\x1b[0m")
	} else {
		sb.WriteString(level.tag())
	}
	sb.WriteByte(' ')
	sb.WriteString(msg)
	for _, f := range l.fields {
		writeField(&sb, f)
	}
	for _, f := range fields {
		writeField(&sb, f)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.WriteLineString(sb.String())
}

func writeField(sb *strings.Builder, f Field) {
	sb.WriteByte(' ')
	sb.WriteString(f.Key)
	sb.WriteByte('=')
	var s string
	switch v := f.Value.(type) {
	case string:
		s = v
	case error:
		s = v.Error()
	case float64:
		s = strconv.FormatFloat(v, 'g', -1, 64)
	default:
		s = fmt.Sprint(v)
	}
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		s = strconv.Quote(s)
	}
	sb.WriteString(s)
}

// writerLines adapts an io.Writer to the hal.Logger line contract.
type writerLines struct {
	w io.Writer
}

func (w writerLines) WriteLineString(s string) {
	io.WriteString(w.w, s+"\n")
}

func (w writerLines) WriteLineBytes(b []byte) {
	w.w.Write(append(append([]byte(nil), b...), '\n'))
}
