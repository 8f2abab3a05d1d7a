package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)

	// With returns a child logger whose lines are prefixed by the given tag.
	With(tag string) Logger
}

type defaultLogger struct {
	level  int
	prefix string
	inner  *log.Logger
}

func NewLogger(level int) *defaultLogger {
	return NewLoggerWithWriter(level, os.Stderr)
}

func NewLoggerWithWriter(level int, w io.Writer) *defaultLogger {
	return &defaultLogger{level: level, inner: log.New(w, "", log.LstdFlags)}
}

// ParseLevel converts a configured level name to its numeric level. Unknown
// names fall back to INFO.
func ParseLevel(name string) int {
	switch strings.ToLower(name) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARNING
	case "error":
		return ERROR
	case "silence", "off":
		return SILENCE
	default:
		return INFO
	}
}

func (l *defaultLogger) With(tag string) Logger {
	return &defaultLogger{level: l.level, prefix: l.prefix + "[" + tag + "] ", inner: l.inner}
}

func (l *defaultLogger) Debugf(msg string, a ...any) {
	l.print(DEBUG, "DEBUG", msg, a...)
}

func (l *defaultLogger) Infof(msg string, a ...any) {
	l.print(INFO, "INFO", msg, a...)
}

func (l *defaultLogger) Warnf(msg string, a ...any) {
	l.print(WARNING, "WARN", msg, a...)
}

func (l *defaultLogger) Errorf(msg string, a ...any) {
	l.print(ERROR, "ERROR", msg, a...)
}

func (l *defaultLogger) print(level int, name, msg string, a ...any) {
	if l.level > level {
		return
	}

	l.inner.Printf("%-5s %s%s", name, l.prefix, fmt.Sprintf(msg, a...))
}
