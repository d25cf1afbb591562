// Package logger is a small leveled logger for diagnostic output on stderr.
// Command output never goes through it.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type Level int

const (
	LevelOff Level = iota
	// LevelNormal prints warnings and errors.
	LevelNormal
	// LevelVerbose adds info and debug lines.
	LevelVerbose
)

func ParseLevel(value string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "off", "quiet":
		return LevelOff, nil
	case "", "normal", "warn":
		return LevelNormal, nil
	case "verbose", "debug":
		return LevelVerbose, nil
	default:
		return LevelNormal, fmt.Errorf("unknown log level %q (expected off, normal, or verbose)", value)
	}
}

// Logger is safe for concurrent use; lookups log from their own goroutines.
type Logger struct {
	mu    sync.RWMutex
	level Level
	out   *log.Logger
}

// New writes to out, or to os.Stderr when out is nil.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{level: level, out: log.New(out, "", log.Ltime)}
}

// Nop discards everything.
func Nop() *Logger {
	return New(LevelOff, io.Discard)
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) Debug(format string, args ...any) { l.logf(LevelVerbose, "DBG", format, args...) }

func (l *Logger) Info(format string, args ...any) { l.logf(LevelVerbose, "INF", format, args...) }

func (l *Logger) Warn(format string, args ...any) { l.logf(LevelNormal, "WRN", format, args...) }

func (l *Logger) Error(format string, args ...any) { l.logf(LevelNormal, "ERR", format, args...) }

func (l *Logger) logf(min Level, tag, format string, args ...any) {
	if l == nil {
		return
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.level < min {
		return
	}
	_ = l.out.Output(3, "["+tag+"] "+fmt.Sprintf(format, args...))
}
