// Package logging is the leveled logger of the command-line tools.
package logging

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
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel returns the level named s, case-insensitively.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger writes messages at or above its level.
type Logger struct {
	mu     sync.RWMutex
	level  Level
	logger *log.Logger
}

// New returns a Logger writing to w.
func New(w io.Writer, level Level) *Logger {
	return &Logger{level: level, logger: log.New(w, "", log.LstdFlags)}
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Default returns the logger of the package-level functions.
// It writes to stderr at info level.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(os.Stderr, LevelInfo)
	})
	return defaultLogger
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetLevelFromString sets the level named s, falling back to info.
func (l *Logger) SetLevelFromString(s string) {
	level, _ := ParseLevel(s)
	l.SetLevel(level)
}

func (l *Logger) Level() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

func (l *Logger) Enabled(level Level) bool { return level >= l.Level() }

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	l.logger.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...interface{}) { l.logf(LevelDebug, format, args...) }

func (l *Logger) Info(format string, args ...interface{}) { l.logf(LevelInfo, format, args...) }

func (l *Logger) Warn(format string, args ...interface{}) { l.logf(LevelWarn, format, args...) }

func (l *Logger) Error(format string, args ...interface{}) { l.logf(LevelError, format, args...) }

// Package-level functions log to Default.

func SetLevelFromString(s string) { Default().SetLevelFromString(s) }

func Debug(format string, args ...interface{}) { Default().Debug(format, args...) }

func Info(format string, args ...interface{}) { Default().Info(format, args...) }

func Warn(format string, args ...interface{}) { Default().Warn(format, args...) }

func Error(format string, args ...interface{}) { Default().Error(format, args...) }
