package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// DebugEnv is the environment variable that enables debug output.
const DebugEnv = "CHRONII_DEBUG"

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, DebugEnabled())
)

// DebugEnabled returns true if debug mode is enabled via CHRONII_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup replaces the package logger. verbose forces debug level even when
// CHRONII_DEBUG is unset.
func Setup(w io.Writer, verbose bool) *slog.Logger {
	l := newLogger(w, verbose || DebugEnabled())
	mu.Lock()
	logger = l
	mu.Unlock()
	return l
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	Logger().Debug(fmt.Sprintf(format, args...))
}

// Debugln prints a debug message only if debug mode is enabled
func Debugln(args ...interface{}) {
	Logger().Debug(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}
