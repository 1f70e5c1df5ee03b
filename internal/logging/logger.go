// Package logging wraps charmbracelet/log for the CLI and the editing
// engine. Engine components take their logger from the context so a host
// can route each editor session's diagnostics separately.
package logging

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // Process-wide fallback logger.
var fallback atomic.Pointer[log.Logger]

// New creates a stderr logger at the named level: debug, info, warn
// (or warning) or error. Unknown names mean info.
func New(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{})
	logger.SetLevel(ParseLevel(level))
	return logger
}

// NewInteractive creates a logger for messages addressed to the person at
// the terminal, prefixed with the program name.
func NewInteractive() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:  log.InfoLevel,
		Prefix: "mdlive",
	})
}

// ParseLevel maps a configured level name to a log level.
func ParseLevel(name string) log.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	level, err := log.ParseLevel(name)
	if err != nil || level < log.DebugLevel || level > log.ErrorLevel {
		return log.InfoLevel
	}
	return level
}

// Default returns the logger used when a context carries none.
func Default() *log.Logger {
	if logger := fallback.Load(); logger != nil {
		return logger
	}
	fallback.CompareAndSwap(nil, New("info"))
	return fallback.Load()
}

// SetDefault replaces the fallback logger.
func SetDefault(logger *log.Logger) {
	fallback.Store(logger)
}

// SetLevel changes the fallback logger's level.
func SetLevel(level string) {
	Default().SetLevel(ParseLevel(level))
}
