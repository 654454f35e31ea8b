// Package logger provides verbose logging for the googlewrapper CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// about credential loading and client construction are printed to stderr.
//
// Messages are rendered through zerolog's console writer without colour
// or timestamps so output stays stable for scripts and tests.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	log               = newLogger(os.Stderr)
)

func newLogger(w io.Writer) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
		FormatLevel: func(i any) string {
			return "[" + strings.ToUpper(fmt.Sprint(i)) + "]"
		},
	}
	return zerolog.New(cw).Level(zerolog.DebugLevel)
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = newLogger(w)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	emit(zerolog.DebugLevel, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	emit(zerolog.InfoLevel, format, args...)
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	emit(zerolog.WarnLevel, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

func emit(level zerolog.Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		log.WithLevel(level).Msgf(format, args...)
	}
}
