// Package logger provides leveled logging for the ruyi pipeline.
// Errors and warnings are always printed. Info and debug messages are
// printed only when verbose mode is enabled via the --verbose flag.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// TimeFormat prefixes every line once timestamps are enabled.
const TimeFormat = "2006-01-02 15:04:05"

var (
	mu         sync.Mutex
	verbose    bool
	timestamps bool
	output     io.Writer = os.Stderr
	now                  = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetTimestamps prefixes each line with the local time. Long-running
// commands turn this on; one-shot commands leave it off.
func SetTimestamps(v bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = v
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(always bool, level, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if !always && !verbose {
		return
	}
	if timestamps {
		fmt.Fprint(output, now().Format(TimeFormat), " ")
	}
	fmt.Fprintf(output, level+" "+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "[DEBUG]", format, args)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "[INFO]", format, args)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	write(true, "[WARN]", format, args)
}

// Error prints an error message.
func Error(format string, args ...any) {
	write(true, "[ERROR]", format, args)
}
