// Package logger is the process-wide diagnostic log for researchbot.
// It stays silent unless the --verbose flag enables it, and writes to
// stderr so command output on stdout stays clean for piping.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose turns diagnostic logging on or off.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether diagnostic logging is on.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects the log, mainly for tests.
// Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// emit writes one prefixed line when verbose is on.
func emit(prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	fmt.Fprintf(output, prefix+format+"\n", args...)
}

// Debug logs fine-grained progress, such as per-file pipeline steps.
func Debug(format string, args ...any) {
	emit("[DEBUG] ", format, args...)
}

// Section marks the start of a named phase in the log.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info logs pass-level summaries.
func Info(format string, args ...any) {
	emit("[INFO] ", format, args...)
}

// Warn logs recoverable problems, such as a degraded vector store.
func Warn(format string, args ...any) {
	emit("[WARN] ", format, args...)
}
