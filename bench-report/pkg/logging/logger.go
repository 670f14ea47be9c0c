// =============================================================================
// pkg/logging/logger.go - Dual Logging Implementation
// =============================================================================
//
// This package provides a dual-output logger that writes:
//   - Informational messages to a log stream
//   - Error messages to a separate error stream (and to the log stream)
//
// The streams are plain io.Writers. NewDualLogger opens files for them;
// NewWriterLogger wraps existing writers (stderr when no log file is
// configured, buffers in tests).
//
// SCOPED LOGGING:
//   Loggers can be scoped with a prefix using WithScope(). This creates a child
//   logger that prefixes all messages with the scope name, e.g.:
//
//     logger := NewWriterLogger(os.Stderr, os.Stderr)
//     parseLog := logger.WithScope("PARSE")
//     parseLog.Info("Read 3 operations") // → [2006-01-02 15:04:05.000] [PARSE] Read 3 operations
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/interfaces"
	"github.com/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// SeparatorLine is the visual separator used in logs
	SeparatorLine = "========================================================================="

	// TimeFormat is the timestamp format for log messages
	TimeFormat = "2006-01-02 15:04:05.000"
)

// =============================================================================
// DualLogger Implementation
// =============================================================================

// DualLogger implements the Logger interface with separate log and error streams.
type DualLogger struct {
	mu      sync.Mutex
	logOut  io.Writer
	errOut  io.Writer
	closers []io.Closer
	now     func() time.Time
}

// NewDualLogger creates a DualLogger that writes to the specified files.
// If the files exist, they are truncated. When both paths are equal the
// file is opened once.
func NewDualLogger(logPath, errorPath string) (*DualLogger, error) {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open log file %s", logPath)
	}
	if errorPath == "" || errorPath == logPath {
		l := NewWriterLogger(logFile, io.Discard)
		l.closers = []io.Closer{logFile}
		return l, nil
	}

	errorFile, err := os.OpenFile(errorPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		logFile.Close()
		return nil, errors.Wrapf(err, "failed to open error file %s", errorPath)
	}

	l := NewWriterLogger(logFile, errorFile)
	l.closers = []io.Closer{logFile, errorFile}
	return l, nil
}

// NewWriterLogger creates a DualLogger over existing writers.
// The logger does not close writers it did not open.
func NewWriterLogger(logOut, errOut io.Writer) *DualLogger {
	if errOut == nil {
		errOut = io.Discard
	}
	return &DualLogger{
		logOut: logOut,
		errOut: errOut,
		now:    time.Now,
	}
}

// WithScope creates a scoped logger that prefixes all messages with the scope name.
// The returned ScopedLogger shares the same underlying streams as the parent.
func (l *DualLogger) WithScope(scope string) interfaces.Logger {
	return &ScopedLogger{
		parent: l,
		scope:  scope,
	}
}

// Info logs an informational message to the log stream.
func (l *DualLogger) Info(format string, args ...interface{}) {
	l.write("", format, args...)
}

// Error logs an error message to both the error stream and the log stream.
func (l *DualLogger) Error(format string, args ...interface{}) {
	l.writeError("", format, args...)
}

// Separator logs a visual separator line to the log stream.
func (l *DualLogger) Separator() {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.logOut, SeparatorLine)
}

// Sync forces a flush of file-backed streams.
func (l *DualLogger) Sync() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, c := range l.closers {
		if f, ok := c.(*os.File); ok {
			f.Sync()
		}
	}
}

// Close closes all files opened by NewDualLogger after syncing.
func (l *DualLogger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, c := range l.closers {
		if f, ok := c.(*os.File); ok {
			f.Sync()
		}
		c.Close()
	}
	l.closers = nil
}

func (l *DualLogger) write(scope, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.logOut, "%s%s\n", l.prefix(scope), fmt.Sprintf(format, args...))
}

func (l *DualLogger) writeError(scope, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("%sERROR: %s\n", l.prefix(scope), fmt.Sprintf(format, args...))
	io.WriteString(l.errOut, line)
	if l.errOut != l.logOut {
		io.WriteString(l.logOut, line)
	}
}

func (l *DualLogger) prefix(scope string) string {
	timestamp := l.now().Format(TimeFormat)
	if scope == "" {
		return fmt.Sprintf("[%s] ", timestamp)
	}
	return fmt.Sprintf("[%s] [%s] ", timestamp, scope)
}

// =============================================================================
// ScopedLogger - Logger with a Prefix
// =============================================================================

// ScopedLogger wraps a DualLogger and prefixes all messages with a scope name.
//
// ScopedLogger shares the underlying streams with its parent DualLogger.
// Closing the parent will close the files; do not close ScopedLogger directly.
type ScopedLogger struct {
	parent *DualLogger
	scope  string
}

// WithScope creates a nested scoped logger.
// The scopes are combined: parent.WithScope("A").WithScope("B") → [A:B]
func (l *ScopedLogger) WithScope(scope string) interfaces.Logger {
	return &ScopedLogger{
		parent: l.parent,
		scope:  l.scope + ":" + scope,
	}
}

// Info logs an informational message with the scope prefix.
func (l *ScopedLogger) Info(format string, args ...interface{}) {
	l.parent.write(l.scope, format, args...)
}

// Error logs an error message with the scope prefix.
func (l *ScopedLogger) Error(format string, args ...interface{}) {
	l.parent.writeError(l.scope, format, args...)
}

// Separator logs a visual separator line (no scope prefix for separators).
func (l *ScopedLogger) Separator() {
	l.parent.Separator()
}

// Sync forces a flush of all log data.
func (l *ScopedLogger) Sync() {
	l.parent.Sync()
}

// Close is a no-op for ScopedLogger. Close the parent DualLogger instead.
func (l *ScopedLogger) Close() {
	// No-op: ScopedLogger does not own the streams
}

// =============================================================================
// NopLogger
// =============================================================================

// NopLogger discards everything. Library constructors fall back to it when
// handed a nil logger.
type NopLogger struct{}

func (NopLogger) Info(string, ...interface{}) {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Separator() {}
func (n NopLogger) WithScope(string) interfaces.Logger { return n }
func (NopLogger) Sync() {}
func (NopLogger) Close() {}

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l interfaces.Logger) interfaces.Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
