// =============================================================================
// pkg/interfaces/interfaces.go - Core Interfaces
// =============================================================================
//
// This package defines the seams between bench-report stages:
//
//   1. SampleSource: one implementation per raw benchmark output shape
//   2. SweepSource: the parametrized sweep input used by the chart path
//   3. Logger: injected progress reporting (no process-wide logger)
//
// The statistics engine, extremes selector and renderers are plain functions
// and need no interface.
//
// =============================================================================

package interfaces

import (
	"io"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
)

// =============================================================================
// SampleSource Interface
// =============================================================================

// SampleSource normalises one raw benchmark output shape into OperationRuns.
//
// CONTRACT:
//
//	Runs are returned in the order the input emits them. Latencies are in
//	microseconds. Structural problems are reported as
//	*types.MalformedInputError; noise that the shape expects (progress
//	lines in console captures) is skipped without error.
type SampleSource interface {
	// Shape returns the input shape this source understands.
	Shape() types.Shape

	// Parse reads every operation contained in r.
	// in.Path is used for error messages; in.Operation names the run for
	// shapes that carry a single unnamed operation.
	Parse(in types.Input, r io.Reader) ([]types.OperationRun, error)
}

// =============================================================================
// SweepSource Interface
// =============================================================================

// SweepSource reads a parametrized sweep into SweepPoints.
type SweepSource interface {
	// Parse reads every sweep row contained in r, in file order.
	Parse(in types.Input, r io.Reader) ([]types.SweepPoint, error)
}

// =============================================================================
// Logger Interface
// =============================================================================

// Logger defines the interface for logging operations.
type Logger interface {
	// Info logs an informational message.
	Info(format string, args ...interface{})

	// Error logs an error message to both the log and error outputs.
	Error(format string, args ...interface{})

	// Separator logs a visual separator line.
	Separator()

	// WithScope returns a child logger that prefixes every message with scope.
	WithScope(scope string) Logger

	// Sync forces a flush of all log buffers.
	Sync()

	// Close closes all log outputs owned by the logger.
	Close()
}
