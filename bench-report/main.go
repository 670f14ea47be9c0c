// =============================================================================
// main.go - Entry Point for bench-report
// =============================================================================
//
// bench-report turns raw benchmark harness output into a comparison table
// (report) or a latency/throughput sweep chart (chart).
//
// USAGE:
//
//	bench-report report \
//	  --config bench-report.toml \
//	  [--harness "cargo bench --bench bench -- --save-json"] \
//	  [--shape divan-json|criterion|divan-text] \
//	  [--input target/bench_output.json] \
//	  [--table bench.md] [--metrics bench.prom] \
//	  [--percentiles 95,99] [--dry-run]
//
//	bench-report chart \
//	  --sweep bench_set.csv --output bench_set.html \
//	  [--x-column db_size|batch_index] [--unit ns|us|ms] [--window 3] [--show]
//
// The table is written to the configured file and echoed to stdout. Logs go
// to stderr unless --log-file is given.
//
// EXIT CODES:
//
//	0   - Success
//	1   - Configuration error
//	2   - Input could not be parsed (malformed record, missing column)
//	3   - Benchmark harness failed
//	4   - Other runtime error
//	130 - Interrupted by SIGINT
//
// =============================================================================

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/config"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/pkg/errors"
)

// =============================================================================
// Version Information
// =============================================================================

const (
	// Version is the tool version
	Version = "1.0.0"

	// ToolName is the name of this tool
	ToolName = "bench-report"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess        = 0
	ExitConfigError    = 1
	ExitParseError     = 2
	ExitHarnessFailure = 3
	ExitRuntimeError   = 4
	ExitInterrupted    = 130 // 128 + SIGINT(2)
)

// =============================================================================
// Main Entry Point
// =============================================================================

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	if err != nil && ctx.Err() != nil {
		fmt.Fprintln(os.Stderr, "Interrupted")
		stop()
		os.Exit(ExitInterrupted)
	}
	os.Exit(reportError(err, os.Stdout, os.Stderr))
}

// reportError prints err for the user and maps it to an exit code.
//
// A failed harness has its captured output replayed verbatim first, so the
// user sees exactly what the benchmark printed.
func reportError(err error, stdout, stderr io.Writer) int {
	if err == nil {
		return ExitSuccess
	}

	var harnessErr *types.HarnessExecutionError
	if errors.As(err, &harnessErr) {
		io.WriteString(stdout, harnessErr.Stdout)
		io.WriteString(stderr, harnessErr.Stderr)
		fmt.Fprintf(stderr, "Benchmark harness failed: %v\n", err)
		return ExitHarnessFailure
	}

	code := exitCode(err)
	switch code {
	case ExitConfigError:
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
	case ExitParseError:
		fmt.Fprintf(stderr, "Could not parse benchmark output: %v\n", err)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return code
}

// exitCode classifies err.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case types.IsHarnessFailure(err):
		return ExitHarnessFailure
	case types.IsParseFailure(err):
		return ExitParseError
	case errors.Is(err, config.ErrInvalid), isUsageError(err):
		return ExitConfigError
	}
	return ExitRuntimeError
}
