package types

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrEmptyRun is returned when statistics are requested for a run without samples.
var ErrEmptyRun = errors.New("operation has no samples")

// HarnessExecutionError reports that the external benchmark process failed.
// Stdout and Stderr hold the captured output verbatim.
type HarnessExecutionError struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *HarnessExecutionError) Error() string {
	return fmt.Sprintf("harness failed: %q exited with status %d", e.Command, e.ExitCode)
}

// MalformedInputError reports a structured record that is missing a required
// field or carries a value that cannot be normalised.
type MalformedInputError struct {
	Source string
	Record string
	Reason string
}

func (e *MalformedInputError) Error() string {
	if e.Record == "" {
		return fmt.Sprintf("malformed input %s: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("malformed input %s (%s): %s", e.Source, e.Record, e.Reason)
}

// SchemaMismatchError reports required columns absent from the ingested data.
type SchemaMismatchError struct {
	Source  string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch in %s: missing column(s) %s", e.Source, strings.Join(e.Missing, ", "))
}

// Malformed builds a MalformedInputError with a formatted reason.
func Malformed(source, record, format string, args ...interface{}) error {
	return &MalformedInputError{
		Source: source,
		Record: record,
		Reason: fmt.Sprintf(format, args...),
	}
}

// IsParseFailure reports whether err means "the output could not be parsed",
// as opposed to "the harness failed".
func IsParseFailure(err error) bool {
	var malformed *MalformedInputError
	var schema *SchemaMismatchError
	return errors.As(err, &malformed) || errors.As(err, &schema)
}

// IsHarnessFailure reports whether err wraps a HarnessExecutionError.
func IsHarnessFailure(err error) bool {
	var harness *HarnessExecutionError
	return errors.As(err, &harness)
}
