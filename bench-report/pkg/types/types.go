// =============================================================================
// pkg/types/types.go - Core Data Types
// =============================================================================
//
// This package contains pure data types used throughout bench-report.
// These types have no dependencies beyond the standard library and pkg/errors.
//
// UNITS:
//
//	Every latency value inside the pipeline is expressed in MICROSECONDS,
//	regardless of the unit the harness wrote. Adapters normalise at the
//	boundary; renderers convert back only for display.
//
// =============================================================================

package types

import (
	"math"

	"github.com/pkg/errors"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// NanosPerMicro converts nanoseconds to microseconds.
	NanosPerMicro = 1000.0

	// MicrosPerMilli converts milliseconds to microseconds.
	MicrosPerMilli = 1000.0

	// MicrosPerSecond is the numerator of the throughput formula (ops/s = 1e6 / mean µs).
	MicrosPerSecond = 1_000_000.0
)

// =============================================================================
// Shape Enum
// =============================================================================

// Shape names one raw benchmark output format.
//
// The caller picks the shape based on which harness produced the data;
// nothing in the pipeline guesses the shape from file content.
type Shape string

const (
	// ShapeDivanJSON is a per-sample JSON document (samples[].time_ns).
	ShapeDivanJSON Shape = "divan-json"

	// ShapeCriterion is a criterion sample.json (times[] / iters[] pairs).
	ShapeCriterion Shape = "criterion"

	// ShapeDivanText is console output with pre-aggregated quadruples.
	ShapeDivanText Shape = "divan-text"

	// ShapeSweepCSV is a parametrized sweep (one row per dataset size or batch).
	ShapeSweepCSV Shape = "sweep-csv"
)

// Shapes lists every supported shape in documentation order.
var Shapes = []Shape{ShapeDivanJSON, ShapeCriterion, ShapeDivanText, ShapeSweepCSV}

// ParseShape converts a user supplied name into a Shape.
func ParseShape(s string) (Shape, error) {
	for _, shape := range Shapes {
		if string(shape) == s {
			return shape, nil
		}
	}
	return "", errors.Errorf("unknown input shape %q (want one of %v)", s, Shapes)
}

// =============================================================================
// Input
// =============================================================================

// Input is one input source location.
//
// Operation is only meaningful for shapes that carry a single operation per
// file (criterion sample.json, sweep CSV without an operation column).
type Input struct {
	Operation string
	Path      string
}

// =============================================================================
// LatencySample
// =============================================================================

// LatencySample is one measured duration in microseconds.
type LatencySample float64

// NewLatencySample validates a microsecond value at the adapter boundary.
// Negative, NaN and infinite durations are rejected, never coerced.
func NewLatencySample(us float64) (LatencySample, error) {
	if math.IsNaN(us) || math.IsInf(us, 0) {
		return 0, errors.Errorf("latency %v is not a finite number", us)
	}
	if us < 0 {
		return 0, errors.Errorf("latency %v is negative", us)
	}
	return LatencySample(us), nil
}

// Micros returns the sample as a float64 microsecond value.
func (s LatencySample) Micros() float64 {
	return float64(s)
}

// =============================================================================
// OperationRun
// =============================================================================

// Summary holds statistics the harness already computed (microseconds).
type Summary struct {
	Fastest float64
	Slowest float64
	Median  float64
	Mean    float64
}

// OperationRun pairs an operation name with its samples in adapter order.
//
// Exactly one of Samples or Summary is populated: raw shapes fill Samples,
// the pre-aggregated text shape fills Summary.
type OperationRun struct {
	Name    string
	Samples []LatencySample
	Summary *Summary
}

// Empty reports whether the run carries nothing that can be ranked.
func (r OperationRun) Empty() bool {
	return r.Summary == nil && len(r.Samples) == 0
}

// Values returns the samples as plain microsecond floats, in input order.
func (r OperationRun) Values() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Micros()
	}
	return out
}

// =============================================================================
// StatRecord
// =============================================================================

// Field is a bit set naming the optional values carried by a StatRecord.
type Field uint8

const (
	FieldP90 Field = 1 << iota
	FieldP95
	FieldP99
	FieldStdDev
	FieldRange
)

// StatRecord is the derived statistic record for one operation.
// Mean, P50 and Throughput are always present.
type StatRecord struct {
	Name       string
	Count      int
	Mean       float64
	P50        float64
	P90        float64
	P95        float64
	P99        float64
	StdDev     float64
	Min        float64
	Max        float64
	Throughput float64
	Fields     Field
}

// Has reports whether every field in f is present on the record.
func (s StatRecord) Has(f Field) bool {
	return s.Fields&f == f
}

// ReportRow is a StatRecord decorated for display.
type ReportRow struct {
	StatRecord
	Fastest bool
	Slowest bool
}

// =============================================================================
// SweepPoint
// =============================================================================

// SweepPoint is one operation's statistics at one value of the swept
// parameter. Latencies are microseconds.
type SweepPoint struct {
	Operation  string
	X          float64
	Mean       float64
	P50        float64
	P95        float64
	Throughput float64
}
