// =============================================================================
// pkg/stats/stats.go - Latency Statistics and Throughput
// =============================================================================
//
// This package reduces one operation's latency samples to a StatRecord:
//   - Arithmetic mean
//   - Percentiles by linear interpolation (p50 always; p90/p95/p99 on request)
//   - Population standard deviation
//   - Throughput derived from the mean (ops/s = 1e6 / mean µs)
//
// Everything here is a pure function of its input: no logging, no randomness,
// no shared state. The same input always produces bit-identical output.
//
// =============================================================================

package stats

import (
	"math"
	"sort"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/pkg/errors"
)

// =============================================================================
// Options
// =============================================================================

// SupportedPercentiles lists the optional percentiles a record can carry.
var SupportedPercentiles = []int{90, 95, 99}

// Options selects which optional statistics Compute produces.
type Options struct {
	// Percentiles is a subset of SupportedPercentiles. p50 is always computed.
	Percentiles []int

	// StdDev enables the population standard deviation.
	StdDev bool
}

// DefaultOptions returns the statistic set each input shape has always been
// reported with.
func DefaultOptions(shape types.Shape) Options {
	switch shape {
	case types.ShapeDivanJSON:
		return Options{Percentiles: []int{95, 99}}
	case types.ShapeCriterion:
		return Options{Percentiles: []int{90, 99}, StdDev: true}
	default:
		return Options{}
	}
}

// Validate checks that every requested percentile is supported.
func (o Options) Validate() error {
	seen := make(map[int]bool, len(o.Percentiles))
	for _, p := range o.Percentiles {
		if fieldFor(p) == 0 {
			return errors.Errorf("unsupported percentile p%d (supported: %v)", p, SupportedPercentiles)
		}
		if seen[p] {
			return errors.Errorf("percentile p%d requested twice", p)
		}
		seen[p] = true
	}
	return nil
}

// Fields returns the optional fields a raw-sample record computed with o
// carries. Renderers use it to lay out a table that has no rows.
func (o Options) Fields() types.Field {
	f := types.FieldRange
	for _, p := range o.Percentiles {
		f |= fieldFor(p)
	}
	if o.StdDev {
		f |= types.FieldStdDev
	}
	return f
}

func fieldFor(p int) types.Field {
	switch p {
	case 90:
		return types.FieldP90
	case 95:
		return types.FieldP95
	case 99:
		return types.FieldP99
	}
	return 0
}

// =============================================================================
// Compute
// =============================================================================

// Compute derives the StatRecord for one operation.
//
// Raw runs are copied and sorted before percentile computation, so the
// caller's sample order is left untouched. Runs carrying a harness Summary
// pass through: median becomes p50, fastest/slowest become min/max.
//
// Returns types.ErrEmptyRun if the run has nothing to reduce.
func Compute(run types.OperationRun, opts Options) (types.StatRecord, error) {
	if err := opts.Validate(); err != nil {
		return types.StatRecord{}, err
	}
	if run.Summary != nil {
		return fromSummary(run.Name, *run.Summary), nil
	}
	if len(run.Samples) == 0 {
		return types.StatRecord{}, errors.Wrapf(types.ErrEmptyRun, "operation %q", run.Name)
	}

	sorted := run.Values()
	sort.Float64s(sorted)

	m := Mean(sorted)
	rec := types.StatRecord{
		Name:       run.Name,
		Count:      len(sorted),
		Mean:       m,
		P50:        Percentile(sorted, 50),
		Min:        sorted[0],
		Max:        sorted[len(sorted)-1],
		Throughput: Throughput(m),
		Fields:     types.FieldRange,
	}

	for _, p := range opts.Percentiles {
		v := Percentile(sorted, float64(p))
		switch p {
		case 90:
			rec.P90 = v
		case 95:
			rec.P95 = v
		case 99:
			rec.P99 = v
		}
		rec.Fields |= fieldFor(p)
	}

	if opts.StdDev {
		rec.StdDev = StdDev(sorted, m)
		rec.Fields |= types.FieldStdDev
	}

	return rec, nil
}

func fromSummary(name string, s types.Summary) types.StatRecord {
	return types.StatRecord{
		Name:       name,
		Mean:       s.Mean,
		P50:        s.Median,
		Min:        s.Fastest,
		Max:        s.Slowest,
		Throughput: Throughput(s.Mean),
		Fields:     types.FieldRange,
	}
}

// =============================================================================
// Primitive Statistics
// =============================================================================

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// Percentile returns the p-th percentile (0-100) of an ascending slice using
// linear interpolation between the two bracketing order statistics:
//
//	k = (n-1) * p/100, f = floor(k), c = ceil(k)
//	f == c → data[f]
//	else   → data[f]*(c-k) + data[c]*(k-f)
//
// Returns 0 for an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	k := float64(n-1) * p / 100
	f := math.Floor(k)
	c := math.Ceil(k)
	if f == c {
		return sorted[int(k)]
	}
	lo, hi := sorted[int(f)], sorted[int(c)]
	v := lo*(c-k) + hi*(k-f)

	// Rounding can push the blend a ulp outside its bracket.
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// StdDev returns the population standard deviation around a mean the caller
// already computed.
func StdDev(data []float64, mean float64) float64 {
	if len(data) == 0 {
		return 0
	}
	var variance float64
	for _, v := range data {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(data))
	return math.Sqrt(variance)
}

// Throughput converts a mean latency in microseconds to operations per
// second. A non-positive mean yields 0.
func Throughput(meanMicros float64) float64 {
	if meanMicros <= 0 {
		return 0
	}
	return types.MicrosPerSecond / meanMicros
}
