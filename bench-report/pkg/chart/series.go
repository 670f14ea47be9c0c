package chart

import (
	"sort"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/stats"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
)

// Series holds one operation's sweep as parallel columns ordered by X.
// Latencies are microseconds.
type Series struct {
	Operation  string
	X          []float64
	Mean       []float64
	P50        []float64
	P95        []float64
	Throughput []float64
}

// Len returns the number of points in the series.
func (s Series) Len() int { return len(s.X) }

// Group splits points by operation. Operations keep the order in which they
// first appear; points within an operation are ordered by X, keeping file
// order between equal X values.
func Group(points []types.SweepPoint) []Series {
	var order []string
	byOp := make(map[string][]types.SweepPoint)
	for _, p := range points {
		if _, ok := byOp[p.Operation]; !ok {
			order = append(order, p.Operation)
		}
		byOp[p.Operation] = append(byOp[p.Operation], p)
	}

	out := make([]Series, 0, len(order))
	for _, op := range order {
		pts := byOp[op]
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].X < pts[j].X })

		s := Series{Operation: op}
		for _, p := range pts {
			s.X = append(s.X, p.X)
			s.Mean = append(s.Mean, p.Mean)
			s.P50 = append(s.P50, p.P50)
			s.P95 = append(s.P95, p.P95)
			s.Throughput = append(s.Throughput, p.Throughput)
		}
		out = append(out, s)
	}
	return out
}

// Smoothed returns a copy whose latency columns are replaced by a centered
// moving average of the given window. Throughput is left as measured.
// A window of 1 or less returns an unsmoothed copy.
func (s Series) Smoothed(window int) Series {
	return Series{
		Operation:  s.Operation,
		X:          append([]float64(nil), s.X...),
		Mean:       stats.MovingAverage(s.Mean, window),
		P50:        stats.MovingAverage(s.P50, window),
		P95:        stats.MovingAverage(s.P95, window),
		Throughput: append([]float64(nil), s.Throughput...),
	}
}

// scaled converts every latency column from microseconds to unit.
func (s Series) scaled(unit Unit) Series {
	conv := func(in []float64) []float64 {
		out := make([]float64, len(in))
		for i, v := range in {
			out[i] = unit.FromMicros(v)
		}
		return out
	}
	return Series{
		Operation:  s.Operation,
		X:          s.X,
		Mean:       conv(s.Mean),
		P50:        conv(s.P50),
		P95:        conv(s.P95),
		Throughput: s.Throughput,
	}
}
