package stats

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samples(t *testing.T, name string, us ...float64) types.OperationRun {
	t.Helper()
	run := types.OperationRun{Name: name}
	for _, v := range us {
		s, err := types.NewLatencySample(v)
		require.NoError(t, err)
		run.Samples = append(run.Samples, s)
	}
	return run
}

var allStats = Options{Percentiles: []int{90, 95, 99}, StdDev: true}

func TestComputeScenario(t *testing.T) {
	rec, err := Compute(samples(t, "get", 300, 100, 200), allStats)
	require.NoError(t, err)

	assert.Equal(t, "get", rec.Name)
	assert.Equal(t, 3, rec.Count)
	assert.Equal(t, 200.0, rec.Mean)
	assert.Equal(t, 200.0, rec.P50)
	assert.InDelta(t, 81.65, rec.StdDev, 0.005)
	assert.Equal(t, 5000.0, rec.Throughput)
	assert.Equal(t, 100.0, rec.Min)
	assert.Equal(t, 300.0, rec.Max)
	assert.True(t, rec.Has(types.FieldP90|types.FieldP95|types.FieldP99|types.FieldStdDev))
}

func TestComputeDoesNotReorderInput(t *testing.T) {
	run := samples(t, "set", 3, 1, 2)
	_, err := Compute(run, allStats)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, run.Values())
}

func TestComputeSingleSample(t *testing.T) {
	rec, err := Compute(samples(t, "del", 42.5), allStats)
	require.NoError(t, err)

	for _, v := range []float64{rec.Mean, rec.P50, rec.P90, rec.P95, rec.P99} {
		assert.Equal(t, 42.5, v)
	}
	assert.Equal(t, 0.0, rec.StdDev)
	assert.Equal(t, 1_000_000/42.5, rec.Throughput)
}

func TestComputeEmptyRun(t *testing.T) {
	_, err := Compute(types.OperationRun{Name: "nothing"}, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrEmptyRun))
}

func TestComputeAllZeroLatency(t *testing.T) {
	rec, err := Compute(samples(t, "noop", 0, 0, 0), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, rec.Mean)
	assert.Equal(t, 0.0, rec.Throughput)
}

func TestComputeSummaryPassThrough(t *testing.T) {
	run := types.OperationRun{
		Name:    "get",
		Summary: &types.Summary{Fastest: 0.12, Slowest: 0.34, Median: 0.20, Mean: 0.21},
	}
	rec, err := Compute(run, Options{})
	require.NoError(t, err)

	assert.Equal(t, 0.20, rec.P50)
	assert.Equal(t, 0.21, rec.Mean)
	assert.Equal(t, 0.12, rec.Min)
	assert.Equal(t, 0.34, rec.Max)
	assert.InDelta(t, 1_000_000/0.21, rec.Throughput, 1e-6)
	assert.False(t, rec.Has(types.FieldP90))
	assert.False(t, rec.Has(types.FieldStdDev))
}

func TestComputeOptionSubsets(t *testing.T) {
	run := samples(t, "get", 1, 2, 3, 4)

	rec, err := Compute(run, DefaultOptions(types.ShapeDivanJSON))
	require.NoError(t, err)
	assert.True(t, rec.Has(types.FieldP95|types.FieldP99))
	assert.False(t, rec.Has(types.FieldP90))
	assert.False(t, rec.Has(types.FieldStdDev))

	rec, err = Compute(run, DefaultOptions(types.ShapeCriterion))
	require.NoError(t, err)
	assert.True(t, rec.Has(types.FieldP90|types.FieldP99|types.FieldStdDev))
	assert.False(t, rec.Has(types.FieldP95))
	assert.Equal(t, DefaultOptions(types.ShapeCriterion).Fields(), rec.Fields)
}

func TestOptionsValidate(t *testing.T) {
	assert.NoError(t, Options{Percentiles: []int{90, 95, 99}}.Validate())
	assert.Error(t, Options{Percentiles: []int{75}}.Validate())
	assert.Error(t, Options{Percentiles: []int{99, 99}}.Validate())

	_, err := Compute(samples(t, "x", 1), Options{Percentiles: []int{50}})
	assert.Error(t, err)
}

func TestPercentile(t *testing.T) {
	data := []float64{10, 20, 30, 40}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 10},
		{100, 40},
		{50, 25},
		{90, 37},
		{99, 39.7},
		{33.333333333333336, 20},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Percentile(data, tt.p), 1e-9, "p%v", tt.p)
	}

	assert.Equal(t, 0.0, Percentile(nil, 50))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 99))
}

func TestPercentileProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(50)
		data := make([]float64, n)
		for i := range data {
			// Repeated values exercise equal neighbours.
			data[i] = math.Round(rng.Float64()*20) * 1.1
		}
		sort.Float64s(data)

		assert.Equal(t, data[0], Percentile(data, 0))
		assert.Equal(t, data[n-1], Percentile(data, 100))

		p50 := Percentile(data, 50)
		p90 := Percentile(data, 90)
		p95 := Percentile(data, 95)
		p99 := Percentile(data, 99)
		assert.LessOrEqual(t, p50, p90)
		assert.LessOrEqual(t, p90, p95)
		assert.LessOrEqual(t, p95, p99)
	}
}

func TestPercentileMatchesInterpolationFormula(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 500; trial++ {
		n := 2 + rng.Intn(50)
		data := make([]float64, n)
		for i := range data {
			data[i] = rng.Float64() * 1e4
		}
		sort.Float64s(data)

		for _, p := range []float64{50, 90, 95, 99} {
			k := float64(n-1) * p / 100
			f, c := math.Floor(k), math.Ceil(k)
			want := data[int(f)]
			if f != c {
				lo, hi := data[int(f)], data[int(c)]
				want = math.Min(math.Max(lo*(c-k)+hi*(k-f), lo), hi)
			}
			assert.Equal(t, math.Float64bits(want), math.Float64bits(Percentile(data, p)),
				"n=%d p%v", n, p)
		}
	}
}

func TestPercentileDeterministic(t *testing.T) {
	data := []float64{0.1, 0.7, 1.3, 2.9, 3.3, 8.01}
	first := Percentile(data, 95)
	for i := 0; i < 10; i++ {
		assert.Equal(t, math.Float64bits(first), math.Float64bits(Percentile(data, 95)))
	}
}

func TestStdDevAndMean(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	m := Mean(data)
	assert.Equal(t, 5.0, m)
	assert.Equal(t, 2.0, StdDev(data, m))
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StdDev(nil, 0))
}

func TestThroughputMonotonic(t *testing.T) {
	prev := math.Inf(1)
	for _, mean := range []float64{0.5, 1, 2, 10, 200, 5000} {
		tp := Throughput(mean)
		assert.Less(t, tp, prev)
		prev = tp
	}
	assert.Equal(t, 0.0, Throughput(0))
	assert.Equal(t, 0.0, Throughput(-1))
}

func TestMovingAverage(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	assert.Equal(t, values, MovingAverage(values, 1))
	assert.Equal(t, values, MovingAverage(values, 0))
	assert.Equal(t, []float64{1.5, 2, 3, 4, 4.5}, MovingAverage(values, 3))
	// Even windows lean left, matching a centered pandas rolling mean.
	assert.Equal(t, []float64{1.5, 2, 2.5, 3.5, 4}, MovingAverage(values, 4))
	assert.Empty(t, MovingAverage(nil, 3))

	in := []float64{4, 8}
	out := MovingAverage(in, 1)
	out[0] = 100
	assert.Equal(t, 4.0, in[0], "window 1 returns a copy")
}

func TestMovingAverageSkipsMissing(t *testing.T) {
	nan := math.NaN()
	out := MovingAverage([]float64{1, nan, 3, nan, nan, nan}, 3)

	assert.Equal(t, 1.0, out[0])
	assert.Equal(t, 2.0, out[1])
	assert.Equal(t, 3.0, out[2])
	assert.Equal(t, 3.0, out[3])
	assert.True(t, math.IsNaN(out[4]), "window of missing values stays missing")
	assert.True(t, math.IsNaN(out[5]))
}
