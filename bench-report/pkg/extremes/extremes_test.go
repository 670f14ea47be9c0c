package extremes

import (
	"testing"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/stretchr/testify/assert"
)

func records(tps ...float64) []types.StatRecord {
	out := make([]types.StatRecord, len(tps))
	for i, tp := range tps {
		out[i] = types.StatRecord{Name: string(rune('a' + i)), Throughput: tp}
	}
	return out
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		tps     []float64
		fastest int
		slowest int
	}{
		{"distinct", []float64{100, 300, 50}, 1, 2},
		{"tie on max picks first", []float64{10, 500, 500, 20}, 1, 0},
		{"tie on min picks first", []float64{7, 90, 7}, 1, 0},
		{"all equal", []float64{5, 5, 5}, 0, 0},
		{"single", []float64{42}, 0, 0},
		{"zero throughput", []float64{0, 12}, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Select(records(tt.tps...))
			assert.True(t, e.OK)
			assert.Equal(t, tt.fastest, e.Fastest)
			assert.Equal(t, tt.slowest, e.Slowest)
		})
	}
}

func TestSelectEmpty(t *testing.T) {
	e := Select(nil)
	assert.False(t, e.OK)
	assert.False(t, e.IsFastest(0))
	assert.False(t, e.IsSlowest(0))
}

func TestSelectMatchesNumericExtremes(t *testing.T) {
	recs := records(12.5, 900, 3, 77, 900.5, 2.9999)
	e := Select(recs)

	for i, r := range recs {
		assert.LessOrEqual(t, r.Throughput, recs[e.Fastest].Throughput, "record %d", i)
		assert.GreaterOrEqual(t, r.Throughput, recs[e.Slowest].Throughput, "record %d", i)
	}
	assert.Equal(t, 4, e.Fastest)
	assert.Equal(t, 5, e.Slowest)
}

func TestSelectDoesNotMutate(t *testing.T) {
	recs := records(3, 1, 2)
	before := append([]types.StatRecord(nil), recs...)
	Select(recs)
	assert.Equal(t, before, recs)
}
