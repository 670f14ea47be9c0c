// Package extremes picks the fastest and slowest operation of a report.
package extremes

import "github.com/karthikiyer56/bench-report/bench-report/pkg/types"

// Extremes identifies records by their index in the slice handed to Select.
// OK is false when there was nothing to select from.
type Extremes struct {
	Fastest int
	Slowest int
	OK      bool
}

// IsFastest reports whether record i carries the maximum throughput.
func (e Extremes) IsFastest(i int) bool {
	return e.OK && e.Fastest == i
}

// IsSlowest reports whether record i carries the minimum throughput.
func (e Extremes) IsSlowest(i int) bool {
	return e.OK && e.Slowest == i
}

// Select returns the maximum- and minimum-throughput records.
//
// Ties go to the record that appears first, so the result depends only on
// the adapter's emission order. A single record is both fastest and slowest.
// The records are never reordered or modified.
func Select(records []types.StatRecord) Extremes {
	if len(records) == 0 {
		return Extremes{}
	}

	e := Extremes{OK: true}
	for i := 1; i < len(records); i++ {
		tp := records[i].Throughput
		if tp > records[e.Fastest].Throughput {
			e.Fastest = i
		}
		if tp < records[e.Slowest].Throughput {
			e.Slowest = i
		}
	}
	return e
}
