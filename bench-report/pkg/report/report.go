// =============================================================================
// pkg/report/report.go - Tabular Report Renderer
// =============================================================================
//
// Renders StatRecords as a fixed-column, pipe-delimited table:
//
//	| Operation | Mean (µs) | p50 (µs) | p95 (µs) | p99 (µs) | Throughput (ops/s) |
//	|:----------|----------:|---------:|---------:|---------:|-------------------:|
//	| get       |   200.000 |  200.000 |  290.000 |  298.000 |          ⚡💛 5000 |
//	| set       |   400.000 |  380.000 |  700.000 |  790.000 |            💙 2500 |
//
// COLUMNS:
//
//	Operation, Mean and p50 are always present, followed by p90, p95, p99 and
//	StdDev when every record carries them, and finally Throughput. A column
//	that any record lacks is omitted, never padded with placeholders.
//
// FORMATTING:
//
//	Latencies use 3 decimals, throughput 0. Numeric columns are
//	right-aligned. Widths are measured in terminal cells so the µ sign and
//	the emoji markers do not skew alignment.
//
// =============================================================================

package report

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/extremes"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/interfaces"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/karthikiyer56/bench-report/helpers"
	"github.com/pkg/errors"
)

// =============================================================================
// Options
// =============================================================================

const (
	// DefaultFastestMarker decorates the maximum-throughput row.
	DefaultFastestMarker = "⚡💛"

	// DefaultSlowestMarker decorates the minimum-throughput row.
	DefaultSlowestMarker = "💙"
)

// Options controls decoration and the layout of an empty table.
type Options struct {
	FastestMarker string
	SlowestMarker string

	// Fields selects the optional columns of a table without rows. With rows
	// present the columns come from the records themselves.
	Fields types.Field
}

// DefaultOptions returns Options with the standard markers.
func DefaultOptions() Options {
	return Options{
		FastestMarker: DefaultFastestMarker,
		SlowestMarker: DefaultSlowestMarker,
	}
}

// =============================================================================
// Columns
// =============================================================================

type column struct {
	header  string
	field   types.Field
	latency bool
	value   func(types.StatRecord) float64
}

var columns = []column{
	{"Mean (µs)", 0, true, func(r types.StatRecord) float64 { return r.Mean }},
	{"p50 (µs)", 0, true, func(r types.StatRecord) float64 { return r.P50 }},
	{"p90 (µs)", types.FieldP90, true, func(r types.StatRecord) float64 { return r.P90 }},
	{"p95 (µs)", types.FieldP95, true, func(r types.StatRecord) float64 { return r.P95 }},
	{"p99 (µs)", types.FieldP99, true, func(r types.StatRecord) float64 { return r.P99 }},
	{"StdDev (µs)", types.FieldStdDev, true, func(r types.StatRecord) float64 { return r.StdDev }},
	{"Throughput (ops/s)", 0, false, func(r types.StatRecord) float64 { return r.Throughput }},
}

// NameHeader is the title of the first column.
const NameHeader = "Operation"

// commonFields returns the optional fields shared by every record.
func commonFields(records []types.StatRecord, fallback types.Field) types.Field {
	if len(records) == 0 {
		return fallback
	}
	common := records[0].Fields
	for _, r := range records[1:] {
		common &= r.Fields
	}
	return common
}

func activeColumns(fields types.Field) []column {
	out := make([]column, 0, len(columns))
	for _, c := range columns {
		if c.field == 0 || fields&c.field == c.field {
			out = append(out, c)
		}
	}
	return out
}

// Headers returns the header row Render would emit for records.
func Headers(records []types.StatRecord, opts Options) []string {
	cols := activeColumns(commonFields(records, opts.Fields))
	out := make([]string, 0, len(cols)+1)
	out = append(out, NameHeader)
	for _, c := range cols {
		out = append(out, c.header)
	}
	return out
}

// =============================================================================
// Rows
// =============================================================================

// Rows decorates records with the fastest/slowest flags from ext.
// Record order is preserved.
func Rows(records []types.StatRecord, ext extremes.Extremes) []types.ReportRow {
	rows := make([]types.ReportRow, len(records))
	for i, r := range records {
		rows[i] = types.ReportRow{
			StatRecord: r,
			Fastest:    ext.IsFastest(i),
			Slowest:    ext.IsSlowest(i),
		}
	}
	return rows
}

func (o Options) marker(row types.ReportRow) string {
	var marks []string
	if row.Fastest && o.FastestMarker != "" {
		marks = append(marks, o.FastestMarker)
	}
	if row.Slowest && o.SlowestMarker != "" {
		marks = append(marks, o.SlowestMarker)
	}
	return strings.Join(marks, " ")
}

// FormatLatency formats a microsecond value with 3 decimals.
func FormatLatency(us float64) string {
	return strconv.FormatFloat(us, 'f', 3, 64)
}

// FormatThroughput formats ops/s with no decimals.
func FormatThroughput(ops float64) string {
	return strconv.FormatFloat(ops, 'f', 0, 64)
}

// =============================================================================
// Render
// =============================================================================

// Render writes the table for records to w.
//
// An empty record set is a valid outcome and renders the header and
// separator rows only.
func Render(w io.Writer, records []types.StatRecord, ext extremes.Extremes, opts Options) error {
	_, err := io.WriteString(w, Table(records, ext, opts))
	return errors.Wrap(err, "failed to write report table")
}

// Table returns the rendered table as a string, one line per row, each
// terminated by a newline.
func Table(records []types.StatRecord, ext extremes.Extremes, opts Options) string {
	cols := activeColumns(commonFields(records, opts.Fields))
	rows := Rows(records, ext)

	grid := make([][]string, 0, len(rows)+1)
	grid = append(grid, Headers(records, opts))
	for _, row := range rows {
		cells := make([]string, 0, len(cols)+1)
		cells = append(cells, row.Name)
		for _, c := range cols {
			if !c.latency {
				cell := FormatThroughput(c.value(row.StatRecord))
				if m := opts.marker(row); m != "" {
					cell = m + " " + cell
				}
				cells = append(cells, cell)
				continue
			}
			cells = append(cells, FormatLatency(c.value(row.StatRecord)))
		}
		grid = append(grid, cells)
	}

	widths := make([]int, len(grid[0]))
	for _, cells := range grid {
		for i, cell := range cells {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeLine(&b, grid[0], widths)
	writeSeparator(&b, widths)
	for _, cells := range grid[1:] {
		writeLine(&b, cells, widths)
	}
	return b.String()
}

// writeLine pads the first cell on the right and every other cell on the left.
func writeLine(b *strings.Builder, cells []string, widths []int) {
	b.WriteString("|")
	for i, cell := range cells {
		pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		b.WriteString(" ")
		if i == 0 {
			b.WriteString(cell + pad)
		} else {
			b.WriteString(pad + cell)
		}
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func writeSeparator(b *strings.Builder, widths []int) {
	b.WriteString("|")
	for i, w := range widths {
		if i == 0 {
			b.WriteString(":" + strings.Repeat("-", w+1))
		} else {
			b.WriteString(strings.Repeat("-", w+1) + ":")
		}
		b.WriteString("|")
	}
	b.WriteString("\n")
}

// =============================================================================
// Logging
// =============================================================================

// LogSummary writes one line per row to logger.
func LogSummary(logger interfaces.Logger, rows []types.ReportRow) {
	logger.Info("RESULTS (%d operations):", len(rows))
	for _, r := range rows {
		tag := ""
		switch {
		case r.Fastest && r.Slowest:
			tag = " [fastest, slowest]"
		case r.Fastest:
			tag = " [fastest]"
		case r.Slowest:
			tag = " [slowest]"
		}
		logger.Info("  %-24s mean=%s p50=%s throughput=%s ops/s%s",
			r.Name, helpers.FormatMicros(r.Mean), helpers.FormatMicros(r.P50),
			helpers.FormatNumber(int64(math.Round(r.Throughput))), tag)
	}
	logger.Info("")
}
