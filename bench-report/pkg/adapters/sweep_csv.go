package adapters

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/interfaces"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/logging"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/pkg/errors"
)

// =============================================================================
// Sweep CSV Columns
// =============================================================================

const (
	XColumnDBSize     = "db_size"
	XColumnBatchIndex = "batch_index"

	columnMean       = "mean_ns"
	columnP50        = "p50_ns"
	columnP95        = "p95_ns"
	columnThroughput = "ops_per_sec"
)

// XColumns lists the accepted independent-variable columns.
var XColumns = []string{XColumnDBSize, XColumnBatchIndex}

// operationColumns are optional header names that carry the operation.
var operationColumns = []string{"operation", "op"}

var _ interfaces.SweepSource = (*SweepCSV)(nil)

// SweepCSV reads a parametrized sweep: one row per value of the swept
// parameter with nanosecond latency columns and an ops/sec column.
type SweepCSV struct {
	xColumn string
	logger  interfaces.Logger
}

// NewSweepCSV returns a SweepCSV keyed on xColumn (db_size or batch_index).
func NewSweepCSV(xColumn string, logger interfaces.Logger) (*SweepCSV, error) {
	if !validXColumn(xColumn) {
		return nil, errors.Errorf("x column must be one of %v, got %q", XColumns, xColumn)
	}
	return &SweepCSV{xColumn: xColumn, logger: logging.OrNop(logger).WithScope("SWEEP")}, nil
}

func validXColumn(c string) bool {
	for _, x := range XColumns {
		if c == x {
			return true
		}
	}
	return false
}

// Parse reads every usable row.
//
// A required column missing from the header is a SchemaMismatchError and no
// rows are returned. Rows whose x value is empty or not numeric are dropped.
// Any other empty or non-numeric cell is kept as NaN so the chart shows a gap
// in that trace only. Without an operation column every row is attributed to
// in.Operation, or to the file's base name.
func (s *SweepCSV) Parse(in types.Input, r io.Reader) ([]types.SweepPoint, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &types.SchemaMismatchError{Source: in.Path, Missing: s.required()}
	}
	if err != nil {
		return nil, types.Malformed(in.Path, "header", "%v", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	var missing []string
	for _, c := range s.required() {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &types.SchemaMismatchError{Source: in.Path, Missing: missing}
	}

	opIndex := -1
	for _, c := range operationColumns {
		if i, ok := index[c]; ok {
			opIndex = i
			break
		}
	}
	defaultOp := in.Operation
	if defaultOp == "" {
		defaultOp = SourceName(in.Path)
	}

	var (
		points  []types.SweepPoint
		dropped int
		gaps    int
		line    = 1
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, types.Malformed(in.Path, fmt.Sprintf("line %d", line), "%v", err)
		}

		x, ok := cell(row, index[s.xColumn])
		if !ok {
			dropped++
			continue
		}

		var vals [4]float64
		for i, c := range []string{columnMean, columnP50, columnP95, columnThroughput} {
			v, good := cell(row, index[c])
			if !good {
				v = math.NaN()
				gaps++
			}
			vals[i] = v
		}

		record := fmt.Sprintf("line %d", line)
		for _, ns := range vals[:3] {
			if math.IsNaN(ns) {
				continue
			}
			if _, err := sample(in.Path, record, ns/types.NanosPerMicro); err != nil {
				return nil, err
			}
		}

		op := defaultOp
		if opIndex >= 0 && opIndex < len(row) && strings.TrimSpace(row[opIndex]) != "" {
			op = strings.TrimSpace(row[opIndex])
		}
		points = append(points, types.SweepPoint{
			Operation:  op,
			X:          x,
			Mean:       vals[0] / types.NanosPerMicro,
			P50:        vals[1] / types.NanosPerMicro,
			P95:        vals[2] / types.NanosPerMicro,
			Throughput: vals[3],
		})
	}

	if dropped > 0 {
		s.logger.Info("%s: dropped %d row(s) without a numeric %s", in.Path, dropped, s.xColumn)
	}
	if gaps > 0 {
		s.logger.Info("%s: %d missing value(s) left as gaps", in.Path, gaps)
	}
	return points, nil
}

func (s *SweepCSV) required() []string {
	return []string{s.xColumn, columnMean, columnP50, columnP95, columnThroughput}
}

// cell parses row[i] as a finite float.
func cell(row []string, i int) (float64, bool) {
	if i >= len(row) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// SourceName returns the base name of path without its extension(s),
// e.g. "bench_set" for "results/bench_set.csv.zst".
func SourceName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ZstdSuffix)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
