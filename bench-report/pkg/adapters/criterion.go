package adapters

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/pkg/errors"
)

// Criterion reads a criterion sample.json. Each entry of times[] is the
// cumulative nanoseconds spent on iters[] iterations; the per-iteration
// latency is (time / iters) / 1000 µs.
type Criterion struct{}

type criterionSamples struct {
	Iters *[]float64 `json:"iters"`
	Times *[]float64 `json:"times"`
}

// Shape returns types.ShapeCriterion.
func (Criterion) Shape() types.Shape { return types.ShapeCriterion }

// Parse returns a single run named in.Operation.
//
// A zero iteration count is a data-integrity failure and is reported as a
// MalformedInputError rather than producing an infinite latency.
func (Criterion) Parse(in types.Input, r io.Reader) ([]types.OperationRun, error) {
	if in.Operation == "" {
		return nil, errors.Errorf("criterion input %s needs an operation name", in.Path)
	}

	var doc criterionSamples
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, types.Malformed(in.Path, in.Operation, "invalid JSON: %v", err)
	}
	if doc.Times == nil {
		return nil, types.Malformed(in.Path, in.Operation, "missing required field \"times\"")
	}
	if doc.Iters == nil {
		return nil, types.Malformed(in.Path, in.Operation, "missing required field \"iters\"")
	}
	times, iters := *doc.Times, *doc.Iters
	if len(times) != len(iters) {
		return nil, types.Malformed(in.Path, in.Operation,
			"times has %d entries but iters has %d", len(times), len(iters))
	}

	run := types.OperationRun{
		Name:    in.Operation,
		Samples: make([]types.LatencySample, 0, len(times)),
	}
	for i := range times {
		record := fmt.Sprintf("%s[%d]", in.Operation, i)
		if iters[i] == 0 {
			return nil, types.Malformed(in.Path, record, "iteration count is zero")
		}
		if iters[i] < 0 {
			return nil, types.Malformed(in.Path, record, "iteration count %v is negative", iters[i])
		}
		ls, err := sample(in.Path, record, (times[i]/iters[i])/types.NanosPerMicro)
		if err != nil {
			return nil, err
		}
		run.Samples = append(run.Samples, ls)
	}
	return []types.OperationRun{run}, nil
}

// =============================================================================
// Discovery
// =============================================================================

// DiscoverCriterion finds <root>/<group>/<bench>/new/sample.json files.
//
// The operation is named after the group. When a group holds more than one
// bench every bench is named group/bench so names stay unique. Results are
// ordered by path.
func DiscoverCriterion(root string) ([]types.Input, error) {
	matches, err := filepath.Glob(filepath.Join(root, "*", "*", "new", "sample.json"))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", root)
	}
	sort.Strings(matches)

	perGroup := make(map[string]int)
	for _, m := range matches {
		perGroup[criterionGroup(m)]++
	}

	inputs := make([]types.Input, 0, len(matches))
	for _, m := range matches {
		group := criterionGroup(m)
		name := group
		if perGroup[group] > 1 {
			name = group + "/" + filepath.Base(filepath.Dir(filepath.Dir(m)))
		}
		inputs = append(inputs, types.Input{Operation: name, Path: m})
	}
	return inputs, nil
}

// criterionGroup returns <group> for <root>/<group>/<bench>/new/sample.json.
func criterionGroup(path string) string {
	return filepath.Base(filepath.Dir(filepath.Dir(filepath.Dir(path))))
}
