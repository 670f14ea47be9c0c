package adapters

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
)

// DivanJSON reads per-sample records written by `cargo bench -- --save-json`:
//
//	{"benches": [{"name": "get", "samples": [{"time_ns": 1200}, ...]}, ...]}
type DivanJSON struct{}

type divanDocument struct {
	Benches *[]divanBench `json:"benches"`
}

type divanBench struct {
	Name    *string       `json:"name"`
	Samples []divanSample `json:"samples"`
}

type divanSample struct {
	TimeNs *float64 `json:"time_ns"`
}

// Shape returns types.ShapeDivanJSON.
func (DivanJSON) Shape() types.Shape { return types.ShapeDivanJSON }

// Parse decodes the document and converts every time_ns to microseconds.
// A bench without samples yields an empty run; the pipeline drops it.
func (DivanJSON) Parse(in types.Input, r io.Reader) ([]types.OperationRun, error) {
	var doc divanDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, types.Malformed(in.Path, "", "invalid JSON: %v", err)
	}
	if doc.Benches == nil {
		return nil, types.Malformed(in.Path, "", "missing required field \"benches\"")
	}

	runs := make([]types.OperationRun, 0, len(*doc.Benches))
	for i, b := range *doc.Benches {
		if b.Name == nil || *b.Name == "" {
			return nil, types.Malformed(in.Path, fmt.Sprintf("benches[%d]", i), "missing required field \"name\"")
		}
		run := types.OperationRun{
			Name:    *b.Name,
			Samples: make([]types.LatencySample, 0, len(b.Samples)),
		}
		for j, s := range b.Samples {
			record := fmt.Sprintf("%s samples[%d]", *b.Name, j)
			if s.TimeNs == nil {
				return nil, types.Malformed(in.Path, record, "missing required field \"time_ns\"")
			}
			ls, err := sample(in.Path, record, *s.TimeNs/types.NanosPerMicro)
			if err != nil {
				return nil, err
			}
			run.Samples = append(run.Samples, ls)
		}
		runs = append(runs, run)
	}
	return runs, nil
}
