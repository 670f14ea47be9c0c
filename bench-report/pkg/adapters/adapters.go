// =============================================================================
// pkg/adapters/adapters.go - Sample Source Adapters
// =============================================================================
//
// Each adapter turns one raw benchmark output shape into OperationRuns with
// latencies in microseconds:
//
//	SHAPE        INPUT                                   NORMALISATION
//	divan-json   benches[].samples[].time_ns              time_ns / 1000
//	criterion    sample.json times[] / iters[]            (time / iters) / 1000
//	divan-text   "├─ get  120 ns │ 340 ns │ ..." lines   per-field unit suffix
//
// The sweep CSV consumed by the chart path lives in sweep_csv.go and yields
// SweepPoints instead.
//
// The caller chooses the adapter from configuration (which harness produced
// the data). Nothing here inspects content to guess the shape.
//
// =============================================================================

package adapters

import (
	"io"
	"os"
	"strings"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/interfaces"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/logging"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

var (
	_ interfaces.SampleSource = DivanJSON{}
	_ interfaces.SampleSource = Criterion{}
	_ interfaces.SampleSource = DivanText{}
)

// New returns the SampleSource for shape.
// The sweep CSV shape is not a SampleSource; use NewSweepCSV for it.
func New(shape types.Shape, logger interfaces.Logger) (interfaces.SampleSource, error) {
	logger = logging.OrNop(logger)
	switch shape {
	case types.ShapeDivanJSON:
		return &DivanJSON{}, nil
	case types.ShapeCriterion:
		return &Criterion{}, nil
	case types.ShapeDivanText:
		return &DivanText{logger: logger.WithScope("TEXT")}, nil
	case types.ShapeSweepCSV:
		return nil, errors.Errorf("shape %s produces sweep points, not operation runs", shape)
	default:
		return nil, errors.Errorf("no adapter for shape %q", shape)
	}
}

// =============================================================================
// Opening Inputs
// =============================================================================

// ZstdSuffix marks inputs that are decompressed on the fly.
const ZstdSuffix = ".zst"

// Open opens an input file. Paths ending in ZstdSuffix are decoded with
// zstd; anything else is returned as-is.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open input %s", path)
	}
	if !strings.HasSuffix(path, ZstdSuffix) {
		return f, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "failed to create zstd decoder for %s", path)
	}
	return &zstdFile{dec: dec, file: f}, nil
}

// zstdFile closes both the decoder and the file underneath it.
type zstdFile struct {
	dec  *zstd.Decoder
	file *os.File
}

func (z *zstdFile) Read(p []byte) (int, error) {
	return z.dec.Read(p)
}

func (z *zstdFile) Close() error {
	z.dec.Close()
	return z.file.Close()
}

// ParseFile opens in.Path (see Open) and hands it to src.
func ParseFile(src interfaces.SampleSource, in types.Input) ([]types.OperationRun, error) {
	rc, err := Open(in.Path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return src.Parse(in, rc)
}

// ParseSweepFile opens in.Path (see Open) and hands it to src.
func ParseSweepFile(src interfaces.SweepSource, in types.Input) ([]types.SweepPoint, error) {
	rc, err := Open(in.Path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return src.Parse(in, rc)
}

// sample validates a microsecond value for the named record.
func sample(source, record string, us float64) (types.LatencySample, error) {
	s, err := types.NewLatencySample(us)
	if err != nil {
		return 0, types.Malformed(source, record, "%v", err)
	}
	return s, nil
}
