package pipeline

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/config"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/logging"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dir    string
	cfg    *config.Config
	stdout bytes.Buffer
	log    bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{dir: t.TempDir(), cfg: config.Default()}
	f.cfg.Output.TablePath = filepath.Join(f.dir, "out", "bench.md")
	return f
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (f *fixture) pipeline() *Pipeline {
	p := New(f.cfg, logging.NewWriterLogger(&f.log, &f.log), &f.stdout)
	p.RunID = "test-run"
	return p
}

const divanDoc = `{"benches": [
	{"name": "get", "samples": [{"time_ns": 100000}, {"time_ns": 300000}, {"time_ns": 200000}]},
	{"name": "set", "samples": [{"time_ns": 400000}]},
	{"name": "idle", "samples": []}
]}`

// =============================================================================
// Report
// =============================================================================

func TestReportDivanJSON(t *testing.T) {
	f := newFixture(t)
	f.cfg.Inputs.Files = []string{f.write(t, "bench_output.json", divanDoc)}
	f.cfg.Output.MetricsPath = filepath.Join(f.dir, "out", "bench.prom")

	res, err := f.pipeline().Report(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Records, 2, "idle has no samples and is dropped")
	assert.Equal(t, "get", res.Records[0].Name)
	assert.Equal(t, 200.0, res.Records[0].Mean)
	assert.Equal(t, 5000.0, res.Records[0].Throughput)
	assert.Equal(t, 0, res.Extremes.Fastest)
	assert.Equal(t, 1, res.Extremes.Slowest)

	data, err := os.ReadFile(f.cfg.Output.TablePath)
	require.NoError(t, err)
	assert.Equal(t, res.Table, string(data))
	assert.Equal(t, res.Table, f.stdout.String())
	assert.Contains(t, res.Table, "p95 (µs)")
	assert.Contains(t, res.Table, "p99 (µs)")
	assert.NotContains(t, res.Table, "p90 (µs)")

	prom, err := os.ReadFile(f.cfg.Output.MetricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `run_id="test-run"`)

	assert.Contains(t, f.log.String(), "Dropping idle: no samples")
	assert.Contains(t, f.log.String(), "3 operation(s), 4 sample(s)")
	assert.Contains(t, f.log.String(), "Run ID:       test-run")
}

func TestReportSkipsMissingInputs(t *testing.T) {
	f := newFixture(t)
	f.cfg.Inputs.Files = []string{
		filepath.Join(f.dir, "absent.json"),
		f.write(t, "bench_output.json", divanDoc),
	}

	res, err := f.pipeline().Report(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Records, 2)
	assert.Contains(t, f.log.String(), "Missing: "+filepath.Join(f.dir, "absent.json"))
}

func TestReportNoRecordsRendersHeaderOnly(t *testing.T) {
	f := newFixture(t)
	f.cfg.Inputs.Files = []string{filepath.Join(f.dir, "absent.json")}

	res, err := f.pipeline().Report(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Len(t, strings.Split(strings.TrimSuffix(res.Table, "\n"), "\n"), 2)
	assert.Contains(t, res.Table, "p95 (µs)", "empty table keeps the configured columns")
}

func TestReportDuplicateOperation(t *testing.T) {
	f := newFixture(t)
	f.cfg.Inputs.Files = []string{
		f.write(t, "a.json", divanDoc),
		f.write(t, "b.json", `{"benches": [{"name": "get", "samples": [{"time_ns": 1}]}]}`),
	}

	_, err := f.pipeline().Report(context.Background())
	require.Error(t, err)
	assert.True(t, types.IsParseFailure(err))

	_, statErr := os.Stat(f.cfg.Output.TablePath)
	assert.True(t, os.IsNotExist(statErr), "no partial table")
}

func TestReportMalformedInput(t *testing.T) {
	f := newFixture(t)
	f.cfg.Inputs.Files = []string{f.write(t, "bad.json", `{"benches": [{"samples": []}]}`)}

	_, err := f.pipeline().Report(context.Background())
	var malformed *types.MalformedInputError
	require.True(t, errors.As(err, &malformed))
}

func TestReportHarnessFailure(t *testing.T) {
	f := newFixture(t)
	f.cfg.Harness.Command = `sh -c 'echo compiling; echo "error: bench failed" >&2; exit 101'`
	f.cfg.Inputs.Files = []string{f.write(t, "bench_output.json", divanDoc)}

	_, err := f.pipeline().Report(context.Background())
	require.Error(t, err)

	var harnessErr *types.HarnessExecutionError
	require.True(t, errors.As(err, &harnessErr))
	assert.Equal(t, 101, harnessErr.ExitCode)
	assert.Equal(t, "compiling\n", harnessErr.Stdout)
	assert.Equal(t, "error: bench failed\n", harnessErr.Stderr)

	assert.Empty(t, f.stdout.String())
	_, statErr := os.Stat(f.cfg.Output.TablePath)
	assert.True(t, os.IsNotExist(statErr), "no statistics on a failed harness run")
}

func TestReportDivanTextFromHarnessStdout(t *testing.T) {
	f := newFixture(t)
	f.cfg.Inputs.Shape = string(types.ShapeDivanText)
	f.cfg.Harness.Command = `sh -c "echo 'Timer precision: 20 ns'; echo '├─ get    120 ns │ 340 ns │ 200 ns │ 210 ns'; echo '╰─ set    1 µs │ 2 µs │ 1.5 µs │ 1.6 µs'"`
	f.cfg.Harness.StdoutPath = filepath.Join(f.dir, "console.txt")

	res, err := f.pipeline().Report(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, 0.21, res.Records[0].Mean)
	assert.Equal(t, 0.2, res.Records[0].P50)
	assert.Equal(t, 1.6, res.Records[1].Mean)
	assert.NotContains(t, res.Table, "p95")
}

func TestReportCriterionDiscovery(t *testing.T) {
	f := newFixture(t)
	f.cfg.Inputs.Shape = string(types.ShapeCriterion)
	f.cfg.Inputs.CriterionRoot = filepath.Join(f.dir, "criterion")
	f.write(t, "criterion/get/random/new/sample.json", `{"iters": [1000, 1000], "times": [1000000, 3000000]}`)
	f.write(t, "criterion/set/random/new/sample.json", `{"iters": [10], "times": [40000]}`)

	res, err := f.pipeline().Report(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "get", res.Records[0].Name)
	assert.Equal(t, 2.0, res.Records[0].Mean)
	assert.Equal(t, 4.0, res.Records[1].Mean)
	assert.Contains(t, res.Table, "StdDev (µs)")
	assert.Contains(t, res.Table, "p90 (µs)")
}

func TestReportColorEcho(t *testing.T) {
	f := newFixture(t)
	f.cfg.Inputs.Files = []string{f.write(t, "bench_output.json", divanDoc)}

	p := f.pipeline()
	p.Color = true
	res, err := p.Report(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(f.cfg.Output.TablePath)
	require.NoError(t, err)
	assert.Equal(t, res.Table, string(data), "file output is never styled")
}

// =============================================================================
// Chart
// =============================================================================

func TestChart(t *testing.T) {
	f := newFixture(t)
	f.cfg.Chart.SweepPath = f.write(t, "bench_set.csv",
		"db_size,mean_ns,p50_ns,p95_ns,ops_per_sec\n"+
			"1000,1500,1000,3000,666666\n"+
			"2000,2500,2000,4000,400000\n"+
			"3000,3500,3000,5000,285714\n")
	f.cfg.Chart.Window = 3
	f.cfg.Output.ChartPath = filepath.Join(f.dir, "out", "bench_set.html")

	n, err := f.pipeline().Chart(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	html, err := os.ReadFile(f.cfg.Output.ChartPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<title>bench_set.csv</title>")
	assert.Contains(t, string(html), "<h2>bench_set</h2>")
}

func TestChartSchemaMismatch(t *testing.T) {
	f := newFixture(t)
	f.cfg.Chart.SweepPath = f.write(t, "bench_set.csv", "db_size,mean_ns\n1,2\n")
	f.cfg.Output.ChartPath = filepath.Join(f.dir, "bench_set.html")

	_, err := f.pipeline().Chart(context.Background())
	var schema *types.SchemaMismatchError
	require.True(t, errors.As(err, &schema))
	assert.False(t, fileExists(f.cfg.Output.ChartPath))
}

// fixedSweep serves points without reading the input.
type fixedSweep []types.SweepPoint

func (f fixedSweep) Parse(types.Input, io.Reader) ([]types.SweepPoint, error) {
	return f, nil
}

func TestRenderSweepFromSource(t *testing.T) {
	f := newFixture(t)
	f.cfg.Output.ChartPath = filepath.Join(f.dir, "out", "batch.html")
	in := types.Input{Path: f.write(t, "batch.csv", "ignored")}

	src := fixedSweep{
		{Operation: "get", X: 1, Mean: 2, P50: 1.5, P95: 4, Throughput: 500000},
		{Operation: "set", X: 1, Mean: 3, P50: 2.5, P95: 6, Throughput: 333333},
	}
	n, err := f.pipeline().renderSweep(src, in, f.cfg.ChartOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, fileExists(f.cfg.Output.ChartPath))
	assert.Contains(t, f.log.String(), "Read 2 point(s) for 2 operation(s): get, set")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
