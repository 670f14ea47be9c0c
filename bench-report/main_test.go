package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/config"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"config", errors.Wrap(config.ErrInvalid, "output.table_path is required"), ExitConfigError},
		{"usage", usageError{errors.New("unknown flag: --nope")}, ExitConfigError},
		{"malformed", types.Malformed("a.json", "get", "missing samples"), ExitParseError},
		{"schema", errors.Wrap(&types.SchemaMismatchError{Source: "s.csv"}, "chart"), ExitParseError},
		{"harness", &types.HarnessExecutionError{Command: "cargo bench", ExitCode: 101}, ExitHarnessFailure},
		{"other", errors.New("disk full"), ExitRuntimeError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestReportErrorReplaysHarnessOutput(t *testing.T) {
	harnessErr := &types.HarnessExecutionError{
		Command:  "cargo bench",
		ExitCode: 101,
		Stdout:   "   Compiling kv v0.1.0\nrunning 3 benches\n",
		Stderr:   "error[E0425]: cannot find value `db`\n\tat src/lib.rs:7\n",
	}

	var stdout, stderr bytes.Buffer
	code := reportError(errors.Wrap(harnessErr, "report"), &stdout, &stderr)

	assert.Equal(t, ExitHarnessFailure, code)
	assert.Equal(t, harnessErr.Stdout, stdout.String())
	require.True(t, strings.HasPrefix(stderr.String(), harnessErr.Stderr))
	assert.Equal(t,
		"Benchmark harness failed: report: harness failed: \"cargo bench\" exited with status 101\n",
		strings.TrimPrefix(stderr.String(), harnessErr.Stderr))
}

func TestReportErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		prefix string
	}{
		{"parse", types.Malformed("a.json", "get", "missing samples"), ExitParseError, "Could not parse benchmark output: "},
		{"config", errors.Wrap(config.ErrInvalid, "no inputs"), ExitConfigError, "Configuration error: "},
		{"other", errors.New("disk full"), ExitRuntimeError, "Error: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.code, reportError(tt.err, &stdout, &stderr))
			assert.Empty(t, stdout.String())
			assert.Equal(t, tt.prefix+tt.err.Error()+"\n", stderr.String())
		})
	}

	var stdout, stderr bytes.Buffer
	assert.Equal(t, ExitSuccess, reportError(nil, &stdout, &stderr))
	assert.Empty(t, stderr.String())
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, ToolName+" "+Version+"\n", out)
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	_, err := execute(t, "report", "--nope")
	require.Error(t, err)
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bench_output.json")
	require.NoError(t, os.WriteFile(input, []byte(`{"benches": [
		{"name": "get", "samples": [{"time_ns": 1000}, {"time_ns": 3000}]},
		{"name": "set", "samples": [{"time_ns": 8000}]}
	]}`), 0644))
	table := filepath.Join(dir, "bench.md")

	out, err := execute(t, "report",
		"--input", input,
		"--table", table,
		"--percentiles", "50",
		"--color", "never",
		"--log-file", filepath.Join(dir, "bench.log"),
	)
	require.NoError(t, err)

	data, err := os.ReadFile(table)
	require.NoError(t, err)
	assert.Equal(t, string(data), out)
	assert.Contains(t, out, "p50 (µs)")
	assert.NotContains(t, out, "p95 (µs)")
	assert.Contains(t, out, "⚡💛")
	assert.Contains(t, out, "💙")
}

func TestReportDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bench_output.json")
	require.NoError(t, os.WriteFile(input, []byte(`{"benches": []}`), 0644))
	table := filepath.Join(dir, "bench.md")

	_, err := execute(t, "report", "--dry-run", "--input", input, "--table", table,
		"--log-file", filepath.Join(dir, "bench.log"))
	require.NoError(t, err)
	assert.NoFileExists(t, table)

	log, err := os.ReadFile(filepath.Join(dir, "bench.log"))
	require.NoError(t, err)
	assert.Contains(t, string(log), "DRY RUN COMPLETE")
	assert.Contains(t, string(log), "Input:  "+input)
}

func TestReportConfigErrors(t *testing.T) {
	_, err := execute(t, "report", "--shape", "sweep-csv", "--input", "x.csv")
	assert.Equal(t, ExitConfigError, exitCode(err))

	_, err = execute(t, "report", "--config", filepath.Join(t.TempDir(), "absent.toml"))
	assert.Equal(t, ExitConfigError, exitCode(err))
}

func TestChartCommand(t *testing.T) {
	dir := t.TempDir()
	sweep := filepath.Join(dir, "bench_get.csv")
	require.NoError(t, os.WriteFile(sweep, []byte(
		"db_size,mean_ns,p50_ns,p95_ns,ops_per_sec\n1000,1500,1000,3000,666666\n"), 0644))
	output := filepath.Join(dir, "bench_get.html")

	_, err := execute(t, "chart", "--sweep", sweep, "--output", output, "--unit", "ns",
		"--log-file", filepath.Join(dir, "bench.log"))
	require.NoError(t, err)
	assert.FileExists(t, output)

	_, err = execute(t, "chart", "--sweep", sweep, "--output", output, "--window", "0")
	assert.Equal(t, ExitConfigError, exitCode(err))
}
