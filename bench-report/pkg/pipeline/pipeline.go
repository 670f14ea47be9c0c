// =============================================================================
// pkg/pipeline/pipeline.go - Report and Chart Pipelines
// =============================================================================
//
// Wires the stages together for one invocation:
//
//	REPORT:
//	  1. Run the harness (optional). Failure aborts before any parsing.
//	  2. Resolve inputs (configured files, criterion discovery, or the saved
//	     harness stdout). Missing files are logged and skipped.
//	  3. Parse every input with the adapter for the configured shape.
//	  4. Reject duplicate operation names across inputs.
//	  5. Compute one StatRecord per run; runs without samples are dropped.
//	  6. Select the fastest/slowest records.
//	  7. Write the table file, echo it to stdout, write metrics (optional).
//
//	CHART:
//	  1. Run the harness (optional).
//	  2. Parse the sweep CSV.
//	  3. Render the chart document.
//
// Every fatal condition aborts the whole run; no partial table is written.
//
// =============================================================================

package pipeline

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/adapters"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/chart"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/config"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/extremes"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/harness"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/interfaces"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/logging"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/metrics"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/report"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/stats"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/karthikiyer56/bench-report/helpers"
	"github.com/pkg/errors"
)

// Pipeline runs one report or chart invocation.
type Pipeline struct {
	Config *config.Config
	Logger interfaces.Logger

	// Stdout receives the table echo.
	Stdout io.Writer

	// Color styles the stdout echo with report.Highlight.
	Color bool

	// RunID tags log lines and metrics; New assigns a random one.
	RunID string
}

// New creates a Pipeline with a fresh run id.
func New(cfg *config.Config, logger interfaces.Logger, stdout io.Writer) *Pipeline {
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Pipeline{
		Config: cfg,
		Logger: logging.OrNop(logger),
		Stdout: stdout,
		RunID:  uuid.New().String(),
	}
}

// ReportResult is what a successful report run produced.
type ReportResult struct {
	RunID    string
	Records  []types.StatRecord
	Extremes extremes.Extremes
	Table    string
}

// =============================================================================
// Harness
// =============================================================================

// runHarness runs the configured command, if any, and saves its stdout when
// harness.stdout_path is set.
func (p *Pipeline) runHarness(ctx context.Context) error {
	hc := p.Config.Harness
	if hc.Command == "" {
		return nil
	}

	runner := &harness.Runner{
		Command: hc.Command,
		Dir:     hc.Dir,
		Timeout: hc.Timeout,
		Logger:  p.Logger.WithScope("HARNESS"),
	}
	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	p.Logger.Info("Harness completed in %s", helpers.FormatDuration(res.Duration))

	if hc.StdoutPath != "" {
		if err := helpers.EnsureParentDir(hc.StdoutPath); err != nil {
			return errors.Wrapf(err, "failed to create directory for %s", hc.StdoutPath)
		}
		if err := os.WriteFile(hc.StdoutPath, []byte(res.Stdout), 0644); err != nil {
			return errors.Wrapf(err, "failed to save harness output to %s", hc.StdoutPath)
		}
		p.Logger.Info("Saved harness output to %s", hc.StdoutPath)
	}
	return nil
}

// =============================================================================
// Inputs
// =============================================================================

// ResolveInputs lists the inputs for shape in read order. Files that do not
// exist are logged and skipped.
func (p *Pipeline) ResolveInputs(shape types.Shape) ([]types.Input, error) {
	ic := p.Config.Inputs
	var candidates []types.Input

	if ic.CriterionRoot != "" {
		found, err := adapters.DiscoverCriterion(ic.CriterionRoot)
		if err != nil {
			return nil, err
		}
		p.Logger.Info("Discovered %d criterion sample file(s) under %s", len(found), ic.CriterionRoot)
		candidates = append(candidates, found...)
	}
	for _, f := range ic.Files {
		candidates = append(candidates, types.Input{Operation: ic.Operation, Path: f})
	}
	if len(ic.Files) == 0 && shape == types.ShapeDivanText && p.Config.Harness.StdoutPath != "" {
		candidates = append(candidates, types.Input{Path: p.Config.Harness.StdoutPath})
	}

	inputs := make([]types.Input, 0, len(candidates))
	for _, in := range candidates {
		if !helpers.FileExists(in.Path) {
			p.Logger.Error("Missing: %s", in.Path)
			continue
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// =============================================================================
// Report
// =============================================================================

// Report runs the report pipeline end to end.
func (p *Pipeline) Report(ctx context.Context) (*ReportResult, error) {
	cfg := p.Config
	shape, err := cfg.Shape()
	if err != nil {
		return nil, err
	}
	statsOpts := cfg.StatsOptions(shape)

	p.Logger.Separator()
	p.Logger.Info("                    BENCH REPORT")
	p.Logger.Separator()
	p.Logger.Info("Run ID:       %s", p.RunID)
	p.Logger.Info("Shape:        %s", shape)
	p.Logger.Info("Percentiles:  %v (stddev=%v)", statsOpts.Percentiles, statsOpts.StdDev)
	p.Logger.Info("Table:        %s", cfg.Output.TablePath)
	p.Logger.Info("")

	if err := p.runHarness(ctx); err != nil {
		return nil, err
	}

	inputs, err := p.ResolveInputs(shape)
	if err != nil {
		return nil, err
	}

	runs, err := p.parse(shape, inputs)
	if err != nil {
		return nil, err
	}

	records, err := p.compute(runs, statsOpts)
	if err != nil {
		return nil, err
	}

	ext := extremes.Select(records)
	ropts := cfg.ReportOptions(shape)
	table := report.Table(records, ext, ropts)

	if err := helpers.EnsureParentDir(cfg.Output.TablePath); err != nil {
		return nil, errors.Wrapf(err, "failed to create directory for %s", cfg.Output.TablePath)
	}
	if err := os.WriteFile(cfg.Output.TablePath, []byte(table), 0644); err != nil {
		return nil, errors.Wrapf(err, "failed to write table to %s", cfg.Output.TablePath)
	}
	p.Logger.Info("Table saved to %s", cfg.Output.TablePath)

	echo := table
	if p.Color {
		echo = report.Highlight(table, ext)
	}
	if _, err := io.WriteString(p.Stdout, echo); err != nil {
		return nil, errors.Wrap(err, "failed to echo table")
	}

	rows := report.Rows(records, ext)
	if cfg.Output.MetricsPath != "" {
		if err := helpers.EnsureParentDir(cfg.Output.MetricsPath); err != nil {
			return nil, errors.Wrapf(err, "failed to create directory for %s", cfg.Output.MetricsPath)
		}
		exp := metrics.New(p.RunID, shape)
		exp.Observe(rows)
		if err := exp.WriteTextfile(cfg.Output.MetricsPath); err != nil {
			return nil, err
		}
		p.Logger.Info("Metrics saved to %s", cfg.Output.MetricsPath)
	}

	p.Logger.Info("")
	report.LogSummary(p.Logger, rows)
	p.Logger.Sync()

	return &ReportResult{
		RunID:    p.RunID,
		Records:  records,
		Extremes: ext,
		Table:    table,
	}, nil
}

// parse reads every input and enforces unique operation names.
func (p *Pipeline) parse(shape types.Shape, inputs []types.Input) ([]types.OperationRun, error) {
	logger := p.Logger.WithScope("PARSE")
	src, err := adapters.New(shape, logger)
	if err != nil {
		return nil, err
	}

	var runs []types.OperationRun
	seen := make(map[string]string)
	for _, in := range inputs {
		parsed, err := adapters.ParseFile(src, in)
		if err != nil {
			return nil, err
		}
		var samples int64
		for _, r := range parsed {
			samples += int64(len(r.Samples))
		}
		logger.Info("%s (%s): %d operation(s), %s sample(s)", in.Path,
			helpers.FormatBytes(helpers.FileSize(in.Path)), len(parsed), helpers.FormatNumber(samples))

		for _, r := range parsed {
			if first, dup := seen[r.Name]; dup {
				return nil, types.Malformed(in.Path, r.Name, "operation already reported by %s", first)
			}
			seen[r.Name] = in.Path
			runs = append(runs, r)
		}
	}
	return runs, nil
}

// compute reduces runs to records, dropping runs that cannot be ranked.
func (p *Pipeline) compute(runs []types.OperationRun, opts stats.Options) ([]types.StatRecord, error) {
	logger := p.Logger.WithScope("STATS")
	records := make([]types.StatRecord, 0, len(runs))
	for _, r := range runs {
		rec, err := stats.Compute(r, opts)
		if errors.Is(err, types.ErrEmptyRun) {
			logger.Info("Dropping %s: no samples", r.Name)
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	logger.Info("Computed statistics for %d of %d operation(s)", len(records), len(runs))
	return records, nil
}

// =============================================================================
// Chart
// =============================================================================

// Chart runs the sweep chart pipeline and returns the number of points drawn.
func (p *Pipeline) Chart(ctx context.Context) (int, error) {
	cfg := p.Config
	opts := cfg.ChartOptions()

	p.Logger.Separator()
	p.Logger.Info("                    SWEEP CHART")
	p.Logger.Separator()
	p.Logger.Info("Run ID:       %s", p.RunID)
	p.Logger.Info("Sweep:        %s (x=%s)", cfg.Chart.SweepPath, cfg.Chart.XColumn)
	p.Logger.Info("Unit:         %s, smoothing window %d", opts.Unit, opts.Window)
	p.Logger.Info("")

	if err := p.runHarness(ctx); err != nil {
		return 0, err
	}

	src, err := adapters.NewSweepCSV(cfg.Chart.XColumn, p.Logger.WithScope("PARSE"))
	if err != nil {
		return 0, err
	}
	return p.renderSweep(src, types.Input{Path: cfg.Chart.SweepPath}, opts)
}

// renderSweep reads the sweep from src and writes the chart document.
func (p *Pipeline) renderSweep(src interfaces.SweepSource, in types.Input, opts chart.Options) (int, error) {
	cfg := p.Config
	points, err := adapters.ParseSweepFile(src, in)
	if err != nil {
		return 0, err
	}

	ops := make([]string, 0)
	for _, s := range chart.Group(points) {
		ops = append(ops, s.Operation)
	}
	p.Logger.Info("Read %d point(s) for %d operation(s): %s", len(points), len(ops), strings.Join(ops, ", "))

	if err := chart.RenderFile(cfg.Output.ChartPath, points, opts); err != nil {
		return 0, err
	}
	p.Logger.Info("Chart saved to %s", cfg.Output.ChartPath)
	p.Logger.Sync()
	return len(points), nil
}
