package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/config"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/interfaces"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/logging"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/pipeline"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// =============================================================================
// Flags
// =============================================================================

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logFile    string
	errorFile  string
	harness    string
	timeout    time.Duration
	dryRun     bool
}

type reportFlags struct {
	shape         string
	inputs        []string
	operation     string
	criterionRoot string
	harnessStdout string
	table         string
	metrics       string
	percentiles   []int
	stddev        bool
	color         string
	fastest       string
	slowest       string
}

type chartFlags struct {
	sweep   string
	xColumn string
	unit    string
	window  int
	title   string
	output  string
	show    bool
}

// usageError marks a command line that could not be parsed.
type usageError struct{ error }

func isUsageError(err error) bool {
	var u usageError
	return errors.As(err, &u)
}

// =============================================================================
// Commands
// =============================================================================

func newRootCommand() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   ToolName,
		Short: "Summarize benchmark harness output into tables and sweep charts",
		Long: `bench-report runs a benchmark harness (optional), reads its raw output
(divan JSON, criterion sample.json, divan console text or a sweep CSV),
and produces a comparison table with the fastest and slowest operations
marked, or an HTML latency/throughput chart for a parameter sweep.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "Path to a TOML or YAML config file")
	pf.StringVar(&g.logFile, "log-file", "", "Write logs to this file instead of stderr")
	pf.StringVar(&g.errorFile, "error-file", "", "Write errors to this file (requires --log-file)")
	pf.StringVar(&g.harness, "harness", "", "Benchmark command to run before reading results")
	pf.DurationVar(&g.timeout, "harness-timeout", 0, "Kill the harness after this long (0 = no limit)")
	pf.BoolVar(&g.dryRun, "dry-run", false, "Validate configuration and list inputs, then exit")

	root.AddCommand(newReportCommand(g), newChartCommand(g), newVersionCommand())
	return root
}

func newReportCommand(g *globalFlags) *cobra.Command {
	f := &reportFlags{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute statistics and write the comparison table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if err := cfg.ValidateReport(); err != nil {
				return err
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			p := pipeline.New(cfg, logger, cmd.OutOrStdout())
			p.Color = useColor(cfg.Report.Color)

			if g.dryRun {
				return dryRunReport(p)
			}
			_, err = p.Report(cmd.Context())
			return err
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.shape, "shape", "", "Input shape: divan-json, criterion or divan-text")
	fl.StringArrayVarP(&f.inputs, "input", "i", nil, "Raw result file (repeatable; .zst is decompressed)")
	fl.StringVar(&f.operation, "operation", "", "Operation name for a single criterion sample file")
	fl.StringVar(&f.criterionRoot, "criterion-root", "", "Discover <root>/<group>/<bench>/new/sample.json")
	fl.StringVar(&f.harnessStdout, "harness-stdout", "", "Save the harness console output to this file")
	fl.StringVarP(&f.table, "table", "o", "", "Table output path")
	fl.StringVar(&f.metrics, "metrics", "", "Prometheus textfile output path")
	fl.IntSliceVar(&f.percentiles, "percentiles", nil, "Percentiles to report besides p50, any of 90,95,99")
	fl.BoolVar(&f.stddev, "stddev", false, "Report the population standard deviation")
	fl.StringVar(&f.color, "color", "", "Color the stdout table: auto, always or never")
	fl.StringVar(&f.fastest, "fastest-marker", "", "Marker for the fastest operation")
	fl.StringVar(&f.slowest, "slowest-marker", "", "Marker for the slowest operation")
	return cmd
}

func newChartCommand(g *globalFlags) *cobra.Command {
	f := &chartFlags{}

	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render a latency/throughput chart from a sweep CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, g)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if err := cfg.ValidateChart(); err != nil {
				return err
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			p := pipeline.New(cfg, logger, cmd.OutOrStdout())
			if g.dryRun {
				logDryRun(logger, []string{
					fmt.Sprintf("Sweep:  %s (x=%s)", cfg.Chart.SweepPath, cfg.Chart.XColumn),
					fmt.Sprintf("Chart:  %s", cfg.Output.ChartPath),
				})
				return nil
			}

			if _, err := p.Chart(cmd.Context()); err != nil {
				return err
			}
			if f.show {
				if err := openBrowser(cfg.Output.ChartPath); err != nil {
					logger.Error("Could not open %s: %v", cfg.Output.ChartPath, err)
				}
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.sweep, "sweep", "s", "", "Sweep CSV to chart")
	fl.StringVar(&f.xColumn, "x-column", "", "X-axis column: db_size or batch_index")
	fl.StringVar(&f.unit, "unit", "", "Latency display unit: ns, us or ms")
	fl.IntVar(&f.window, "window", 0, "Moving-average window for latency traces")
	fl.StringVar(&f.title, "title", "", "Chart title (default: sweep file name)")
	fl.StringVarP(&f.output, "output", "o", "", "HTML output path")
	fl.BoolVar(&f.show, "show", false, "Open the chart in a browser when done")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ToolName, Version)
		},
	}
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads --config (or the defaults) and applies the global flags.
func loadConfig(cmd *cobra.Command, g *globalFlags) (*config.Config, error) {
	cfg := config.Default()
	if g.configPath != "" {
		loaded, err := config.Load(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	pf := cmd.Flags()
	if pf.Changed("log-file") {
		cfg.Log.File = g.logFile
	}
	if pf.Changed("error-file") {
		cfg.Log.ErrorFile = g.errorFile
	}
	if pf.Changed("harness") {
		cfg.Harness.Command = g.harness
	}
	if pf.Changed("harness-timeout") {
		cfg.Harness.Timeout = g.timeout
	}
	return cfg, nil
}

// apply overrides cfg with the flags the user actually set.
func (f *reportFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("shape") {
		cfg.Inputs.Shape = f.shape
	}
	if fl.Changed("input") {
		cfg.Inputs.Files = f.inputs
	}
	if fl.Changed("operation") {
		cfg.Inputs.Operation = f.operation
	}
	if fl.Changed("criterion-root") {
		cfg.Inputs.CriterionRoot = f.criterionRoot
	}
	if fl.Changed("harness-stdout") {
		cfg.Harness.StdoutPath = f.harnessStdout
	}
	if fl.Changed("table") {
		cfg.Output.TablePath = f.table
	}
	if fl.Changed("metrics") {
		cfg.Output.MetricsPath = f.metrics
	}
	if fl.Changed("percentiles") {
		cfg.Stats.Percentiles = f.percentiles
	}
	if fl.Changed("stddev") {
		cfg.Stats.StdDev = &f.stddev
	}
	if fl.Changed("color") {
		cfg.Report.Color = f.color
	}
	if fl.Changed("fastest-marker") {
		cfg.Report.FastestMarker = f.fastest
	}
	if fl.Changed("slowest-marker") {
		cfg.Report.SlowestMarker = f.slowest
	}
}

func (f *chartFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("sweep") {
		cfg.Chart.SweepPath = f.sweep
	}
	if fl.Changed("x-column") {
		cfg.Chart.XColumn = f.xColumn
	}
	if fl.Changed("unit") {
		cfg.Chart.Unit = f.unit
	}
	if fl.Changed("window") {
		cfg.Chart.Window = f.window
	}
	if fl.Changed("title") {
		cfg.Chart.Title = f.title
	}
	if fl.Changed("output") {
		cfg.Output.ChartPath = f.output
	}
}

// =============================================================================
// Runtime Helpers
// =============================================================================

// newLogger logs to the configured files, or to stderr when none is set.
func newLogger(cfg *config.Config) (interfaces.Logger, error) {
	if cfg.Log.File == "" {
		return logging.NewWriterLogger(os.Stderr, os.Stderr), nil
	}
	logger, err := logging.NewDualLogger(cfg.Log.File, cfg.Log.ErrorFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}
	return logger, nil
}

// useColor resolves a color mode against the real stdout.
func useColor(mode string) bool {
	switch mode {
	case config.ColorAlways:
		lipgloss.SetColorProfile(termenv.ANSI256)
		return true
	case config.ColorNever:
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func dryRunReport(p *pipeline.Pipeline) error {
	shape, err := p.Config.Shape()
	if err != nil {
		return err
	}
	inputs, err := p.ResolveInputs(shape)
	if err != nil {
		return err
	}

	lines := []string{fmt.Sprintf("Shape:  %s", shape)}
	if p.Config.Harness.Command != "" {
		lines = append(lines, fmt.Sprintf("Harness: %s", p.Config.Harness.Command))
	}
	for _, in := range inputs {
		if in.Operation != "" {
			lines = append(lines, fmt.Sprintf("Input:  %s (%s)", in.Path, in.Operation))
			continue
		}
		lines = append(lines, fmt.Sprintf("Input:  %s", in.Path))
	}
	lines = append(lines, fmt.Sprintf("Table:  %s", p.Config.Output.TablePath))
	logDryRun(p.Logger, lines)
	return nil
}

func logDryRun(logger interfaces.Logger, lines []string) {
	logger.Separator()
	logger.Info("                    DRY RUN COMPLETE")
	logger.Separator()
	for _, line := range lines {
		logger.Info("%s", line)
	}
	logger.Info("")
	logger.Info("Configuration is valid. Remove --dry-run to execute.")
	logger.Sync()
}

// openBrowser hands path to the platform's default opener.
func openBrowser(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}
