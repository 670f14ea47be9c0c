// =============================================================================
// pkg/config/config.go - Configuration Management
// =============================================================================
//
// This package handles:
//   - TOML (default) or YAML configuration file parsing
//   - Default value management
//   - Configuration validation
//
// Command-line flags are applied by the caller on top of the loaded file,
// then Validate*() is run on the merged result.
//
// EXAMPLE (bench-report.toml):
//
//	[harness]
//	command = "cargo bench --bench bench -- --save-json"
//	timeout = "30m"
//
//	[inputs]
//	shape = "divan-json"
//	files = ["target/bench_output.json"]
//
//	[output]
//	table_path   = "bench.md"
//	metrics_path = "bench.prom"
//
//	[stats]
//	percentiles = [95, 99]
//
//	[chart]
//	sweep_path = "bench_set.csv"
//	x_column   = "db_size"
//	unit       = "us"
//	window     = 3
//
// =============================================================================

package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/adapters"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/chart"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/harness"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/report"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/stats"
	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every load and validation failure.
var ErrInvalid = errors.New("invalid configuration")

func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalid, format, args...)
}

// =============================================================================
// Configuration Structures
// =============================================================================

// Config represents the complete configuration file.
type Config struct {
	Harness HarnessConfig `toml:"harness" yaml:"harness"`
	Inputs  InputsConfig  `toml:"inputs" yaml:"inputs"`
	Output  OutputConfig  `toml:"output" yaml:"output"`
	Stats   StatsConfig   `toml:"stats" yaml:"stats"`
	Chart   ChartConfig   `toml:"chart" yaml:"chart"`
	Report  ReportConfig  `toml:"report" yaml:"report"`
	Log     LogConfig     `toml:"log" yaml:"log"`
}

// HarnessConfig describes the external benchmark command.
// Leave Command empty to only post-process existing result files.
type HarnessConfig struct {
	Command string        `toml:"command" yaml:"command"`
	Dir     string        `toml:"dir" yaml:"dir"`
	Timeout time.Duration `toml:"timeout" yaml:"timeout"`

	// StdoutPath saves the harness console output. For the divan-text
	// shape this file is also the default input.
	StdoutPath string `toml:"stdout_path" yaml:"stdout_path"`
}

// InputsConfig locates the raw result files.
type InputsConfig struct {
	// Shape names the harness output format (see types.Shapes).
	Shape string `toml:"shape" yaml:"shape"`

	// Files are read in order. Missing files are logged and skipped.
	Files []string `toml:"files" yaml:"files"`

	// Operation names the run for single-operation files (criterion).
	Operation string `toml:"operation" yaml:"operation"`

	// CriterionRoot enables discovery of <root>/<group>/<bench>/new/sample.json.
	CriterionRoot string `toml:"criterion_root" yaml:"criterion_root"`
}

// OutputConfig holds artifact paths. An empty path disables that artifact,
// except TablePath which is required for the report command.
type OutputConfig struct {
	TablePath   string `toml:"table_path" yaml:"table_path"`
	ChartPath   string `toml:"chart_path" yaml:"chart_path"`
	MetricsPath string `toml:"metrics_path" yaml:"metrics_path"`
}

// StatsConfig selects the optional statistics. Unset fields fall back to
// the shape's defaults (stats.DefaultOptions).
type StatsConfig struct {
	Percentiles []int `toml:"percentiles" yaml:"percentiles"`
	StdDev      *bool `toml:"stddev" yaml:"stddev"`
}

// ChartConfig drives the sweep chart.
type ChartConfig struct {
	SweepPath string `toml:"sweep_path" yaml:"sweep_path"`
	XColumn   string `toml:"x_column" yaml:"x_column"`
	Unit      string `toml:"unit" yaml:"unit"`
	Window    int    `toml:"window" yaml:"window"`
	Title     string `toml:"title" yaml:"title"`
	Width     int    `toml:"width" yaml:"width"`
	Height    int    `toml:"height" yaml:"height"`
}

// ReportConfig controls table decoration.
type ReportConfig struct {
	FastestMarker string `toml:"fastest_marker" yaml:"fastest_marker"`
	SlowestMarker string `toml:"slowest_marker" yaml:"slowest_marker"`

	// Color is auto, always or never for the stdout echo.
	Color string `toml:"color" yaml:"color"`
}

// LogConfig routes log output. Empty File logs to stderr.
type LogConfig struct {
	File      string `toml:"file" yaml:"file"`
	ErrorFile string `toml:"error_file" yaml:"error_file"`
}

// =============================================================================
// Default Values
// =============================================================================

// Color modes for ReportConfig.Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Inputs: InputsConfig{
			Shape: string(types.ShapeDivanJSON),
		},
		Output: OutputConfig{
			TablePath: "bench.md",
		},
		Chart: ChartConfig{
			XColumn: adapters.XColumnDBSize,
			Unit:    string(chart.UnitUS),
			Window:  1,
			Width:   chart.DefaultWidth,
			Height:  chart.DefaultHeight,
		},
		Report: ReportConfig{
			FastestMarker: report.DefaultFastestMarker,
			SlowestMarker: report.DefaultSlowestMarker,
			Color:         ColorAuto,
		},
	}
}

// =============================================================================
// Configuration Loading
// =============================================================================

// Load reads path over the defaults. Files ending in .yaml or .yml are
// parsed as YAML; anything else as TOML.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, invalid("failed to read config file %s: %v", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, invalid("failed to parse config file %s: %v", path, err)
		}
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, invalid("failed to parse config file %s: %v", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, invalid("unknown keys in config file %s: %v", path, undecoded)
		}
	}
	return cfg, nil
}

// =============================================================================
// Derived Settings
// =============================================================================

// Shape returns the parsed input shape.
func (c *Config) Shape() (types.Shape, error) {
	shape, err := types.ParseShape(c.Inputs.Shape)
	if err != nil {
		return "", invalid("%v", err)
	}
	return shape, nil
}

// StatsOptions merges the configured statistics over the shape defaults.
func (c *Config) StatsOptions(shape types.Shape) stats.Options {
	opts := stats.DefaultOptions(shape)
	if c.Stats.Percentiles != nil {
		opts.Percentiles = append([]int(nil), c.Stats.Percentiles...)
	}
	if c.Stats.StdDev != nil {
		opts.StdDev = *c.Stats.StdDev
	}
	return opts
}

// ReportOptions returns the renderer options for shape.
func (c *Config) ReportOptions(shape types.Shape) report.Options {
	opts := report.Options{
		FastestMarker: c.Report.FastestMarker,
		SlowestMarker: c.Report.SlowestMarker,
	}
	if shape != types.ShapeDivanText {
		opts.Fields = c.StatsOptions(shape).Fields()
	}
	return opts
}

// ChartOptions returns the chart options; the title falls back to the sweep
// file's base name.
func (c *Config) ChartOptions() chart.Options {
	title := c.Chart.Title
	if title == "" {
		title = chart.DefaultTitle(c.Chart.SweepPath)
	}
	return chart.Options{
		Title:  title,
		XLabel: c.Chart.XColumn,
		Unit:   chart.Unit(c.Chart.Unit),
		Window: c.Chart.Window,
		Width:  c.Chart.Width,
		Height: c.Chart.Height,
	}
}

// =============================================================================
// Configuration Validation
// =============================================================================

// ValidateReport checks everything the report command needs.
func (c *Config) ValidateReport() error {
	if err := c.validateCommon(); err != nil {
		return err
	}

	shape, err := c.Shape()
	if err != nil {
		return err
	}
	if shape == types.ShapeSweepCSV {
		return invalid("shape %s is only valid for the chart command", shape)
	}
	if err := c.StatsOptions(shape).Validate(); err != nil {
		return invalid("stats: %v", err)
	}

	if c.Output.TablePath == "" {
		return invalid("output.table_path is required")
	}

	hasInputs := len(c.Inputs.Files) > 0 || c.Inputs.CriterionRoot != ""
	if shape == types.ShapeDivanText && c.Harness.StdoutPath != "" {
		hasInputs = true
	}
	if !hasInputs {
		return invalid("no inputs: set inputs.files%s", shapeHint(shape))
	}
	if c.Inputs.CriterionRoot != "" && shape != types.ShapeCriterion {
		return invalid("inputs.criterion_root requires shape %s, got %s", types.ShapeCriterion, shape)
	}
	if shape == types.ShapeCriterion && len(c.Inputs.Files) > 0 {
		if len(c.Inputs.Files) > 1 {
			return invalid("inputs.operation cannot name %d criterion files; use inputs.criterion_root", len(c.Inputs.Files))
		}
		if c.Inputs.Operation == "" {
			return invalid("inputs.operation is required for a criterion sample file")
		}
	}
	return nil
}

func shapeHint(shape types.Shape) string {
	switch shape {
	case types.ShapeCriterion:
		return " or inputs.criterion_root"
	case types.ShapeDivanText:
		return " or harness.stdout_path"
	}
	return ""
}

// ValidateChart checks everything the chart command needs.
func (c *Config) ValidateChart() error {
	if err := c.validateCommon(); err != nil {
		return err
	}
	if c.Chart.SweepPath == "" {
		return invalid("chart.sweep_path is required")
	}
	if c.Output.ChartPath == "" {
		return invalid("output.chart_path is required")
	}
	if _, err := adapters.NewSweepCSV(c.Chart.XColumn, nil); err != nil {
		return invalid("chart.x_column: %v", err)
	}
	if _, err := chart.ParseUnit(c.Chart.Unit); err != nil {
		return invalid("chart.unit: %v", err)
	}
	if c.Chart.Window < 1 {
		return invalid("chart.window must be >= 1, got %d", c.Chart.Window)
	}
	return nil
}

func (c *Config) validateCommon() error {
	if c.Harness.Timeout < 0 {
		return invalid("harness.timeout must not be negative")
	}
	if c.Harness.Command != "" {
		if _, err := harness.Args(c.Harness.Command); err != nil {
			return invalid("harness.command: %v", err)
		}
	}
	switch c.Report.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return invalid("report.color must be one of auto, always, never; got %q", c.Report.Color)
	}
	return nil
}
