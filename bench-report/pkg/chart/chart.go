// =============================================================================
// pkg/chart/chart.go - Sweep Chart Renderer
// =============================================================================
//
// Renders a parametrized sweep (latency and throughput measured at several
// dataset sizes or batch indexes) as a self-contained HTML document.
//
// DOCUMENT LAYOUT:
//
//	<h1>title</h1>
//	one section per operation, in first-seen order:
//	  - a Chart.js canvas (hover shows every trace at the x value,
//	    legend entries toggle traces)
//	  - the same figure drawn with go-chart as inline SVG, shown when
//	    scripts are unavailable
//	  - a collapsible table with the unsmoothed data points
//
// FIGURE:
//
//	Primary (left) axis:    p95, mean and p50 latency in the display unit
//	Secondary (right) axis: ops/sec
//
//	Trace names carry their axis: "p95 (µs)", "mean (µs)", "p50 (µs)" and
//	"ops/sec (right axis)". Latency traces may be smoothed with a centered
//	moving average; ops/sec is always plotted as measured. Missing values
//	(NaN) leave a gap in their trace.
//
// =============================================================================

package chart

import (
	"bytes"
	"html/template"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/pkg/errors"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// =============================================================================
// Display Unit
// =============================================================================

// Unit is the latency unit shown on the primary axis.
type Unit string

const (
	UnitNS Unit = "ns"
	UnitUS Unit = "us"
	UnitMS Unit = "ms"
)

// ParseUnit accepts ns, us or ms.
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(s); u {
	case UnitNS, UnitUS, UnitMS:
		return u, nil
	}
	return "", errors.Errorf("latency unit must be one of ns, us, ms; got %q", s)
}

// FromMicros converts a microsecond value into u.
func (u Unit) FromMicros(us float64) float64 {
	switch u {
	case UnitNS:
		return us * types.NanosPerMicro
	case UnitMS:
		return us / types.MicrosPerMilli
	default:
		return us
	}
}

// Label is the unit as printed in axis titles and trace names.
func (u Unit) Label() string {
	if u == UnitUS {
		return "µs"
	}
	return string(u)
}

// =============================================================================
// Options
// =============================================================================

const (
	DefaultWidth  = 960
	DefaultHeight = 520
)

// Options controls one chart document.
type Options struct {
	// Title defaults to the base name of the sweep file (see DefaultTitle).
	Title string

	// XLabel names the independent variable (db_size or batch_index).
	XLabel string

	// Unit is the latency display unit.
	Unit Unit

	// Window is the moving-average width; 1 disables smoothing.
	Window int

	Width  int
	Height int
}

// DefaultTitle returns the title used when none is configured.
func DefaultTitle(sweepPath string) string {
	return filepath.Base(sweepPath)
}

func (o Options) withDefaults() Options {
	if o.Unit == "" {
		o.Unit = UnitUS
	}
	if o.Window < 1 {
		o.Window = 1
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Validate checks the unit and the smoothing window.
func (o Options) Validate() error {
	if _, err := ParseUnit(string(o.withDefaults().Unit)); err != nil {
		return err
	}
	if o.Window < 0 {
		return errors.Errorf("smoothing window must be >= 1, got %d", o.Window)
	}
	return nil
}

// =============================================================================
// Trace Names
// =============================================================================

// ThroughputTrace is the name of the secondary-axis series.
const ThroughputTrace = "ops/sec (right axis)"

// LatencyTraces returns the primary-axis series names in plot order.
func LatencyTraces(unit Unit) []string {
	l := unit.Label()
	return []string{"p95 (" + l + ")", "mean (" + l + ")", "p50 (" + l + ")"}
}

const (
	p95Hex        = "d62728"
	meanHex       = "1f77b4"
	p50Hex        = "2ca02c"
	throughputHex = "7f7f7f"
)

var (
	p95Color        = drawing.ColorFromHex(p95Hex)
	meanColor       = drawing.ColorFromHex(meanHex)
	p50Color        = drawing.ColorFromHex(p50Hex)
	throughputColor = drawing.ColorFromHex(throughputHex)
)

// =============================================================================
// Figure
// =============================================================================

// Figure builds the go-chart figure for one operation. s is in microseconds
// and already smoothed as desired. NaN values are left out of their trace;
// a trace with no values left is omitted.
func Figure(s Series, opts Options) *gochart.Chart {
	opts = opts.withDefaults()
	scaled := s.scaled(opts.Unit)
	names := LatencyTraces(opts.Unit)

	latency := func(name string, ys []float64, color drawing.Color) gochart.ContinuousSeries {
		xs, ys := present(scaled.X, ys)
		return gochart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: color,
				StrokeWidth: 2,
				DotColor:    color,
				DotWidth:    3,
			},
		}
	}

	var all []float64
	all = append(all, scaled.P95...)
	all = append(all, scaled.Mean...)
	all = append(all, scaled.P50...)

	graph := &gochart.Chart{
		Title:  s.Operation,
		Width:  opts.Width,
		Height: opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:           opts.XLabel,
			Range:          paddedRange(scaled.X, false),
			ValueFormatter: compactFormatter,
		},
		YAxis: gochart.YAxis{
			Name:           "Latency (" + opts.Unit.Label() + ")",
			Range:          paddedRange(all, true),
			ValueFormatter: compactFormatter,
		},
		YAxisSecondary: gochart.YAxis{
			Name:           "Ops / sec",
			Range:          paddedRange(scaled.Throughput, true),
			ValueFormatter: compactFormatter,
		},
	}

	tpX, tpY := present(scaled.X, scaled.Throughput)
	for _, cs := range []gochart.ContinuousSeries{
		latency(names[0], scaled.P95, p95Color),
		latency(names[1], scaled.Mean, meanColor),
		latency(names[2], scaled.P50, p50Color),
		{
			Name:    ThroughputTrace,
			YAxis:   gochart.YAxisSecondary,
			XValues: tpX,
			YValues: tpY,
			Style: gochart.Style{
				StrokeColor:     throughputColor,
				StrokeWidth:     2,
				StrokeDashArray: []float64{5, 3},
				DotColor:        throughputColor,
				DotWidth:        3,
			},
		},
	} {
		if len(cs.XValues) > 0 {
			graph.Series = append(graph.Series, cs)
		}
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(graph)}
	return graph
}

// present returns the (x, y) pairs whose y is not NaN.
func present(xs, ys []float64) ([]float64, []float64) {
	outX := make([]float64, 0, len(xs))
	outY := make([]float64, 0, len(ys))
	for i, y := range ys {
		if math.IsNaN(y) {
			continue
		}
		outX = append(outX, xs[i])
		outY = append(outY, y)
	}
	return outX, outY
}

// paddedRange returns an axis range around values that never has a zero
// span, so single-point and flat series still render. Non-negative data
// keeps its lower bound at or above zero when floorZero is set.
func paddedRange(values []float64, floorZero bool) *gochart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return &gochart.ContinuousRange{Min: 0, Max: 1}
	}

	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Abs(hi) * 0.1
		if pad == 0 {
			pad = 1
		}
	}
	from, to := lo-pad, hi+pad
	if floorZero && lo >= 0 && from < 0 {
		from = 0
	}
	return &gochart.ContinuousRange{Min: from, Max: to}
}

func compactFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return formatValue(f)
}

// formatValue prints up to 2 decimals, trimming trailing zeros. A missing
// (NaN) value prints as an empty cell.
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// =============================================================================
// Document
// =============================================================================

type documentRow struct {
	X, P95, Mean, P50, Throughput string
}

type documentFigure struct {
	Operation string
	SVG       template.HTML
	Rows      []documentRow
}

type document struct {
	Title   string
	XLabel  string
	Unit    string
	Window  int
	Traces  []string
	Figures []documentFigure
	ChartJS string
	Configs template.JS
}

var documentTemplate = template.Must(template.New("chart").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
section { margin-bottom: 3em; }
table { border-collapse: collapse; margin-top: 0.5em; }
th, td { padding: 2px 10px; text-align: right; border-bottom: 1px solid #ddd; }
p.meta { color: #666; }
.figure { position: relative; max-width: 960px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">x: {{.XLabel}} &middot; latency unit: {{.Unit}}{{if gt .Window 1}} &middot; smoothing window: {{.Window}}{{end}}</p>
{{- range $i, $fig := .Figures}}
<section>
<h2>{{.Operation}}</h2>
<div class="figure"><canvas id="figure-{{$i}}"></canvas></div>
<noscript>{{.SVG}}</noscript>
<details>
<summary>data ({{len .Rows}} points)</summary>
<table>
<thead><tr><th>{{$.XLabel}}</th>{{range $.Traces}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr><td>{{.X}}</td><td>{{.P95}}</td><td>{{.Mean}}</td><td>{{.P50}}</td><td>{{.Throughput}}</td></tr>
{{- end}}
</tbody>
</table>
</details>
</section>
{{- else}}
<p>No sweep points.</p>
{{- end}}
{{- if .Figures}}
<script src="{{.ChartJS}}"></script>
<script>
(function() {
  var figures = {{.Configs}};
  if (typeof Chart === "undefined") {
    return;
  }
  figures.forEach(function(cfg, i) {
    new Chart(document.getElementById("figure-" + i), cfg);
  });
})();
</script>
{{- end}}
</body>
</html>
`))

// Render writes the chart document for points to w.
//
// An empty point set renders a document with the title and no figures.
func Render(w io.Writer, points []types.SweepPoint, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	opts = opts.withDefaults()

	doc := document{
		Title:   opts.Title,
		XLabel:  opts.XLabel,
		Unit:    opts.Unit.Label(),
		Window:  opts.Window,
		Traces:  append(LatencyTraces(opts.Unit), ThroughputTrace),
		ChartJS: ChartJSURL,
	}

	var configs []jsConfig
	for _, s := range Group(points) {
		smoothed := s.Smoothed(opts.Window)
		configs = append(configs, interactiveConfig(smoothed, opts))

		var svg bytes.Buffer
		graph := Figure(smoothed, opts)
		if len(graph.Series) > 0 {
			if err := graph.Render(gochart.SVG, &svg); err != nil {
				return errors.Wrapf(err, "failed to draw chart for %s", s.Operation)
			}
		}

		raw := s.scaled(opts.Unit)
		fig := documentFigure{Operation: s.Operation, SVG: template.HTML(svg.String())}
		for i := range raw.X {
			fig.Rows = append(fig.Rows, documentRow{
				X:          formatValue(raw.X[i]),
				P95:        formatValue(raw.P95[i]),
				Mean:       formatValue(raw.Mean[i]),
				P50:        formatValue(raw.P50[i]),
				Throughput: formatValue(raw.Throughput[i]),
			})
		}
		doc.Figures = append(doc.Figures, fig)
	}

	js, err := scriptConfigs(configs)
	if err != nil {
		return err
	}
	doc.Configs = js

	return errors.Wrap(documentTemplate.Execute(w, doc), "failed to write chart document")
}

// RenderFile writes the chart document to path, creating parent directories.
func RenderFile(path string, points []types.SweepPoint, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := Render(f, points, opts); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "failed to close %s", path)
}
