// =============================================================================
// pkg/metrics/metrics.go - Prometheus Textfile Export
// =============================================================================
//
// Publishes one report's statistics as Prometheus gauges so a node exporter
// textfile collector (or any scraper reading the file) can pick them up:
//
//	bench_latency_microseconds{operation="get",stat="p95"}   290
//	bench_throughput_ops_per_second{operation="get"}         5000
//	bench_samples{operation="get"}                           100
//	bench_extreme{operation="get",kind="fastest"}            1
//	bench_report_info{run_id="...",shape="divan-json"}       1
//
// Each Exporter owns a private registry; nothing is registered globally.
//
// =============================================================================

package metrics

import (
	"github.com/karthikiyer56/bench-report/bench-report/pkg/types"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bench"

// Exporter holds the gauges for a single report run.
type Exporter struct {
	registry   *prometheus.Registry
	latency    *prometheus.GaugeVec
	throughput *prometheus.GaugeVec
	samples    *prometheus.GaugeVec
	extreme    *prometheus.GaugeVec
	info       *prometheus.GaugeVec
}

// New creates an Exporter and records the run identity.
func New(runID string, shape types.Shape) *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "latency_microseconds",
			Help:      "Per-operation latency statistic in microseconds.",
		}, []string{"operation", "stat"}),
		throughput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "throughput_ops_per_second",
			Help:      "Throughput derived from mean latency.",
		}, []string{"operation"}),
		samples: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "samples",
			Help:      "Number of latency samples behind the statistics (0 for harness summaries).",
		}, []string{"operation"}),
		extreme: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "extreme",
			Help:      "Set to 1 for the fastest and slowest operation of the run.",
		}, []string{"operation", "kind"}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "report_info",
			Help:      "Identity of the report run.",
		}, []string{"run_id", "shape"}),
	}
	e.registry.MustRegister(e.latency, e.throughput, e.samples, e.extreme, e.info)
	e.info.WithLabelValues(runID, string(shape)).Set(1)
	return e
}

// Registry returns the exporter's private registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Observe sets the gauges for every row. Only statistics present on a
// record are exported.
func (e *Exporter) Observe(rows []types.ReportRow) {
	for _, r := range rows {
		e.latency.WithLabelValues(r.Name, "mean").Set(r.Mean)
		e.latency.WithLabelValues(r.Name, "p50").Set(r.P50)

		optional := []struct {
			field types.Field
			stat  string
			value float64
		}{
			{types.FieldP90, "p90", r.P90},
			{types.FieldP95, "p95", r.P95},
			{types.FieldP99, "p99", r.P99},
			{types.FieldStdDev, "stddev", r.StdDev},
			{types.FieldRange, "min", r.Min},
			{types.FieldRange, "max", r.Max},
		}
		for _, o := range optional {
			if r.Has(o.field) {
				e.latency.WithLabelValues(r.Name, o.stat).Set(o.value)
			}
		}

		e.throughput.WithLabelValues(r.Name).Set(r.Throughput)
		e.samples.WithLabelValues(r.Name).Set(float64(r.Count))
		if r.Fastest {
			e.extreme.WithLabelValues(r.Name, "fastest").Set(1)
		}
		if r.Slowest {
			e.extreme.WithLabelValues(r.Name, "slowest").Set(1)
		}
	}
}

// WriteTextfile writes the registry in the Prometheus text format. The file
// is written to a temporary name and renamed, so collectors never read a
// partial file.
func (e *Exporter) WriteTextfile(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, e.registry), "failed to write metrics to %s", path)
}
