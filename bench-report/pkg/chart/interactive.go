package chart

import (
	"encoding/json"
	"html/template"
	"math"

	"github.com/pkg/errors"
)

// ChartJSURL is the Chart.js build the document loads for hover and legend
// toggling. Without scripts the inline SVG is shown instead.
const ChartJSURL = "https://cdn.jsdelivr.net/npm/chart.js@4.4.2/dist/chart.umd.min.js"

// Axis ids used by the Chart.js configuration.
const (
	latencyAxis    = "y"
	throughputAxis = "y1"
)

type jsPoint struct {
	X float64  `json:"x"`
	Y *float64 `json:"y"` // null leaves a gap
}

type jsDataset struct {
	Label           string    `json:"label"`
	Data            []jsPoint `json:"data"`
	YAxisID         string    `json:"yAxisID"`
	BorderColor     string    `json:"borderColor"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderDash      []int     `json:"borderDash,omitempty"`
	PointRadius     int       `json:"pointRadius"`
}

type jsConfig struct {
	Type string `json:"type"`
	Data struct {
		Datasets []jsDataset `json:"datasets"`
	} `json:"data"`
	Options map[string]interface{} `json:"options"`
}

func axisTitle(text string) map[string]interface{} {
	return map[string]interface{}{"display": true, "text": text}
}

// interactiveConfig builds the Chart.js line chart for one operation: the
// latency traces on the left axis, ops/sec on the right, with one tooltip
// listing every trace at the hovered x value. s is in microseconds and
// already smoothed as desired.
func interactiveConfig(s Series, opts Options) jsConfig {
	opts = opts.withDefaults()
	scaled := s.scaled(opts.Unit)
	names := LatencyTraces(opts.Unit)

	dataset := func(name string, ys []float64, color, axis string) jsDataset {
		d := jsDataset{
			Label:           name,
			Data:            make([]jsPoint, 0, scaled.Len()),
			YAxisID:         axis,
			BorderColor:     "#" + color,
			BackgroundColor: "#" + color,
			PointRadius:     3,
		}
		for i, x := range scaled.X {
			p := jsPoint{X: x}
			if y := ys[i]; !math.IsNaN(y) {
				p.Y = &y
			}
			d.Data = append(d.Data, p)
		}
		return d
	}

	var cfg jsConfig
	cfg.Type = "line"
	throughput := dataset(ThroughputTrace, scaled.Throughput, throughputHex, throughputAxis)
	throughput.BorderDash = []int{5, 3}
	cfg.Data.Datasets = []jsDataset{
		dataset(names[0], scaled.P95, p95Hex, latencyAxis),
		dataset(names[1], scaled.Mean, meanHex, latencyAxis),
		dataset(names[2], scaled.P50, p50Hex, latencyAxis),
		throughput,
	}
	cfg.Options = map[string]interface{}{
		"responsive": true,
		"animation":  false,
		"interaction": map[string]interface{}{
			"mode":      "index",
			"intersect": false,
		},
		"plugins": map[string]interface{}{
			"title": axisTitle(s.Operation),
		},
		"scales": map[string]interface{}{
			"x": map[string]interface{}{
				"type":  "linear",
				"title": axisTitle(opts.XLabel),
			},
			latencyAxis: map[string]interface{}{
				"type":     "linear",
				"position": "left",
				"title":    axisTitle("Latency (" + opts.Unit.Label() + ")"),
			},
			throughputAxis: map[string]interface{}{
				"type":     "linear",
				"position": "right",
				"title":    axisTitle("Ops / sec"),
				"grid":     map[string]interface{}{"drawOnChartArea": false},
			},
		},
	}
	return cfg
}

// scriptConfigs encodes one Chart.js configuration per figure for the page
// script. json.Marshal escapes <, > and &, so operation names cannot close
// the script element.
func scriptConfigs(cfgs []jsConfig) (template.JS, error) {
	if cfgs == nil {
		cfgs = []jsConfig{}
	}
	data, err := json.Marshal(cfgs)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode chart data")
	}
	return template.JS(data), nil
}
