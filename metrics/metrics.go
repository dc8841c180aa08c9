// Package metrics exposes prometheus collectors for light BVH builds.
package metrics

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/achilleasa/lightbvh/asset/compiler/lightbvh"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lightbvh"

// Values of the result label of the builds counter.
const (
	ResultBuilt  = "built"
	ResultCached = "cached"
	ResultFailed = "failed"
)

// BuildMetrics groups the collectors updated by the scene compiler. All
// methods are safe to call on a nil receiver.
type BuildMetrics struct {
	Builds         *prometheus.CounterVec
	Duration       prometheus.Histogram
	Lights         prometheus.Gauge
	Nodes          prometheus.Gauge
	MaxDepth       prometheus.Gauge
	FallbackSplits prometheus.Counter
}

// Create the build collectors and register them with reg. A nil reg
// registers them with the default prometheus registry.
func New(reg prometheus.Registerer) *BuildMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &BuildMetrics{
		Builds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Total light scene builds by result",
		}, []string{"result"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Light scene build duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
		}),
		Lights: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lights",
			Help:      "Number of world space lights in the last built scene",
		}),
		Nodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Number of used nodes across all trees of the last built scene",
		}),
		MaxDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "max_depth",
			Help:      "Deepest tree level of the last built scene",
		}),
		FallbackSplits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_splits_total",
			Help:      "Total median splits used when no split had a finite cost",
		}),
	}
}

// Record a successful build of the given trees.
func (m *BuildMetrics) ObserveBuild(elapsed time.Duration, lights int, trees ...*lightbvh.Tree) {
	if m == nil {
		return
	}

	m.Builds.WithLabelValues(ResultBuilt).Inc()
	m.Duration.Observe(elapsed.Seconds())
	m.Lights.Set(float64(lights))

	var nodes, maxDepth, fallbacks int
	for _, tree := range trees {
		nodes += tree.Stats.Nodes
		fallbacks += tree.Stats.FallbackSplits
		if tree.Stats.MaxDepth > maxDepth {
			maxDepth = tree.Stats.MaxDepth
		}
	}
	m.Nodes.Set(float64(nodes))
	m.MaxDepth.Set(float64(maxDepth))
	m.FallbackSplits.Add(float64(fallbacks))
}

// Record a build request that was served from the previous build.
func (m *BuildMetrics) ObserveCached() {
	if m == nil {
		return
	}
	m.Builds.WithLabelValues(ResultCached).Inc()
}

// Record a failed build.
func (m *BuildMetrics) ObserveFailure() {
	if m == nil {
		return
	}
	m.Builds.WithLabelValues(ResultFailed).Inc()
}

// Render the metrics collected by g as a table. Histograms are reported as
// their sample count and sum.
func Table(g prometheus.Gatherer) (string, error) {
	families, err := g.Gather()
	if err != nil {
		return "", fmt.Errorf("metrics: %w", err)
	}

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Metric", "Labels", "Value"})

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			var labels []string
			for _, pair := range metric.GetLabel() {
				labels = append(labels, pair.GetName()+"="+pair.GetValue())
			}
			sort.Strings(labels)

			var value string
			switch {
			case metric.GetCounter() != nil:
				value = fmt.Sprint(metric.GetCounter().GetValue())
			case metric.GetGauge() != nil:
				value = fmt.Sprint(metric.GetGauge().GetValue())
			case metric.GetHistogram() != nil:
				h := metric.GetHistogram()
				value = fmt.Sprintf("count=%d sum=%.6f", h.GetSampleCount(), h.GetSampleSum())
			default:
				value = "-"
			}
			table.Append([]string{family.GetName(), fmt.Sprint(labels), value})
		}
	}

	table.Render()
	return buf.String(), nil
}
