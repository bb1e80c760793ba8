package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "hyde"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	passDuration  *prom.HistogramVec
	writeDuration prom.Histogram
	buildDuration prom.Histogram
	fileOutcomes  *prom.CounterVec
	buildOutcomes *prom.CounterVec
	datasets      prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil registry gets a fresh private one.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		passDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_pass_duration_seconds",
			Help:      "Duration of individual render passes",
			Buckets:   prom.DefBuckets,
		}, []string{"pass"}),
		writeDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "destination_write_duration_seconds",
			Help:      "Duration of destination writes",
			Buckets:   prom.DefBuckets,
		}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		}),
		fileOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Source files processed by outcome",
		}, []string{"outcome"}),
		buildOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		datasets: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "datasets",
			Help:      "Datasets loaded for the last build",
		}),
	}
	reg.MustRegister(pr.passDuration, pr.writeDuration, pr.buildDuration, pr.fileOutcomes, pr.buildOutcomes, pr.datasets)
	return pr
}

// Registry returns the registry the metrics are registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObservePassDuration(pass string, d time.Duration) {
	if p == nil {
		return
	}
	p.passDuration.WithLabelValues(pass).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveWriteDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.writeDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFileOutcome(outcome FileOutcome) {
	if p == nil {
		return
	}
	p.fileOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetDatasets(n int) {
	if p == nil {
		return
	}
	p.datasets.Set(float64(n))
}

// WriteTextfile writes every gathered metric to path in the text exposition
// format, for pickup by a node exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.reg); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

var _ Recorder = (*PrometheusRecorder)(nil)
