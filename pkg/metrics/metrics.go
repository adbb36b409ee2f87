// Package metrics exposes search progress as Prometheus metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jakechorley/deskrota/pkg/core/model"
	"github.com/jakechorley/deskrota/pkg/core/search"
)

// Recorder owns a dedicated registry and the search collectors.
// It implements search.Observer and is safe for concurrent runs.
type Recorder struct {
	Registry *prometheus.Registry

	proposals    *prometheus.CounterVec
	accepted     *prometheus.CounterVec
	improvements *prometheus.CounterVec
	best         *prometheus.GaugeVec
	temperature  *prometheus.GaugeVec
	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
}

// NewRecorder creates a recorder with all collectors registered.
// Go runtime collectors are added when withRuntime is set.
func NewRecorder(withRuntime bool) *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		proposals: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "deskrota_search_steps_total", Help: "Search steps (proposals, rounds or generations) by method."},
			[]string{"method"},
		),
		accepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "deskrota_search_accepted_total", Help: "Accepted search steps by method."},
			[]string{"method"},
		),
		improvements: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "deskrota_search_improvements_total", Help: "Steps that improved the incumbent, by method."},
			[]string{"method"},
		),
		best: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "deskrota_search_best_score", Help: "Latest incumbent score component by method."},
			[]string{"method", "component"},
		),
		temperature: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "deskrota_anneal_temperature", Help: "Current annealing temperature."},
			[]string{"method"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "deskrota_runs_total", Help: "Completed runs by method."},
			[]string{"method"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "deskrota_run_duration_seconds", Help: "Run duration in seconds.", Buckets: prometheus.ExponentialBuckets(0.001, 4, 10)},
			[]string{"method"},
		),
	}

	r.Registry.MustRegister(r.proposals, r.accepted, r.improvements, r.best, r.temperature, r.runs, r.runDuration)
	if withRuntime {
		r.Registry.MustRegister(collectors.NewGoCollector())
		r.Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return r
}

// Observe records one search event
func (r *Recorder) Observe(e search.Event) {
	r.proposals.WithLabelValues(e.Method).Inc()
	if e.Accepted {
		r.accepted.WithLabelValues(e.Method).Inc()
	}
	if e.Improved {
		r.improvements.WithLabelValues(e.Method).Inc()
	}
	r.setBest(e.Method, e.Best)
	if e.Temperature > 0 {
		r.temperature.WithLabelValues(e.Method).Set(e.Temperature)
	}
}

// RecordRun records a finished run
func (r *Recorder) RecordRun(method string, duration time.Duration, score model.Score) {
	r.runs.WithLabelValues(method).Inc()
	r.runDuration.WithLabelValues(method).Observe(duration.Seconds())
	r.setBest(method, score)
}

// WriteTextfile writes the registry in the node exporter textfile format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func (r *Recorder) setBest(method string, s model.Score) {
	r.best.WithLabelValues(method, "c1").Set(float64(s.C1))
	r.best.WithLabelValues(method, "c2").Set(float64(s.C2))
	r.best.WithLabelValues(method, "c3").Set(float64(s.C3))
}
