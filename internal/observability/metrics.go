package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalog_importer/internal/domain"
)

// Recorder exposes import counters to Prometheus.
type Recorder struct {
	registry    *prometheus.Registry
	outcomes    *prometheus.CounterVec
	rejected    prometheus.Counter
	runs        prometheus.Counter
	runDuration prometheus.Histogram
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_import_records_total",
				Help: "Records synchronized, by outcome",
			},
			[]string{"outcome"},
		),
		rejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "catalog_import_rows_rejected_total",
				Help: "Rows dropped by the required-field gate",
			},
		),
		runs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "catalog_import_runs_total",
				Help: "Completed import runs",
			},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "catalog_import_run_duration_seconds",
				Help:    "Wall time of import runs",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.outcomes,
		r.rejected,
		r.runs,
		r.runDuration,
	)
	return r
}

func (r *Recorder) ObserveOutcome(outcome domain.Outcome) {
	r.outcomes.WithLabelValues(string(outcome)).Inc()
}

func (r *Recorder) ObserveRejected(count int) {
	r.rejected.Add(float64(count))
}

func (r *Recorder) ObserveRun(stats *domain.RunStats) {
	r.runs.Inc()
	r.runDuration.Observe(stats.Duration.Seconds())
}

// Handler serves the recorder's metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
