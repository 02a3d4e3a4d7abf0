package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/github/stack-graphs/cancel"
)

var _ cancel.Recorder = (*Metrics)(nil)

// Metrics records stitcher-run outcomes as Prometheus series. The zero
// value is not usable; construct with NewMetrics. Metrics implements
// cancel.Recorder so a Controller can report directly into it.
type Metrics struct {
	runsStarted      prometheus.Counter
	runsCancelled    *prometheus.CounterVec
	runDuration      prometheus.Histogram
	partialPathCount prometheus.Histogram
}

// NewMetrics registers the engine's metric series against reg. Pass
// prometheus.DefaultRegisterer to publish on the default /metrics handler,
// or a prometheus.NewRegistry() for test isolation.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "stackgraphs_stitcher_runs_started_total",
			Help: "Total stitcher runs started.",
		}),
		runsCancelled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stackgraphs_stitcher_runs_cancelled_total",
			Help: "Total stitcher runs cancelled, by reason.",
		}, []string{"reason"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stackgraphs_stitcher_run_duration_seconds",
			Help:    "Wall-clock duration of a stitcher run.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		}),
		partialPathCount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stackgraphs_stitcher_partial_paths_produced",
			Help:    "Number of partial paths a stitcher run produced.",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
		}),
	}
}

// RunStarted implements cancel.Recorder.
func (m *Metrics) RunStarted() { m.runsStarted.Inc() }

// RunCancelled implements cancel.Recorder.
func (m *Metrics) RunCancelled(reasonType string) { m.runsCancelled.WithLabelValues(reasonType).Inc() }

// ObserveRun records a completed run's duration and the number of partial
// paths it produced.
func (m *Metrics) ObserveRun(d time.Duration, partialPaths int) {
	m.runDuration.Observe(d.Seconds())
	m.partialPathCount.Observe(float64(partialPaths))
}
