package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DatabasesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smoldb_databases_total",
			Help: "Total number of databases known to the registry",
		},
	)

	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smoldb_sessions_active",
			Help: "Number of currently connected client sessions",
		},
	)

	CacheResidentTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "smoldb_cache_resident_total",
			Help: "Number of databases currently resident in the registry cache",
		},
	)

	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "smoldb_sweep_duration_seconds",
			Help:    "Time taken for a maintenance sweep cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SweepCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "smoldb_sweep_cycles_total",
			Help: "Total number of maintenance sweep cycles completed",
		},
	)

	SweepEvictionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "smoldb_sweep_evictions_total",
			Help: "Total number of cache entries evicted by sweep cycles",
		},
	)
)

func init() {
	prometheus.MustRegister(DatabasesTotal)
	prometheus.MustRegister(SessionsActive)
	prometheus.MustRegister(CacheResidentTotal)
	prometheus.MustRegister(SweepDuration)
	prometheus.MustRegister(SweepCyclesTotal)
	prometheus.MustRegister(SweepEvictionsTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
