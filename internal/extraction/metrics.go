package extraction

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	strategies *prometheus.CounterVec
	stages     *prometheus.HistogramVec
	results    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		strategies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipebox",
			Subsystem: "extraction",
			Name:      "strategy_attempts_total",
			Help:      "Acquisition and generation attempts by platform, strategy and outcome.",
		}, []string{"platform", "strategy", "outcome"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recipebox",
			Subsystem: "extraction",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipebox",
			Subsystem: "extraction",
			Name:      "requests_total",
			Help:      "Extraction requests by platform and result kind.",
		}, []string{"platform", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.strategies, m.stages, m.results)
	}
	return m
}

func (m *Metrics) observeStrategy(p Platform, strategy string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
		if IsNotConfigured(err) {
			outcome = "not_configured"
		}
	}
	m.strategies.WithLabelValues(string(p), strategy, outcome).Inc()
}

func (m *Metrics) observeStage(s Stage, d time.Duration) {
	if m == nil {
		return
	}
	m.stages.WithLabelValues(string(s)).Observe(d.Seconds())
}

func (m *Metrics) observeResult(p Platform, result string) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(string(p), result).Inc()
}
