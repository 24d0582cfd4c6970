// Package metrics holds the domain counters of the checking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Check outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeRejected    = "rejected"
	OutcomeUnsupported = "unsupported"
	OutcomeFailed      = "failed"
)

// CheckMetrics counts checks by outcome and records per-file plagiarism percentages.
// A nil *CheckMetrics is valid and records nothing.
type CheckMetrics struct {
	checks      *prometheus.CounterVec
	percentages prometheus.Histogram
	fileErrors  prometheus.Counter
	cacheHits   *prometheus.CounterVec
}

func NewCheckMetrics(reg prometheus.Registerer) (*CheckMetrics, error) {
	m := &CheckMetrics{
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plagcheck_checks_total",
			Help: "Plagiarism checks by outcome.",
		}, []string{"outcome"}),
		percentages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plagcheck_file_percentage",
			Help:    "Plagiarism percentage per compared file.",
			Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		fileErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plagcheck_file_errors_total",
			Help: "Folder files that could not be analysed.",
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "plagcheck_cache_lookups_total",
			Help: "Comparison cache lookups by result.",
		}, []string{"result"}),
	}
	for _, c := range []prometheus.Collector{m.checks, m.percentages, m.fileErrors, m.cacheHits} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *CheckMetrics) Check(outcome string) {
	if m == nil {
		return
	}
	m.checks.WithLabelValues(outcome).Inc()
}

func (m *CheckMetrics) FilePercentage(p float64) {
	if m == nil {
		return
	}
	m.percentages.Observe(p)
}

func (m *CheckMetrics) FileError() {
	if m == nil {
		return
	}
	m.fileErrors.Inc()
}

// CacheLookup records a comparison cache hit or miss.
func (m *CheckMetrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheHits.WithLabelValues(result).Inc()
}
