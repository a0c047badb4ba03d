package reports

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Report outcomes used as the "outcome" label.
const (
	OutcomeOK       = "ok"
	OutcomeNoData   = "no_data"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the report service collectors.
type Metrics struct {
	ReportsTotal   *prometheus.CounterVec
	ReportDuration prometheus.Histogram
	SkippedEntries prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradejournal_reports_total",
				Help: "Total number of statistics reports requested",
			},
			[]string{"outcome"}, // ok|no_data|not_found|error
		),
		ReportDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tradejournal_report_duration_seconds",
				Help:    "Time to load a journal and compute its report",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		SkippedEntries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tradejournal_skipped_entries_total",
				Help: "Entries dropped as malformed while computing reports",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.ReportsTotal, m.ReportDuration, m.SkippedEntries)
	}
	return m
}

func (m *Metrics) observe(outcome string, d time.Duration, skipped int) {
	if m == nil {
		return
	}
	m.ReportsTotal.WithLabelValues(outcome).Inc()
	m.ReportDuration.Observe(d.Seconds())
	if skipped > 0 {
		m.SkippedEntries.Add(float64(skipped))
	}
}
