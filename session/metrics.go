package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// Stats result outcomes
const (
	StatsApplied    = "applied"
	StatsHidden     = "hidden"
	StatsSuperseded = "superseded"
)

// Metrics holds the controller's Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	Submissions     *prometheus.CounterVec
	SubmitDuration  prometheus.Histogram
	StatsResults    *prometheus.CounterVec
	MarkdownExports *prometheus.CounterVec
	PreviewsIssued  prometheus.Counter
}

// NewMetrics registers the collectors on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "git1file",
			Name:      "submissions_total",
			Help:      "Ingestion submissions by outcome",
		}, []string{"outcome"}),
		SubmitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "git1file",
			Name:      "submit_duration_seconds",
			Help:      "Time from submission to result or error",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		StatsResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "git1file",
			Name:      "stats_results_total",
			Help:      "Stats preview results by outcome",
		}, []string{"outcome"}),
		MarkdownExports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "git1file",
			Name:      "markdown_exports_total",
			Help:      "Markdown export requests by outcome",
		}, []string{"outcome"}),
		PreviewsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "git1file",
			Name:      "previews_issued_total",
			Help:      "Stats preview requests issued after debouncing",
		}),
	}
}

func (m *Metrics) submission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) submitDuration(seconds float64) {
	if m == nil {
		return
	}
	m.SubmitDuration.Observe(seconds)
}

func (m *Metrics) stats(outcome string) {
	if m == nil {
		return
	}
	m.StatsResults.WithLabelValues(outcome).Inc()
}

func (m *Metrics) markdown(outcome string) {
	if m == nil {
		return
	}
	m.MarkdownExports.WithLabelValues(outcome).Inc()
}

func (m *Metrics) previewIssued() {
	if m == nil {
		return
	}
	m.PreviewsIssued.Inc()
}
