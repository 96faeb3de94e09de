package search

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors for search and indexing.
type Metrics struct {
	SearchesTotal    *prometheus.CounterVec
	SearchDuration   prometheus.Histogram
	SearchResults    prometheus.Histogram
	SuggestionsTotal prometheus.Counter
	IndexBuilds      prometheus.Counter
	IndexEntries     prometheus.Gauge
	IndexVersion     prometheus.Gauge
}

var (
	metricsOnce     sync.Once
	metricsInstance *Metrics
)

// NewMetrics returns the process-wide metrics, registering them on first use.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metricsInstance = &Metrics{
			SearchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "kaiwa_searches_total",
				Help: "Total number of searches by outcome",
			}, []string{"outcome"}),
			SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "kaiwa_search_duration_seconds",
				Help:    "Search latency",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			}),
			SearchResults: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "kaiwa_search_results",
				Help:    "Matches per search before truncation",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			}),
			SuggestionsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "kaiwa_suggestions_total",
				Help: "Total number of autocomplete requests",
			}),
			IndexBuilds: promauto.NewCounter(prometheus.CounterOpts{
				Name: "kaiwa_index_builds_total",
				Help: "Total number of index builds",
			}),
			IndexEntries: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "kaiwa_index_entries",
				Help: "Entries in the current index snapshot",
			}),
			IndexVersion: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "kaiwa_index_version",
				Help: "Version of the current index snapshot",
			}),
		}
	})
	return metricsInstance
}

func (m *Metrics) observeSearch(outcome string, seconds float64, total int) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(outcome).Inc()
	if outcome == "ok" {
		m.SearchDuration.Observe(seconds)
		m.SearchResults.Observe(float64(total))
	}
}

func (m *Metrics) recordSuggest() {
	if m == nil {
		return
	}
	m.SuggestionsTotal.Inc()
}

func (m *Metrics) recordIndex(entries int, version uint64, built bool) {
	if m == nil {
		return
	}
	if built {
		m.IndexBuilds.Inc()
	}
	m.IndexEntries.Set(float64(entries))
	m.IndexVersion.Set(float64(version))
}
