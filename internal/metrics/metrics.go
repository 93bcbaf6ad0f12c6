package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels analyses that produced a verdict.
	OutcomeSuccess = "success"
	// OutcomeError labels analyses that failed before producing a verdict.
	OutcomeError = "error"

	// CacheHit labels result cache lookups that were served from the store.
	CacheHit = "hit"
	// CacheMiss labels lookups that fell through to the pipeline.
	CacheMiss = "miss"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "civic_triage",
			Name:      "analyses_total",
			Help:      "Total number of single-message analyses, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "civic_triage",
			Name:      "analysis_seconds",
			Help:      "Single-message analysis latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "civic_triage",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups, partitioned by hit or miss.",
		},
		[]string{"result"},
	)

	batchJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "civic_triage",
			Name:      "batch_jobs_total",
			Help:      "Batch jobs reaching a terminal status, partitioned by status.",
		},
		[]string{"status"},
	)

	batchItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "civic_triage",
			Name:      "batch_items_total",
			Help:      "Batch items resolved, partitioned by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register attaches the triage collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		cacheLookupsTotal,
		batchJobsTotal,
		batchItemsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records an analysis duration and outcome label.
func ObserveAnalysis(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	analysesTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
}

// ObserveCacheLookup records a result cache hit or miss.
func ObserveCacheLookup(result string) {
	if result != CacheHit {
		result = CacheMiss
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveBatchJob records a batch job reaching a terminal status.
func ObserveBatchJob(status string) {
	batchJobsTotal.WithLabelValues(status).Inc()
}

// ObserveBatchItem records one batch item resolving.
func ObserveBatchItem(outcome string) {
	if outcome != OutcomeError {
		outcome = OutcomeSuccess
	}
	batchItemsTotal.WithLabelValues(outcome).Inc()
}
