// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MatchOperationsTotal tracks matching operations by kind and outcome
	MatchOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "operations_total",
			Help:      "Total number of matching operations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// MatchOperationDuration tracks end-to-end matching duration
	MatchOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "operation_duration_seconds",
			Help:      "Duration of matching operations in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"},
	)

	// CandidatesEvaluated tracks candidate evaluations
	CandidatesEvaluated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "matching",
			Name:      "candidates_evaluated_total",
			Help:      "Total number of candidates evaluated",
		},
		[]string{"kind"},
	)

	// SearchDuration tracks search backend latency
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "search",
			Name:      "request_duration_seconds",
			Help:      "Duration of search requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"status"},
	)

	// CommonNameLookups tracks common last name lookups by cache result
	CommonNameLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "commonnames",
			Name:      "lookups_total",
			Help:      "Total number of common last name lookups by cache result",
		},
		[]string{"result"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KafkaPublishDuration tracks Kafka publish duration
	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka publish operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	// DedupeJobsProcessed tracks dedupe requests handled by the worker
	DedupeJobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "worker",
			Name:      "jobs_processed_total",
			Help:      "Total number of dedupe requests processed",
		},
		[]string{"status"},
	)

	// DatabaseQueryDuration tracks database query duration
	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Duration of database queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)
)

// RecordMatch records a completed matching operation
func RecordMatch(kind, outcome string, candidates int, durationSeconds float64) {
	MatchOperationsTotal.WithLabelValues(kind, outcome).Inc()
	MatchOperationDuration.WithLabelValues(kind).Observe(durationSeconds)
	CandidatesEvaluated.WithLabelValues(kind).Add(float64(candidates))
}

// RecordSearch records a search request
func RecordSearch(status string, durationSeconds float64) {
	SearchDuration.WithLabelValues(status).Observe(durationSeconds)
}

// RecordCommonNameLookup records a common name lookup as a cache hit, miss or bypass
func RecordCommonNameLookup(result string) {
	CommonNameLookups.WithLabelValues(result).Inc()
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string, durationSeconds float64) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
	KafkaPublishDuration.Observe(durationSeconds)
}

// RecordDedupeJob records a processed dedupe request
func RecordDedupeJob(status string) {
	DedupeJobsProcessed.WithLabelValues(status).Inc()
}

// RecordDatabaseQuery records a database query duration
func RecordDatabaseQuery(operation string, durationSeconds float64) {
	DatabaseQueryDuration.WithLabelValues(operation).Observe(durationSeconds)
}
