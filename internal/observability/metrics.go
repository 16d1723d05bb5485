package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

var (
	stageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlq_pipeline_stage_total",
			Help: "Pipeline stage executions by stage and outcome.",
		},
		[]string{"stage", "outcome"},
	)
	stageLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nlq_pipeline_stage_latency_ms",
			Help:    "Pipeline stage latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"stage"},
	)
	narrationFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nlq_narration_fallback_total",
			Help: "Total number of responses that used the templated explanation.",
		},
	)
	resultRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nlq_result_rows",
			Help:    "Number of rows returned per answered question.",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		},
	)
	historyWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nlq_history_write_failures_total",
			Help: "Total number of query history entries that could not be archived.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		stageTotal,
		stageLatencyMs,
		narrationFallbackTotal,
		resultRows,
		historyWriteFailuresTotal,
	)
}

func ObserveStage(stage, outcome string, elapsed time.Duration) {
	stageTotal.WithLabelValues(stage, outcome).Inc()
	stageLatencyMs.WithLabelValues(stage).Observe(float64(elapsed.Milliseconds()))
}

func IncrementNarrationFallback() {
	narrationFallbackTotal.Inc()
}

func ObserveResultRows(count int) {
	if count < 0 {
		count = 0
	}
	resultRows.Observe(float64(count))
}

func IncrementHistoryWriteFailure() {
	historyWriteFailuresTotal.Inc()
}
