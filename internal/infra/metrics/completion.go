package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(contentFinalizedTotal, completionPassSeconds, stuckProcessingRecords)
}

var contentFinalizedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "content_finalized_total",
		Help: "Content records resolved by the completion pass, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var completionPassSeconds = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "completion_pass_seconds",
		Help:    "Completion pass duration distribution.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	},
)

var stuckProcessingRecords = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "stuck_processing_records",
		Help: "Records still processing past their schedule's duration window at last pass.",
	},
)

func IncContentFinalized(status string) {
	contentFinalizedTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveCompletionPass(seconds float64) {
	completionPassSeconds.Observe(seconds)
}

func SetStuckProcessing(n int) {
	stuckProcessingRecords.Set(float64(n))
}
