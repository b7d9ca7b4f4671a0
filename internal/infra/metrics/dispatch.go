package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(dispatchResultsTotal, generationsSubmittedTotal, dispatchPassSeconds)
}

var dispatchResultsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dispatch_results_total",
		Help: "Per-schedule dispatch outcomes, labeled by result.",
	},
	[]string{"result"}, // 'dispatched', 'paused_duration', 'paused_limit', 'skipped', 'failed'
)

var generationsSubmittedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "generations_submitted_total",
		Help: "External generation jobs submitted, labeled by content type.",
	},
	[]string{"content_type"},
)

var dispatchPassSeconds = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "dispatch_pass_seconds",
		Help:    "Dispatch pass duration distribution.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	},
)

func IncDispatchResult(result string) {
	dispatchResultsTotal.WithLabelValues(norm(result)).Inc()
}

func AddGenerationsSubmitted(contentType string, n int) {
	generationsSubmittedTotal.WithLabelValues(norm(contentType)).Add(float64(n))
}

func ObserveDispatchPass(seconds float64) {
	dispatchPassSeconds.Observe(seconds)
}
