package pipeline

import "github.com/prometheus/client_golang/prometheus"

var (
	processLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "winnow_process_latency_seconds",
		Help: "Process operation latency distribution",
	})
	rowsLoaded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "winnow_rows_loaded_total",
		Help: "Rows acquired from input files or sample generation",
	})
	rowsKept = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "winnow_rows_kept_total",
		Help: "Rows remaining after the value1 filter",
	})
	runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "winnow_runs_total",
		Help: "Pipeline runs by outcome",
	}, []string{"outcome"})
)

func init() {
	// Register Prometheus metrics.
	prometheus.MustRegister(processLatency, rowsLoaded, rowsKept, runsTotal)
}
