package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bankroll_operations_total",
		Help: "Engine operations by name and outcome.",
	}, []string{"operation", "outcome"})

	importLinesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bankroll_import_lines_total",
		Help: "Bulk import lines by result.",
	}, []string{"result"})

	recalcDriftTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bankroll_recalc_drift_total",
		Help: "Recalculations that found the cached balance out of sync.",
	})
)

// RecordOperation counts one engine operation and its outcome
func RecordOperation(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	operationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordImportLine counts one bulk import line, result is "applied" or "skipped"
func RecordImportLine(result string) {
	importLinesTotal.WithLabelValues(result).Inc()
}

// RecordDrift counts a recalculation that had to correct stored values
func RecordDrift() {
	recalcDriftTotal.Inc()
}
