package cipherkit

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/allisson/go-cipherkit/internal/engine"
)

// Prometheus instrumentation for session lifecycle and operations. Nothing
// is registered by default; embedding applications call RegisterMetrics with
// their own registry.
var (
	openSessions = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "cipherkit",
			Name:      "open_sessions",
			Help:      "Number of currently open cipher sessions.",
		},
		func() float64 { return float64(engine.LiveContexts()) },
	)

	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cipherkit",
			Name:      "operations_total",
			Help:      "Total cipher session operations by operation name.",
		},
		[]string{"operation"},
	)

	operationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cipherkit",
			Name:      "operation_failures_total",
			Help:      "Failed cipher session operations by operation name.",
		},
		[]string{"operation"},
	)
)

// Collectors returns the library's Prometheus collectors.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{openSessions, operationsTotal, operationFailures}
}

// RegisterMetrics registers the library's collectors with r.
func RegisterMetrics(r prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func observe(op string, st engine.Status) {
	operationsTotal.WithLabelValues(op).Inc()
	if st != engine.StatusOK {
		operationFailures.WithLabelValues(op).Inc()
	}
}
