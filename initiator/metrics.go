package initiator

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the counters a host registers to observe orchestrator
// activity, grounded on the teacher's pairing of grpc-ecosystem's
// go-grpc-prometheus metrics with every RPC handler — the same shape is
// applied here to every Transition call instead.
type Metrics struct {
	AttemptsStarted   prometheus.Counter
	AttemptsCancelled prometheus.Counter
	PaymentsFinalized prometheus.Counter
	PaymentsFailed    prometheus.Counter
}

// NewMetrics builds and registers a Metrics set against reg. Passing a
// nil registry is valid and simply skips registration, useful in tests
// that don't care about metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AttemptsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "initiator",
			Name:      "attempts_started_total",
			Help:      "Number of route attempts started.",
		}),
		AttemptsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "initiator",
			Name:      "attempts_cancelled_total",
			Help:      "Number of route attempts cancelled before secret reveal.",
		}),
		PaymentsFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "initiator",
			Name:      "payments_finalized_total",
			Help:      "Number of payments that finalized successfully.",
		}),
		PaymentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "initiator",
			Name:      "payments_failed_total",
			Help:      "Number of payments that failed outright.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.AttemptsStarted,
			m.AttemptsCancelled,
			m.PaymentsFinalized,
			m.PaymentsFailed,
		)
	}

	return m
}

// noopMetrics is used internally whenever a caller builds a Context
// without supplying its own Metrics, so handler code never has to nil
// check.
func noopMetrics() *Metrics {
	return NewMetrics(nil)
}
