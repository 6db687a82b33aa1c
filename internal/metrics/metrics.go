// Package metrics exposes Prometheus instrumentation for the
// migration orchestrator: operation outcomes, create rollbacks, and
// divergence findings from comparison-on-read.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors the orchestrator reports into.
// A nil *Metrics is valid and drops every observation, so callers
// never need to guard instrumentation sites.
type Metrics struct {
	operations *prometheus.CounterVec
	rollbacks  prometheus.Counter
	findings   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memberbridge",
			Name:      "operations_total",
			Help:      "Logical operations handled by the orchestrator.",
		}, []string{"op", "outcome"}),
		rollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "memberbridge",
			Name:      "create_rollbacks_total",
			Help:      "Dual-write creates compensated after a secondary-store failure.",
		}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "memberbridge",
			Name:      "compare_findings_total",
			Help:      "Divergence findings reported by comparison-on-read.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.operations, m.rollbacks, m.findings)
	return m
}

// Operation records one completed logical operation.
func (m *Metrics) Operation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

// Rollback records one compensated dual-write create.
func (m *Metrics) Rollback() {
	if m == nil {
		return
	}
	m.rollbacks.Inc()
}

// Finding records one divergence finding of the given kind.
func (m *Metrics) Finding(kind string) {
	if m == nil {
		return
	}
	m.findings.WithLabelValues(kind).Inc()
}
