package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics counts payout state transitions and the conflicts the
// guarded updates reject.
type LedgerMetrics struct {
	transitions *prometheus.CounterVec
	conflicts   *prometheus.CounterVec
}

// NewLedgerMetrics registers the payout ledger metrics on the provided
// registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_transitions_total",
		Help: "Payout requests moved into a terminal state.",
	}, []string{"to"})
	conflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payout_transition_conflicts_total",
		Help: "Payout transitions rejected because the request was no longer pending.",
	}, []string{"to"})
	reg.MustRegister(transitions, conflicts)
	return &LedgerMetrics{
		transitions: transitions,
		conflicts:   conflicts,
	}
}

// IncTransition records a successful move into the named terminal state.
func (l *LedgerMetrics) IncTransition(to string) {
	if l == nil || l.transitions == nil {
		return
	}
	l.transitions.WithLabelValues(normalizeLabel(to)).Inc()
}

// IncConflict records a transition attempt that lost the pending-state race.
func (l *LedgerMetrics) IncConflict(to string) {
	if l == nil || l.conflicts == nil {
		return
	}
	l.conflicts.WithLabelValues(normalizeLabel(to)).Inc()
}
