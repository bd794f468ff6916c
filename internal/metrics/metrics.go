package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes the board's operation counters on the /metrics endpoint.
type Metrics struct {
	Moves         prometheus.Counter
	Conflicts     prometheus.Counter
	BreaksStarted prometheus.Counter
	BreaksEnded   prometheus.Counter
	AuditFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Moves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "board_moves_total",
			Help: "Successful staff moves.",
		}),
		Conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "board_move_conflicts_total",
			Help: "Moves rejected by optimistic version check.",
		}),
		BreaksStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "board_breaks_started_total",
			Help: "Break slots consumed.",
		}),
		BreaksEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "board_breaks_ended_total",
			Help: "Breaks ended.",
		}),
		AuditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "board_audit_append_failures_total",
			Help: "Best-effort audit appends that failed and were dropped.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Moves, m.Conflicts, m.BreaksStarted, m.BreaksEnded, m.AuditFailures)
	}
	return m
}

// The Inc helpers are nil-safe so components can run without metrics wired.

func (m *Metrics) IncMoves() {
	if m != nil {
		m.Moves.Inc()
	}
}

func (m *Metrics) IncConflicts() {
	if m != nil {
		m.Conflicts.Inc()
	}
}

func (m *Metrics) IncBreaksStarted() {
	if m != nil {
		m.BreaksStarted.Inc()
	}
}

func (m *Metrics) IncBreaksEnded() {
	if m != nil {
		m.BreaksEnded.Inc()
	}
}

func (m *Metrics) IncAuditFailures() {
	if m != nil {
		m.AuditFailures.Inc()
	}
}
