package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	TransitionInvited  = "invited"
	TransitionAccepted = "accepted"
	TransitionRejected = "rejected"
)

// MembershipMetrics counts membership lifecycle transitions.
type MembershipMetrics struct {
	transitions *prometheus.CounterVec
	failures    *prometheus.CounterVec
}

// NewMembershipMetrics registers the membership metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewMembershipMetrics(reg prometheus.Registerer) *MembershipMetrics {
	if reg == nil {
		return &MembershipMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "membership_transitions_total",
		Help: "Membership lifecycle transitions persisted.",
	}, []string{"transition"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "membership_transition_failures_total",
		Help: "Membership lifecycle transitions that failed to persist.",
	}, []string{"transition"})
	reg.MustRegister(transitions, failures)
	return &MembershipMetrics{
		transitions: transitions,
		failures:    failures,
	}
}

// IncTransition increments the success counter for the named transition.
func (m *MembershipMetrics) IncTransition(transition string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(transition)).Inc()
}

// IncFailure increments the failure counter for the named transition.
func (m *MembershipMetrics) IncFailure(transition string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(transition)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
