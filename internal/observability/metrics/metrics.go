package metrics

import "github.com/prometheus/client_golang/prometheus"

// WizardMetrics exposes counters for booking wizard activity.
type WizardMetrics struct {
	actionsTotal     *prometheus.CounterVec
	stepEntriesTotal *prometheus.CounterVec
	submissionsTotal *prometheus.CounterVec
}

func NewWizardMetrics(reg prometheus.Registerer) *WizardMetrics {
	m := &WizardMetrics{
		actionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "wizard",
			Name:      "actions_total",
			Help:      "Wizard actions applied, by kind and outcome",
		}, []string{"action", "outcome"}),
		stepEntriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "wizard",
			Name:      "step_entries_total",
			Help:      "Times a wizard entered each step",
		}, []string{"step"}),
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "wizard",
			Name:      "submissions_total",
			Help:      "Confirmed bookings by service",
		}, []string{"service"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.actionsTotal, m.stepEntriesTotal, m.submissionsTotal)
	return m
}

func (m *WizardMetrics) ObserveAction(kind, outcome string) {
	if m == nil {
		return
	}
	m.actionsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *WizardMetrics) ObserveStep(step string) {
	if m == nil {
		return
	}
	m.stepEntriesTotal.WithLabelValues(step).Inc()
}

func (m *WizardMetrics) ObserveSubmission(service string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(service).Inc()
}
