package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestWizardMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWizardMetrics(reg)

	m.ObserveAction("select_time", "slot_unavailable")
	m.ObserveAction("select_time", "slot_unavailable")
	m.ObserveStep("contact")
	m.ObserveSubmission("Dental Checkup")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.actionsTotal.WithLabelValues("select_time", "slot_unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stepEntriesTotal.WithLabelValues("contact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissionsTotal.WithLabelValues("Dental Checkup")))
}

func TestWizardMetricsNilSafe(t *testing.T) {
	var m *WizardMetrics
	m.ObserveAction("submit", "ok")
	m.ObserveStep("confirmed")
	m.ObserveSubmission("Root Canal")
}
