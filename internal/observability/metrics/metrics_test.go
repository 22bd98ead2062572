package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	got := map[string]string{}
	for _, lp := range m.GetLabel() {
		got[lp.GetName()] = lp.GetValue()
	}
	for k, v := range want {
		if got[k] != v {
			return false
		}
	}
	return true
}

func TestBookingMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveTransition("select_date", true)
	m.ObserveTransition("select_date", true)
	m.ObserveTransition("confirm", false)
	m.ObserveHandoff()

	if v := counterValue(t, reg, "hausservice_booking_transitions_total", map[string]string{"action": "select_date", "accepted": "true"}); v != 2 {
		t.Fatalf("expected 2 accepted selections, got %v", v)
	}
	if v := counterValue(t, reg, "hausservice_booking_handoffs_total", nil); v != 1 {
		t.Fatalf("expected 1 handoff, got %v", v)
	}
}

func TestLeadMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLeadMetrics(reg)
	m.ObserveSubmission("local")
	m.ObserveSinkFailure("postgres")
	m.ObserveSinkLatency("postgres", 0.25)

	if v := counterValue(t, reg, "hausservice_leads_submissions_total", map[string]string{"sink": "local"}); v != 1 {
		t.Fatalf("expected 1 local submission, got %v", v)
	}
	if v := counterValue(t, reg, "hausservice_leads_sink_failures_total", map[string]string{"sink": "postgres"}); v != 1 {
		t.Fatalf("expected 1 postgres failure, got %v", v)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var b *BookingMetrics
	b.ObserveTransition("confirm", true)
	b.ObserveHandoff()

	var l *LeadMetrics
	l.ObserveSubmission("local")
	l.ObserveSinkFailure("local")
	l.ObserveSinkLatency("local", 0.1)
}
