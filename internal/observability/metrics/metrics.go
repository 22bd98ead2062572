package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "hausservice"

// BookingMetrics counts calendar interactions.
type BookingMetrics struct {
	transitions *prometheus.CounterVec
	handoffs    prometheus.Counter
}

// NewBookingMetrics registers booking collectors on reg (default registerer when nil).
func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "transitions_total",
			Help:      "Booking selector events by action and whether they were accepted",
		}, []string{"action", "accepted"}),
		handoffs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "booking",
			Name:      "handoffs_total",
			Help:      "Confirmed selections handed over to the contact form",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.transitions, m.handoffs)
	return m
}

func (m *BookingMetrics) ObserveTransition(action string, accepted bool) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(action, boolLabel(accepted)).Inc()
}

func (m *BookingMetrics) ObserveHandoff() {
	if m == nil {
		return
	}
	m.handoffs.Inc()
}

// LeadMetrics counts lead submissions per sink.
type LeadMetrics struct {
	submissions  *prometheus.CounterVec
	sinkFailures *prometheus.CounterVec
	sinkLatency  *prometheus.HistogramVec
}

// NewLeadMetrics registers lead collectors on reg (default registerer when nil).
func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead submissions by the sink that stored them",
		}, []string{"sink"}),
		sinkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "sink_failures_total",
			Help:      "Failed lead appends per sink",
		}, []string{"sink"}),
		sinkLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "leads",
			Name:      "sink_latency_seconds",
			Help:      "Latency of lead appends per sink",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sink"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissions, m.sinkFailures, m.sinkLatency)
	return m
}

func (m *LeadMetrics) ObserveSubmission(sink string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(sink).Inc()
}

func (m *LeadMetrics) ObserveSinkFailure(sink string) {
	if m == nil {
		return
	}
	m.sinkFailures.WithLabelValues(sink).Inc()
}

func (m *LeadMetrics) ObserveSinkLatency(sink string, seconds float64) {
	if m == nil {
		return
	}
	m.sinkLatency.WithLabelValues(sink).Observe(seconds)
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
