package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Booking outcomes.
const (
	OutcomeBooked      = "booked"
	OutcomeConflict    = "conflict"
	OutcomePacing      = "pacing"
	OutcomeRejected    = "rejected"
	OutcomeCancelled   = "cancelled"
	OutcomeRescheduled = "rescheduled"
)

type Metrics struct {
	registry           *prometheus.Registry
	sessionOperations  *prometheus.CounterVec
	groundConflicts    prometheus.Counter
	certificatesIssued prometheus.Counter
	certificateReuse   prometheus.Counter
	attendanceMarked   *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		sessionOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "academy",
			Name:      "session_operations_total",
			Help:      "Session lifecycle operations by outcome.",
		}, []string{"outcome"}),
		groundConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "academy",
			Name:      "ground_slot_conflicts_total",
			Help:      "Ground slot commits rejected because another booking won.",
		}),
		certificatesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "academy",
			Name:      "certificates_issued_total",
			Help:      "Certificates created.",
		}),
		certificateReuse: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "academy",
			Name:      "certificates_reused_total",
			Help:      "Generate requests answered with an existing certificate.",
		}),
		attendanceMarked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "academy",
			Name:      "attendance_marked_total",
			Help:      "Attendance marks by status.",
		}, []string{"status"}),
	}
	registry.MustRegister(
		m.sessionOperations,
		m.groundConflicts,
		m.certificatesIssued,
		m.certificateReuse,
		m.attendanceMarked,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionOperation(outcome string) {
	if m == nil {
		return
	}
	m.sessionOperations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) GroundConflict() {
	if m == nil {
		return
	}
	m.groundConflicts.Inc()
}

func (m *Metrics) CertificateIssued() {
	if m == nil {
		return
	}
	m.certificatesIssued.Inc()
}

func (m *Metrics) CertificateReused() {
	if m == nil {
		return
	}
	m.certificateReuse.Inc()
}

func (m *Metrics) AttendanceMarked(status string) {
	if m == nil {
		return
	}
	m.attendanceMarked.WithLabelValues(status).Inc()
}
