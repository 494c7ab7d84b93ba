package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for checkbook queries and printing.
type Metrics struct {
	SOAPDuration  *prometheus.HistogramVec
	BreakerState  prometheus.Gauge
	LeavesPrinted *prometheus.CounterVec
	PrintBlocked  prometheus.Counter
	MICRWarnings  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SOAPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chequeprint_core_banking_request_duration_seconds",
			Help:    "Latency of core banking checkbook queries by outcome",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"outcome"}),
		BreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chequeprint_core_banking_circuit_open",
			Help: "Core banking circuit breaker state (0=closed, 1=open)",
		}),
		LeavesPrinted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chequeprint_leaves_printed_total",
			Help: "Total number of cheque leaves rendered for printing",
		}, []string{"document_type", "operation_type"}),
		PrintBlocked: factory.NewCounter(prometheus.CounterOpts{
			Name: "chequeprint_print_blocked_total",
			Help: "Total number of print batches refused because a leaf was already printed",
		}),
		MICRWarnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "chequeprint_micr_identifier_warnings_total",
			Help: "Total number of print models built for branches missing MICR identifiers",
		}),
	}
}

func (m *Metrics) ObserveSOAP(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.SOAPDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.Set(1)
		return
	}
	m.BreakerState.Set(0)
}

func (m *Metrics) AddLeavesPrinted(documentType, operation string, n int) {
	if m == nil {
		return
	}
	m.LeavesPrinted.WithLabelValues(documentType, operation).Add(float64(n))
}

func (m *Metrics) IncPrintBlocked() {
	if m == nil {
		return
	}
	m.PrintBlocked.Inc()
}

func (m *Metrics) IncMICRWarning() {
	if m == nil {
		return
	}
	m.MICRWarnings.Inc()
}
