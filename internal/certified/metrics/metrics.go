package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for certified serial allocation.
type Metrics struct {
	BooksCommitted    *prometheus.CounterVec
	SerialConflicts   prometheus.Counter
	InsufficientStock prometheus.Counter
	CommitDuration    prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BooksCommitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chequeprint_certified_books_committed_total",
			Help: "Total number of certified books committed",
		}, []string{"operation_type"}),
		SerialConflicts: factory.NewCounter(prometheus.CounterOpts{
			Name: "chequeprint_certified_serial_conflicts_total",
			Help: "Total number of certified commits refused because the range was already allocated",
		}),
		InsufficientStock: factory.NewCounter(prometheus.CounterOpts{
			Name: "chequeprint_certified_insufficient_stock_total",
			Help: "Total number of certified commits refused for lack of stock",
		}),
		CommitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chequeprint_certified_commit_duration_seconds",
			Help:    "Time spent in the certified commit unit",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) AddBooksCommitted(operation string, books int) {
	if m == nil {
		return
	}
	m.BooksCommitted.WithLabelValues(operation).Add(float64(books))
}

func (m *Metrics) IncSerialConflict() {
	if m == nil {
		return
	}
	m.SerialConflicts.Inc()
}

func (m *Metrics) IncInsufficientStock() {
	if m == nil {
		return
	}
	m.InsufficientStock.Inc()
}

func (m *Metrics) ObserveCommitDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.CommitDuration.Observe(d.Seconds())
}
