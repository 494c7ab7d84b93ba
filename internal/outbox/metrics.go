package outbox

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Published prometheus.Counter
	Failed    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Published: factory.NewCounter(prometheus.CounterOpts{
			Name: "chequeprint_outbox_published_total",
			Help: "Total number of outbox events delivered to Kafka",
		}),
		Failed: factory.NewCounter(prometheus.CounterOpts{
			Name: "chequeprint_outbox_publish_failures_total",
			Help: "Total number of outbox publish attempts that failed",
		}),
	}
}

func (m *Metrics) AddPublished(n int) {
	if m == nil {
		return
	}
	m.Published.Add(float64(n))
}

func (m *Metrics) IncFailed() {
	if m == nil {
		return
	}
	m.Failed.Inc()
}
