package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the resource host.
type Metrics struct {
	Published      *prometheus.CounterVec
	PublishRejects *prometheus.CounterVec
	LookupDuration *prometheus.HistogramVec
}

// New creates a Metrics instance registered with the default registerer.
func New() *Metrics {
	return &Metrics{
		Published: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "didweb_hosting_published_total",
			Help: "Resources and status list versions stored by kind",
		}, []string{"kind"}),
		PublishRejects: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "didweb_hosting_publish_rejected_total",
			Help: "Rejected publish attempts by kind and error code",
		}, []string{"kind", "code"}),
		LookupDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "didweb_hosting_lookup_duration_seconds",
			Help:    "Duration of resource and status list lookups",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"kind"}),
	}
}

func (m *Metrics) IncrementPublished(kind string) {
	m.Published.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementRejected(kind, code string) {
	m.PublishRejects.WithLabelValues(kind, code).Inc()
}

// ObserveLookup records a lookup. Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveLookup(kind string, start time.Time) {
	m.LookupDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
