package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks resolution outcomes and registrations per object kind.
type Metrics struct {
	Resolutions        *prometheus.CounterVec
	ResolutionDuration *prometheus.HistogramVec
	Registrations      *prometheus.CounterVec
}

// New registers the registry metrics with the default registerer.
func New() *Metrics {
	return &Metrics{
		Resolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "didweb_anoncreds_resolutions_total",
			Help: "AnonCreds object resolutions by kind and outcome (ok, invalid, notFound)",
		}, []string{"kind", "outcome"}),
		ResolutionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "didweb_anoncreds_resolution_duration_seconds",
			Help:    "Duration of AnonCreds object resolutions including DID resolution",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
		Registrations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "didweb_anoncreds_registrations_total",
			Help: "AnonCreds object registrations by kind and state",
		}, []string{"kind", "state"}),
	}
}

// ObserveResolution records one resolution. Call with time.Now() taken at the start.
func (m *Metrics) ObserveResolution(kind, outcome string, start time.Time) {
	m.Resolutions.WithLabelValues(kind, outcome).Inc()
	m.ResolutionDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementRegistration(kind, state string) {
	m.Registrations.WithLabelValues(kind, state).Inc()
}
