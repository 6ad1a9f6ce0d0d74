package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry core. Counters track the
// domain events that matter for capacity and audit review; the histogram
// tracks HTTP latency per route.
type Metrics struct {
	PropertiesCreated  prometheus.Counter
	PropertiesVerified prometheus.Counter
	DocumentsReviewed  *prometheus.CounterVec
	TransfersCompleted prometheus.Counter
	ActivitiesRecorded prometheus.Counter
	RequestDuration    *prometheus.HistogramVec
}

// New creates a Metrics instance with all collectors registered on the
// default registry.
func New() *Metrics {
	return &Metrics{
		PropertiesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ardhi_properties_created_total",
			Help: "Total number of properties registered",
		}),
		PropertiesVerified: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ardhi_properties_verified_total",
			Help: "Total number of properties approved by an admin",
		}),
		DocumentsReviewed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ardhi_documents_reviewed_total",
			Help: "Total number of document reviews by outcome",
		}, []string{"outcome"}),
		TransfersCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ardhi_transfers_completed_total",
			Help: "Total number of transfer workflows reaching completion",
		}),
		ActivitiesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ardhi_activities_recorded_total",
			Help: "Total number of activity records appended",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ardhi_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"route", "method", "status"}),
	}
}

// ObserveRequest records one HTTP request observation.
// Call with time.Now() captured at the start of the request.
func (m *Metrics) ObserveRequest(route, method, status string, start time.Time) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, method, status).Observe(time.Since(start).Seconds())
}
