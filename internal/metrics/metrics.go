package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SigningMetrics are the signer service metrics.
type SigningMetrics struct {
	RequestsTotal         *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
	EstimateFailuresTotal prometheus.Counter
	KeysCreatedTotal      prometheus.Counter
	KeysManaged           prometheus.Gauge
}

// Signing is registered with the default registry and served on /metrics.
var Signing = NewSigningMetrics(prometheus.DefaultRegisterer)

// NewSigningMetrics creates the metrics and registers them with reg.
func NewSigningMetrics(reg prometheus.Registerer) *SigningMetrics {
	factory := promauto.With(reg)
	return &SigningMetrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "starksigner_sign_requests_total",
			Help: "The total number of signing requests",
		}, []string{"kind", "result"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "starksigner_sign_duration_seconds",
			Help:    "Duration of signing requests, fee estimation included",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		EstimateFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "starksigner_estimate_failures_total",
			Help: "The total number of failed fee estimations",
		}),
		KeysCreatedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "starksigner_keys_created_total",
			Help: "The total number of keys created",
		}),
		KeysManaged: factory.NewGauge(prometheus.GaugeOpts{
			Name: "starksigner_keys_managed",
			Help: "Number of keys held by the key manager",
		}),
	}
}

// ObserveSign records one signing request of kind that started at start.
func (m *SigningMetrics) ObserveSign(kind string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.RequestsTotal.WithLabelValues(kind, result).Inc()
	m.RequestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
