package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsPrefix is the prefix used for all metrics
const MetricsPrefix = "tf2autobot_"

// Pricer records traffic to the pricing API. It satisfies pricer.Observer.
type Pricer struct {
	// Cardinality: ~12 (3 operations x 4 outcomes)
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	// Cardinality: 1
	storedPrices prometheus.Gauge
}

func NewPricer(reg prometheus.Registerer) *Pricer {
	factory := promauto.With(reg)

	return &Pricer{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricsPrefix + "pricer_requests_total",
				Help: "Total number of requests to the pricing API by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricsPrefix + "pricer_request_duration_seconds",
				Help:    "Time taken by requests to the pricing API",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storedPrices: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: MetricsPrefix + "stored_prices",
				Help: "Number of price records kept in the local store",
			},
		),
	}
}

func (m *Pricer) ObserveRequest(op, outcome string, duration time.Duration) {
	m.requests.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(duration.Seconds())
}

func (m *Pricer) SetStoredPrices(n int) {
	m.storedPrices.Set(float64(n))
}
