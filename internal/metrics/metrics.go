package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Error reasons recorded on pricer_errors_total.
const (
	ReasonInvalidArgument = "invalid_argument"
	ReasonBadRequest      = "bad_request"
)

// Metrics holds the collectors of one pricer instance. Each server builds
// its own so counters are never shared between instances.
type Metrics struct {
	Requests *prometheus.CounterVec
	Errors   *prometheus.CounterVec
	Latency  prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricer_requests_total",
				Help: "Total option pricing requests, by option type",
			}, []string{"type"}),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pricer_errors_total",
				Help: "Pricing requests answered with a client error, by reason",
			}, []string{"reason"}),
		Latency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pricer_request_latency_seconds",
				Help:    "Time to price one request",
				Buckets: prometheus.DefBuckets,
			}),
	}
}

// Register adds the collectors to reg. Collectors that are already
// registered are left in place.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.Requests, m.Errors, m.Latency} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
