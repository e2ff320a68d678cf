package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the normalizer's collectors on a private registry.
type Registry struct {
	reg       *prometheus.Registry
	Received  *prometheus.CounterVec
	Accepted  *prometheus.CounterVec
	Rejected  *prometheus.CounterVec
	BatchSec  *prometheus.HistogramVec
	Published prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	received := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "normalizer_records_received_total",
		Help: "Raw records received, by kind.",
	}, []string{"kind"})
	accepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "normalizer_records_accepted_total",
		Help: "Records that passed the schema gate, by kind.",
	}, []string{"kind"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "normalizer_records_rejected_total",
		Help: "Records rejected by the schema gate, by kind.",
	}, []string{"kind"})
	batchSec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "normalizer_batch_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "normalizer_events_published_total"})

	r.MustRegister(received, accepted, rejected, batchSec, published)
	return &Registry{
		reg:       r,
		Received:  received,
		Accepted:  accepted,
		Rejected:  rejected,
		BatchSec:  batchSec,
		Published: published,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
