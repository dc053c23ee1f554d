package usage

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exports usage and ingestion counters to Prometheus. Unlike
// Counters they are never reset. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry
	apiCalls *prometheus.CounterVec
	visits   prometheus.Counter
	ingested *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteo",
			Name:      "api_calls_total",
			Help:      "Total API calls by endpoint.",
		}, []string{"endpoint"}),
		visits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "meteo",
			Name:      "page_visits_total",
			Help:      "Total dashboard page visits.",
		}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteo",
			Name:      "readings_ingested_total",
			Help:      "Readings stored, by transport.",
		}, []string{"source"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "meteo",
			Name:      "readings_rejected_total",
			Help:      "Readings rejected or failed to store, by transport.",
		}, []string{"source"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiCalls,
		m.visits,
		m.ingested,
		m.rejected,
	)
	return m
}

func (m *Metrics) APICall(endpoint string) {
	if m == nil {
		return
	}
	m.apiCalls.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) Visit() {
	if m == nil {
		return
	}
	m.visits.Inc()
}

func (m *Metrics) Ingested(source string) {
	if m == nil {
		return
	}
	m.ingested.WithLabelValues(source).Inc()
}

func (m *Metrics) Rejected(source string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(source).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
