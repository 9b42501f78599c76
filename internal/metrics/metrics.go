package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry        *prometheus.Registry
	recommendations *prometheus.CounterVec
	errors          *prometheus.CounterVec
	duration        prometheus.Histogram
	published       *prometheus.CounterVec
}

// New registers the agent collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		recommendations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "energy_agent_recommendations_total",
			Help: "Recommendations produced, by action type.",
		}, []string{"action"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "energy_agent_errors_total",
			Help: "Failed recommendation requests, by error kind.",
		}, []string{"kind"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "energy_agent_run_duration_seconds",
			Help:    "Time spent producing one recommendation.",
			Buckets: prometheus.DefBuckets,
		}),
		published: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "energy_agent_publish_total",
			Help: "Recommendation publish attempts, by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) ObserveRun(action string, d time.Duration) {
	m.recommendations.WithLabelValues(action).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) ObserveError(kind string) {
	m.errors.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObservePublish(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.published.WithLabelValues(result).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
