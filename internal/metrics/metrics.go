package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lineage"

// Metrics holds the collectors for tree rebuilds and store mutations. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	rebuildDuration prometheus.Histogram
	mutations       *prometheus.CounterVec
	members         prometheus.Gauge
	generations     prometheus.Gauge
	persistFailures prometheus.Counter
}

// New registers every collector, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		rebuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tree",
			Name:      "rebuild_duration_seconds",
			Help:      "Time to rebuild the derived family tree",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Store mutations by operation and result",
		}, []string{"op", "result"}),
		members: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tree",
			Name:      "members",
			Help:      "Members in the latest derived tree",
		}),
		generations: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tree",
			Name:      "generations",
			Help:      "Distinct generation levels in the latest derived tree",
		}),
		persistFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "persist_failures_total",
			Help:      "Snapshot saves that failed",
		}),
	}
}

// ObserveRebuild records one rebuild and the size of the resulting tree.
func (m *Metrics) ObserveRebuild(elapsed time.Duration, members, generations int) {
	if m == nil {
		return
	}
	m.rebuildDuration.Observe(elapsed.Seconds())
	m.members.Set(float64(members))
	m.generations.Set(float64(generations))
}

// CountMutation records a mutation attempt. ok is false when the mutation was
// rejected or matched nothing.
func (m *Metrics) CountMutation(op string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "rejected"
	}
	m.mutations.WithLabelValues(op, result).Inc()
}

func (m *Metrics) CountPersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
