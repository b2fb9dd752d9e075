// Package metrics implements the observability hooks with Prometheus
// collectors.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/roadmap/pkg/observability"
)

// Metrics holds the roadmap collectors. Register installs it as the
// process-wide hook implementation.
type Metrics struct {
	Mutations       *prometheus.CounterVec
	StateLoads      *prometheus.CounterVec
	PersistWrites   *prometheus.CounterVec
	PersistDuration prometheus.Histogram
	PersistBytes    prometheus.Histogram
	Fetches         *prometheus.CounterVec
	LayoutDuration  *prometheus.HistogramVec
	LayoutCrossings prometheus.Gauge
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_store_mutations_total",
			Help: "Total number of applied store mutations, labelled by operation.",
		}, []string{"op"}),

		StateLoads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_state_loads_total",
			Help: "Total number of store initialisations, labelled by state source.",
		}, []string{"source"}),

		PersistWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_persist_writes_total",
			Help: "Total number of state writes, labelled by driver and status.",
		}, []string{"driver", "status"}),

		PersistDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "roadmap_persist_duration_seconds",
			Help:    "Latency of state writes.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),

		PersistBytes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "roadmap_persist_size_bytes",
			Help:    "Size of the serialized state.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),

		Fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_persist_fetches_total",
			Help: "Total number of state reads, labelled by driver and result.",
		}, []string{"driver", "result"}),

		LayoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roadmap_layout_duration_seconds",
			Help:    "Latency of layered layout runs, labelled by direction.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"direction"}),

		LayoutCrossings: f.NewGauge(prometheus.GaugeOpts{
			Name: "roadmap_layout_crossings",
			Help: "Edge crossings left by the most recent layout.",
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roadmap_http_requests_total",
			Help: "Total number of API responses, labelled by method, route and status.",
		}, []string{"method", "route", "status"}),

		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roadmap_http_request_duration_seconds",
			Help:    "API request latency, labelled by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Register installs m as every observability hook.
func (m *Metrics) Register() {
	observability.SetStoreHooks(storeHooks{m})
	observability.SetStorageHooks(storageHooks{m})
	observability.SetLayoutHooks(layoutHooks{m})
	observability.SetHTTPHooks(httpHooks{m})
}

type storeHooks struct{ m *Metrics }

func (h storeHooks) OnMutation(_ context.Context, op string, _ time.Duration) {
	h.m.Mutations.WithLabelValues(op).Inc()
}

func (h storeHooks) OnLoad(_ context.Context, source string, _ error) {
	h.m.StateLoads.WithLabelValues(source).Inc()
}

type storageHooks struct{ m *Metrics }

func (h storageHooks) OnPersist(_ context.Context, driver string, size int, d time.Duration, err error) {
	h.m.PersistWrites.WithLabelValues(driver, status(err)).Inc()
	h.m.PersistDuration.Observe(d.Seconds())
	if err == nil {
		h.m.PersistBytes.Observe(float64(size))
	}
}

func (h storageHooks) OnFetch(_ context.Context, driver string, hit bool, err error) {
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case hit:
		result = "hit"
	}
	h.m.Fetches.WithLabelValues(driver, result).Inc()
}

type layoutHooks struct{ m *Metrics }

func (h layoutHooks) OnLayout(_ context.Context, direction string, _ int, crossings int, d time.Duration) {
	h.m.LayoutDuration.WithLabelValues(direction).Observe(d.Seconds())
	h.m.LayoutCrossings.Set(float64(crossings))
}

type httpHooks struct{ m *Metrics }

func (h httpHooks) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	h.m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	h.m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
