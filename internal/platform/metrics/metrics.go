package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. Every method is safe on
// a nil receiver so components can run without metrics in tests.
type Metrics struct {
	RequestLatency    *prometheus.HistogramVec
	CacheLookups      *prometheus.CounterVec
	SnapshotLoads     *prometheus.CounterVec
	RateLimitDenials  prometheus.Counter
	RateLimitDegraded prometheus.Gauge
	AuthRejections    *prometheus.CounterVec
	Transfers         *prometheus.CounterVec
}

// New creates and registers all metrics on reg. Pass prometheus.DefaultRegisterer
// in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "equityshield_http_request_duration_seconds",
			Help:    "Latency of HTTP requests by route pattern, method and status",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"route", "method", "status"}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "equityshield_response_cache_lookups_total",
			Help: "Response cache lookups by result (hit, miss, error)",
		}, []string{"result"}),

		SnapshotLoads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "equityshield_snapshot_loads_total",
			Help: "Snapshot file loads by dataset and outcome",
		}, []string{"dataset", "outcome"}),

		RateLimitDenials: f.NewCounter(prometheus.CounterOpts{
			Name: "equityshield_rate_limit_denials_total",
			Help: "Requests rejected because a client exhausted its budget",
		}),

		RateLimitDegraded: f.NewGauge(prometheus.GaugeOpts{
			Name: "equityshield_rate_limit_degraded",
			Help: "1 while budgets come from the in-process fallback instead of Redis",
		}),

		AuthRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "equityshield_auth_rejections_total",
			Help: "Requests rejected by the API key gate by reason",
		}, []string{"reason"}),

		Transfers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "equityshield_transfers_total",
			Help: "Simulated transfers by currency",
		}, []string{"currency"}),
	}
}

func (m *Metrics) ObserveRequest(route, method, status string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route, method, status).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementSnapshotLoad(dataset, outcome string) {
	if m != nil {
		m.SnapshotLoads.WithLabelValues(dataset, outcome).Inc()
	}
}

func (m *Metrics) IncrementRateLimitDenials() {
	if m != nil {
		m.RateLimitDenials.Inc()
	}
}

func (m *Metrics) SetRateLimitDegraded(degraded bool) {
	if m == nil {
		return
	}
	if degraded {
		m.RateLimitDegraded.Set(1)
	} else {
		m.RateLimitDegraded.Set(0)
	}
}

func (m *Metrics) IncrementAuthRejections(reason string) {
	if m != nil {
		m.AuthRejections.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncrementTransfers(currency string) {
	if m != nil {
		m.Transfers.WithLabelValues(currency).Inc()
	}
}
