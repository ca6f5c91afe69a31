package obs

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics groups Prometheus collectors for HTTP observability.
type HTTPMetrics struct {
	ReqTotal *prometheus.CounterVec
	ReqDur   *prometheus.HistogramVec
	InFlight prometheus.Gauge
}

// NewHTTPMetrics registers and returns HTTP metrics collectors.
func NewHTTPMetrics(namespace string, buckets []float64, reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(buckets) == 0 {
		buckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000}
	} else {
		sort.Float64s(buckets)
	}
	m := &HTTPMetrics{
		ReqTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the server.",
		}, []string{"method", "route", "status"}),
		ReqDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency distribution in milliseconds.",
			Buckets:   buckets,
		}, []string{"method", "route"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
	}
	reg.MustRegister(m.ReqTotal, m.ReqDur, m.InFlight)
	return m
}

// EngineMetrics counts transaction engine activity.
type EngineMetrics struct {
	Transactions   *prometheus.CounterVec
	Verifications  prometheus.Counter
	VerifyMatches  prometheus.Histogram
	HistorySnaps   prometheus.Counter
}

// NewEngineMetrics registers and returns engine metrics collectors.
func NewEngineMetrics(namespace string, reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &EngineMetrics{
		Transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_computed_total",
			Help:      "Transactions computed, labelled by aggregation mode and outcome.",
		}, []string{"aggregation", "ok"}),
		Verifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_verifications_total",
			Help:      "Receipt verification searches executed.",
		}),
		VerifyMatches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "receipt_verification_matches",
			Help:      "Exact policy matches found per verification search.",
			Buckets:   []float64{0, 1, 2, 4, 8},
		}),
		HistorySnaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_snapshots_total",
			Help:      "Computation snapshots saved to history.",
		}),
	}
	reg.MustRegister(m.Transactions, m.Verifications, m.VerifyMatches, m.HistorySnaps)
	return m
}
